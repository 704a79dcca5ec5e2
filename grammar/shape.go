package grammar

// Shape describes which feature categories a lexical type takes in
// bracket templates. Required categories must all be present; optional
// ones may be.
type Shape struct {
	Required []Category
	Optional []Category
}

var (
	nominal = Shape{Required: []Category{CategoryCase, CategoryGender, CategoryNumber}}
	verbal  = Shape{Required: []Category{CategoryTense, CategoryVoice, CategoryPerson, CategoryNumber}}
)

var shapes = map[LexicalType]Shape{
	Noun:      nominal,
	Adjective: nominal,
	Article:   nominal,
	Numeral:   nominal,
	Verb:      verbal,
	Pronoun: {
		Required: []Category{CategoryCase, CategoryPerson, CategoryNumber},
		Optional: []Category{CategoryGender},
	},
	Adverb:      {},
	Preposition: {},
	Conjunction: {},
}

// ShapeOf returns the shape rule of a lexical type.
func ShapeOf(lt LexicalType) Shape {
	return shapes[lt]
}

// Arity returns the minimum and maximum number of features.
func (s Shape) Arity() (min, max int) {
	return len(s.Required), len(s.Required) + len(s.Optional)
}

// Allows reports whether c is a required or optional category.
func (s Shape) Allows(c Category) bool {
	for _, r := range s.Required {
		if r == c {
			return true
		}
	}
	for _, o := range s.Optional {
		if o == c {
			return true
		}
	}
	return false
}

// Missing returns the required categories absent from fs.
func (s Shape) Missing(fs FeatureSet) []Category {
	var missing []Category
	for _, r := range s.Required {
		if _, ok := fs.Get(r); !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
