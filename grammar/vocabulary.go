// Package grammar holds the closed vocabularies of the template language:
// lexical types, grammatical features and the categories they belong to.
// Everything here is immutable after package initialization and safe for
// concurrent use.
package grammar

// Category is a grammatical dimension. A FeatureSet holds at most one
// Feature per Category.
type Category string

const (
	CategoryCase   Category = "case"
	CategoryGender Category = "gender"
	CategoryNumber Category = "number"
	CategoryTense  Category = "tense"
	CategoryVoice  Category = "voice"
	CategoryMood   Category = "mood"
	CategoryPerson Category = "person"
	CategoryType   Category = "type"
)

// Categories lists every category in canonical order.
var Categories = []Category{
	CategoryCase, CategoryGender, CategoryNumber,
	CategoryTense, CategoryVoice, CategoryMood,
	CategoryPerson, CategoryType,
}

// LexicalType is a part of speech.
type LexicalType string

const (
	Noun        LexicalType = "noun"
	Verb        LexicalType = "verb"
	Adjective   LexicalType = "adjective"
	Article     LexicalType = "article"
	Pronoun     LexicalType = "pronoun"
	Adverb      LexicalType = "adverb"
	Preposition LexicalType = "preposition"
	Conjunction LexicalType = "conjunction"
	Numeral     LexicalType = "numeral"
)

// LexicalTypes lists every lexical type in canonical order.
var LexicalTypes = []LexicalType{
	Noun, Verb, Adjective, Article, Pronoun,
	Adverb, Preposition, Conjunction, Numeral,
}

// Wildcard feature names. A wildcard satisfies its category in shape
// checks but places no constraint on lexicon lookups.
const (
	WildcardGender = "*gender*"
	WildcardNumber = "*number*"
	WildcardPerson = "*person*"
)

// vocabulary maps each canonical feature name to its category.
var vocabulary = map[string]Category{
	// case
	"nom": CategoryCase,
	"gen": CategoryCase,
	"acc": CategoryCase,
	"voc": CategoryCase,

	// gender
	"masc":         CategoryGender,
	"fem":          CategoryGender,
	"neut":         CategoryGender,
	WildcardGender: CategoryGender,

	// number
	"sg":           CategoryNumber,
	"pl":           CategoryNumber,
	WildcardNumber: CategoryNumber,

	// tense
	"present":     CategoryTense,
	"aorist":      CategoryTense,
	"paratatikos": CategoryTense,

	// voice
	"active":  CategoryVoice,
	"passive": CategoryVoice,

	// mood
	"ind": CategoryMood,
	"imp": CategoryMood,

	// person
	"pri":          CategoryPerson,
	"sec":          CategoryPerson,
	"ter":          CategoryPerson,
	WildcardPerson: CategoryPerson,

	// pronoun and article type
	"personal_strong": CategoryType,
	"personal_weak":   CategoryType,
	"demonstrative":   CategoryType,
	"interrogative":   CategoryType,
	"possessive":      CategoryType,
	"relative":        CategoryType,
	"definite":        CategoryType,
	"indefinite":      CategoryType,
}

// CategoryOf returns the category of a canonical feature name.
func CategoryOf(name string) (Category, bool) {
	c, ok := vocabulary[name]
	return c, ok
}

// FeatureNames returns the canonical feature names of a category in sorted order.
func FeatureNames(c Category) []string {
	var names []string
	for _, n := range featureIndex.names {
		if vocabulary[n] == c {
			names = append(names, n)
		}
	}
	return names
}

// IsInvariable reports whether words of this type take no features.
func (lt LexicalType) IsInvariable() bool {
	return len(ShapeOf(lt).Required) == 0 && len(ShapeOf(lt).Optional) == 0
}

// Valid reports whether lt is one of the known lexical types.
func (lt LexicalType) Valid() bool {
	_, ok := shapes[lt]
	return ok
}
