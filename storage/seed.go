package storage

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/teranos/syntaxis/errors"
)

// SeedFormatConstraint is the range of seed format versions this build reads
const SeedFormatConstraint = "^1"

var seedConstraint = mustConstraint(SeedFormatConstraint)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

//go:embed seeds/*.yaml seeds/*.toml
var builtinSeeds embed.FS

// SeedFile is a versioned list of lexicon entries
type SeedFile struct {
	Format      string      `yaml:"format" toml:"format"`
	Description string      `yaml:"description,omitempty" toml:"description,omitempty"`
	Words       []WordEntry `yaml:"words" toml:"words"`

	// Path is where the file was read from
	Path string `yaml:"-" toml:"-"`
}

// IsSeedFile reports whether path has a seed file extension
func IsSeedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// ParseSeed decodes seed data. The format is chosen by the extension of
// name: .toml is TOML, .yaml and .yml are YAML. Unknown keys are errors.
func ParseSeed(name string, data []byte) (*SeedFile, error) {
	var sf SeedFile
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		md, err := toml.Decode(string(data), &sf)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", name)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("%s: unknown key %s", name, undecoded[0])
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sf); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", name)
		}
	default:
		return nil, errors.Newf("%s: unsupported seed file extension", name)
	}

	if err := checkFormat(sf.Format); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	sf.Path = name
	return &sf, nil
}

func checkFormat(format string) error {
	if format == "" {
		return errors.WithHint(errors.New("missing format version"),
			"add `format = \"1.0\"` (TOML) or `format: \"1.0\"` (YAML)")
	}
	v, err := semver.NewVersion(format)
	if err != nil {
		return errors.Wrapf(err, "invalid format version %q", format)
	}
	if !seedConstraint.Check(v) {
		return errors.Newf("format version %s does not satisfy %s", v, SeedFormatConstraint)
	}
	return nil
}

// LoadSeedFile reads and parses one seed file
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seed file %s", path)
	}
	return ParseSeed(path, data)
}

// LoadSeedFiles parses the given files, and every seed file directly inside
// the given directories, in parallel. Results keep argument order, with
// directory contents sorted by name.
func LoadSeedFiles(ctx context.Context, paths []string) ([]*SeedFile, error) {
	files, err := expandSeedPaths(paths)
	if err != nil {
		return nil, err
	}

	seeds := make([]*SeedFile, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sf, err := LoadSeedFile(path)
			if err != nil {
				return err
			}
			seeds[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return seeds, nil
}

func expandSeedPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "seed path %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read seed directory %s", p)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && IsSeedFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			files = append(files, filepath.Join(p, n))
		}
	}
	return files, nil
}

// BuiltinSeeds returns the seeds compiled into the binary: the articles,
// the pronouns and a small starter dictionary.
func BuiltinSeeds() ([]*SeedFile, error) {
	var seeds []*SeedFile
	err := fs.WalkDir(builtinSeeds, "seeds", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSeedFile(path) {
			return nil
		}
		data, err := builtinSeeds.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read builtin seed %s", path)
		}
		sf, err := ParseSeed(path, data)
		if err != nil {
			return err
		}
		seeds = append(seeds, sf)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load builtin seeds")
	}
	return seeds, nil
}

// Seed imports every word of the seed files in one transaction and returns
// the number of lemmas written.
func (s *LexiconStore) Seed(ctx context.Context, seeds ...*SeedFile) (int, error) {
	var entries []WordEntry
	for _, sf := range seeds {
		entries = append(entries, sf.Words...)
	}
	n, err := s.ImportWords(ctx, entries)
	if err != nil {
		return 0, errors.Wrap(err, "failed to import seeds")
	}
	return n, nil
}
