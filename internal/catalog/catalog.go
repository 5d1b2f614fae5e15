// Package catalog loads the structure catalog: the structures offered, their
// lesson metadata, and the challenge texts and hints of the interactive ones.
package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/containerd/errdefs"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/domain"
)

//go:embed catalog.yaml
var defaultFS embed.FS

// DefaultPath is the name of the embedded catalog.
const DefaultPath = "catalog.yaml"

// Catalog is a validated, read-only catalog.
type Catalog struct {
	structures []domain.Structure
	challenges map[string][]domain.Challenge
}

// Structures lists every structure in catalog order.
func (c *Catalog) Structures() []domain.Structure {
	return slices.Clone(c.structures)
}

// Structure returns the structure with id.
func (c *Catalog) Structure(id string) (domain.Structure, error) {
	for _, s := range c.structures {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Structure{}, fmt.Errorf("structure %q: %w", id, errdefs.ErrNotFound)
}

// Challenges returns a fresh copy of the challenge texts for a structure, so
// each caller gets its own hint cursors.
func (c *Catalog) Challenges(id string) []domain.Challenge {
	src := c.challenges[id]
	out := make([]domain.Challenge, len(src))
	copy(out, src)
	return out
}

// Default returns the embedded catalog.
func Default(ctx context.Context) (*Catalog, error) {
	return NewYAMLRepository(defaultFS).Load(ctx, DefaultPath)
}

// LoadFile loads a catalog from a path on disk, or the embedded catalog when
// path is empty.
func LoadFile(ctx context.Context, path string) (*Catalog, error) {
	if path == "" {
		return Default(ctx)
	}
	return NewYAMLRepository(os.DirFS(filepath.Dir(path))).Load(ctx, filepath.Base(path))
}

// YAMLRepository reads catalogs from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a repository over filesystem.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// Load reads, validates and converts the catalog at path.
func (r *YAMLRepository) Load(ctx context.Context, path string) (*Catalog, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return f.toModel(), nil
}

// File is the YAML layout of a catalog.
type File struct {
	Structures []StructureYAML `yaml:"structures"`
}

// StructureYAML is one catalog entry.
type StructureYAML struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Icon        string          `yaml:"icon"`
	Complexity  string          `yaml:"complexity"`
	Lessons     int             `yaml:"lessons"`
	Interactive bool            `yaml:"interactive"`
	Challenges  []ChallengeYAML `yaml:"challenges"`
}

// ChallengeYAML is the text of one practice challenge.
type ChallengeYAML struct {
	ID          int      `yaml:"id"`
	Description string   `yaml:"description"`
	Hints       []string `yaml:"hints"`
}

func (f File) validate() error {
	if len(f.Structures) == 0 {
		return fmt.Errorf("at least one structure is required")
	}

	seen := make(map[string]bool, len(f.Structures))
	for i, s := range f.Structures {
		if s.ID == "" {
			return fmt.Errorf("structure %d: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("structure %q: duplicated id", s.ID)
		}
		seen[s.ID] = true

		if err := s.validate(); err != nil {
			return fmt.Errorf("structure %q: %w", s.ID, err)
		}
	}
	return nil
}

func (s StructureYAML) validate() error {
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	switch domain.Complexity(s.Complexity) {
	case domain.ComplexityBasic, domain.ComplexityIntermediate, domain.ComplexityAdvanced:
	default:
		return fmt.Errorf("unknown complexity %q", s.Complexity)
	}
	if s.Lessons <= 0 {
		return fmt.Errorf("lessons must be positive, got: %d", s.Lessons)
	}
	if !s.Interactive && len(s.Challenges) > 0 {
		return fmt.Errorf("challenges are only allowed on interactive structures")
	}

	ids := make(map[int]bool, len(s.Challenges))
	for _, c := range s.Challenges {
		if c.ID <= 0 {
			return fmt.Errorf("challenge id must be positive, got: %d", c.ID)
		}
		if ids[c.ID] {
			return fmt.Errorf("challenge %d: duplicated id", c.ID)
		}
		ids[c.ID] = true
	}
	return s.validateAgainstConsole()
}

// validateAgainstConsole checks the challenge texts of a structure that has
// a built-in console: each text must describe one of its challenges.
func (s StructureYAML) validateAgainstConsole() error {
	desc, ok := console.Lookup(console.Kind(s.ID))
	if !ok {
		return nil
	}
	if !s.Interactive {
		return fmt.Errorf("structure has a console and must be interactive")
	}

	rules := make(map[int]bool, len(desc.Rules))
	for _, r := range desc.Rules {
		rules[r.ID] = true
	}
	for _, c := range s.Challenges {
		if !rules[c.ID] {
			return fmt.Errorf("challenge %d: no such challenge on the %s console", c.ID, desc.Wording.Noun)
		}
	}
	return nil
}

func (f File) toModel() *Catalog {
	c := &Catalog{
		structures: make([]domain.Structure, 0, len(f.Structures)),
		challenges: make(map[string][]domain.Challenge),
	}
	for _, s := range f.Structures {
		c.structures = append(c.structures, domain.Structure{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Icon:        s.Icon,
			Complexity:  domain.Complexity(s.Complexity),
			Lessons:     s.Lessons,
			Interactive: s.Interactive,
		})
		for _, ch := range s.Challenges {
			c.challenges[s.ID] = append(c.challenges[s.ID], domain.Challenge{
				ID:          ch.ID,
				Description: ch.Description,
				Hints:       ch.Hints,
			})
		}
	}
	return c
}
