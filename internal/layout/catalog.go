package layout

import (
	_ "embed"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

//go:embed categories.yaml
var categoriesYAML []byte

// Category is a user-facing template entry.
type Category struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	BestFor     string `yaml:"best_for" json:"bestFor"`
	Kind        Kind   `yaml:"-" json:"-"`
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories parses a category document and resolves every id to a Kind.
func LoadCategories(data []byte) ([]Category, error) {
	var f categoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	for i := range f.Categories {
		kind, err := ParseKind(f.Categories[i].ID)
		if err != nil {
			return nil, err
		}
		f.Categories[i].Kind = kind
	}
	return f.Categories, nil
}

// DefaultCategories returns the embedded catalog.
func DefaultCategories() []Category {
	cats, err := LoadCategories(categoriesYAML)
	if err != nil {
		panic(err)
	}
	return cats
}

type generateFunc func(Kind, Request) (*domain.Layout, error)

// Catalog generates one layout per listed category.
type Catalog struct {
	categories []Category
	generate   generateFunc
	log        *zerolog.Logger
}

func NewCatalog(gen *Generator, categories []Category, log *zerolog.Logger) *Catalog {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Catalog{categories: categories, generate: gen.Generate, log: log}
}

func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// GenerateAll returns layouts for every category that generated successfully.
// A failing generator is logged and skipped; only an invalid request is an error.
func (c *Catalog) GenerateAll(req Request) ([]*domain.Layout, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	layouts := make([]*domain.Layout, 0, len(c.categories))
	for _, cat := range c.categories {
		l, err := c.generate(cat.Kind, req)
		if err != nil {
			c.log.Error().Err(err).Str("template", cat.ID).Msg("Template generation failed, skipping")
			continue
		}
		layouts = append(layouts, l)
	}
	return layouts, nil
}
