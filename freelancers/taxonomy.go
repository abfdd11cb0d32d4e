package freelancers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidFilter = errors.New("invalid filter")

type Subcategory struct {
	Name      string   `yaml:"name" json:"name"`
	TechStack []string `yaml:"techStack" json:"techStack"`
}

type Category struct {
	Name          string        `yaml:"name" json:"name"`
	Subcategories []Subcategory `yaml:"subcategories" json:"subcategories"`
}

// Taxonomy is the category, subcategory and tech stack cascade freelancers are
// classified by.
type Taxonomy struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// DefaultTaxonomy is used when no taxonomy file is configured.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{Categories: []Category{
		{Name: "development", Subcategories: []Subcategory{
			{Name: "backend", TechStack: []string{"go", "java", "node", "python"}},
			{Name: "frontend", TechStack: []string{"react", "svelte", "vue"}},
			{Name: "mobile", TechStack: []string{"flutter", "kotlin", "swift"}},
		}},
		{Name: "design", Subcategories: []Subcategory{
			{Name: "product", TechStack: []string{"figma", "sketch"}},
			{Name: "brand", TechStack: []string{"illustrator", "photoshop"}},
		}},
		{Name: "operations", Subcategories: []Subcategory{
			{Name: "devops", TechStack: []string{"aws", "gcp", "kubernetes", "terraform"}},
		}},
	}}
}

func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var taxonomy Taxonomy
	if err := yaml.Unmarshal(data, &taxonomy); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	seen := map[string]struct{}{}
	for _, category := range taxonomy.Categories {
		if category.Name == "" {
			return nil, errors.New("taxonomy category without name")
		}
		if _, dup := seen[category.Name]; dup {
			return nil, fmt.Errorf("taxonomy category %q defined twice", category.Name)
		}
		seen[category.Name] = struct{}{}
	}
	return &taxonomy, nil
}

// LoadTaxonomy reads the taxonomy from yaml, falling back to DefaultTaxonomy for
// an empty path.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

func (t *Taxonomy) category(name string) (Category, bool) {
	for _, category := range t.Categories {
		if category.Name == name {
			return category, true
		}
	}
	return Category{}, false
}

func (c Category) subcategory(name string) (Subcategory, bool) {
	for _, subcategory := range c.Subcategories {
		if subcategory.Name == name {
			return subcategory, true
		}
	}
	return Subcategory{}, false
}

// Validate enforces the cascade: a subcategory needs its category and a tech
// stack needs its subcategory.
func (t *Taxonomy) Validate(filter Filter) error {
	if filter.Category == "" {
		if filter.Subcategory != "" {
			return fmt.Errorf("%w: subcategory %q needs a category", ErrInvalidFilter, filter.Subcategory)
		}
		if len(filter.TechStack) > 0 {
			return fmt.Errorf("%w: tech stack needs a category and subcategory", ErrInvalidFilter)
		}
		return nil
	}
	category, ok := t.category(filter.Category)
	if !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, filter.Category)
	}
	if filter.Subcategory == "" {
		if len(filter.TechStack) > 0 {
			return fmt.Errorf("%w: tech stack needs a subcategory", ErrInvalidFilter)
		}
		return nil
	}
	subcategory, ok := category.subcategory(filter.Subcategory)
	if !ok {
		return fmt.Errorf("%w: subcategory %q does not belong to %q", ErrInvalidFilter, filter.Subcategory, filter.Category)
	}
	for _, tech := range filter.TechStack {
		if !contains(subcategory.TechStack, tech) {
			return fmt.Errorf("%w: tech %q does not belong to %q", ErrInvalidFilter, tech, filter.Subcategory)
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
