// Package taxonomy loads the two-level category reference list. The list is
// embedded into extraction prompts and drives the category buttons of the
// manual entry flow.
package taxonomy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// schemaJSON guards the reference data shape at startup; a malformed
// taxonomy file is a fatal configuration error, not a runtime surprise.
const schemaJSON = `{
  "type": "object",
  "required": ["categories"],
  "properties": {
    "categories": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "subcategories"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "subcategories": {
            "type": "array",
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

// Category is one main category with its subcategories.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

type document struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Taxonomy is the loaded, validated category list.
type Taxonomy struct {
	categories []Category
}

// Load reads and validates the taxonomy file.
func Load(path string, logger *slog.Logger) (*Taxonomy, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	logger.Info("taxonomy.loaded", "path", path, "categories", len(t.categories))
	return t, nil
}

// Parse decodes and schema-validates raw YAML taxonomy content.
func Parse(raw []byte) (*Taxonomy, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	// Normalize through JSON so the schema validator sees JSON-typed values.
	jsonBytes, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("normalize yaml: %w", err)
	}
	var doc any
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, fmt.Errorf("normalize yaml: %w", err)
	}

	schema := jsonschema.MustCompileString("receipt_categories.schema.json", schemaJSON)
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate taxonomy: %w", err)
	}

	var parsed document
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &Taxonomy{categories: parsed.Categories}, nil
}

// Names lists the main category names in file order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Subcategories returns the subcategories of a main category, nil if the
// category is unknown.
func (t *Taxonomy) Subcategories(name string) []string {
	for _, c := range t.categories {
		if strings.EqualFold(c.Name, name) {
			return c.Subcategories
		}
	}
	return nil
}

// PromptBlock renders the taxonomy as the category,subcategory CSV block
// referenced by the extraction prompts.
func (t *Taxonomy) PromptBlock() string {
	var b bytes.Buffer
	b.WriteString("category,subcategory\n")
	for _, c := range t.categories {
		for _, s := range c.Subcategories {
			fmt.Fprintf(&b, "%q,%q\n", c.Name, s)
		}
	}
	return b.String()
}
