package reader

import (
	"fmt"
	"io"

	"github.com/annolab/imagejudge/internal/domain"
	"gopkg.in/yaml.v3"
)

// SchemaDocument is the YAML envelope a question schema is declared in.
type SchemaDocument struct {
	Kind      string            `yaml:"kind"`
	Version   string            `yaml:"version"`
	Metadata  SchemaMetadata    `yaml:"metadata"`
	Questions []domain.Question `yaml:"questions"`
}

type SchemaMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func (d *SchemaDocument) Validate() error {
	if d.Kind != "QuestionSchema" {
		return fmt.Errorf("kind must be QuestionSchema, got %q", d.Kind)
	}
	if d.Version == "" {
		return fmt.Errorf("version is required")
	}
	if d.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	return nil
}

type YAMLSchemaLoader struct {
	reader io.Reader
}

func NewYAMLSchemaLoader(reader io.Reader) *YAMLSchemaLoader {
	return &YAMLSchemaLoader{
		reader: reader,
	}
}

// Load decodes a schema document. With validate set, both the envelope and
// the question set (uniqueness, non-empty domains) are checked.
func (sl *YAMLSchemaLoader) Load(validate bool) (*domain.QuestionSchema, error) {
	decoder := yaml.NewDecoder(sl.reader)
	var doc SchemaDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	schema := domain.NewQuestionSchema(doc.Questions)
	if validate {
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		if err := schema.Validate(); err != nil {
			return nil, err
		}
	}
	return schema, nil
}
