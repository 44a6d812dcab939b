package task

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"
)

var (
	nullableString = &jsonschema.Schema{Types: []string{"string", "null"}}
	stringList     = &jsonschema.Schema{
		Types: []string{"array", "null"},
		Items: &jsonschema.Schema{Type: "string"},
	}

	elementCheckSchema = &jsonschema.Schema{
		Type:     "object",
		Required: []string{"locator"},
		Properties: map[string]*jsonschema.Schema{
			"locator":           {Type: "string"},
			"required_state":    nullableString,
			"required_contents": nullableString,
			"attribute":         nullableString,
			"check":             nullableString,
			"required_range": {
				Types:    []string{"array", "null"},
				Items:    &jsonschema.Schema{Type: "number"},
				MinItems: ptr.To(2),
				MaxItems: ptr.To(2),
			},
		},
	}

	taskSchema = &jsonschema.Schema{
		Type:     "object",
		Required: []string{"task_id"},
		Properties: map[string]*jsonschema.Schema{
			"task_id":    {Type: "integer"},
			"intent":     {Type: "string"},
			"difficulty": {Type: "string"},
			"start_url":  {Type: "string"},
			"eval": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"eval_types": {
						Types: []string{"array", "null"},
						Items: &jsonschema.Schema{Enum: evalTypeEnum()},
					},
					"reference_answers": {
						Types: []string{"object", "null"},
						Properties: map[string]*jsonschema.Schema{
							"exact_match":  nullableString,
							"url_pattern":  nullableString,
							"must_include": stringList,
							"must_exclude": stringList,
						},
					},
					"program_html": {
						Types: []string{"array", "null"},
						Items: elementCheckSchema,
					},
				},
			},
		},
	}

	catalogSchema = &jsonschema.Schema{
		Type:  "array",
		Items: taskSchema,
	}

	resolveOnce    sync.Once
	resolvedSchema *jsonschema.Resolved
	resolveErr     error
)

func evalTypeEnum() []any {
	enum := make([]any, 0, len(EvalTypes))
	for _, t := range EvalTypes {
		enum = append(enum, string(t))
	}
	return enum
}

// CatalogSchema returns the resolved JSON schema that raw catalog documents are checked against
func CatalogSchema() (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolvedSchema, resolveErr = catalogSchema.Resolve(nil)
	})

	if resolveErr != nil {
		return nil, fmt.Errorf("failed to resolve catalog schema: %w", resolveErr)
	}

	return resolvedSchema, nil
}

func validateSchema(jsonData []byte) error {
	schema, err := CatalogSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(jsonData, &instance); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}

	return nil
}
