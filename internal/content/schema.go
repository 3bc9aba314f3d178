// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holokit/internal/errs"
)

// SchemaID is the $id of the generated pack schema.
const SchemaID = "https://holomush.dev/schemas/holokit-pack.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jschema.Schema
	compileErr     error
)

// GenerateSchema generates a JSON Schema from the Pack struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Pack{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "holokit content pack"
	schema.Description = "XP curve and achievement definitions"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the pack JSON Schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return errs.InvalidArgument("pack", "", "content pack is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errs.InvalidArgument("pack", "<yaml>", "invalid YAML: %v", err)
	}

	// Round-trip through JSON so numbers and maps have the shapes the
	// validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return errs.InvalidArgument("pack", "<yaml>", "content pack is not representable as JSON: %v", err)
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return errs.InvalidArgument("pack", "<json>", "content pack is not valid JSON: %v", err)
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return errs.InvalidArgument("pack", "<schema>", "schema validation failed: %s", FormatSchemaError(err))
	}
	return nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, compileErr = compileSchema()
	})
	return compiledSchema, compileErr
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(SchemaID, schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	sch, err := c.Compile(SchemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// FormatSchemaError flattens a validation error to one line.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
