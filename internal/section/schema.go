package section

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rowsSchema describes a JSON section-assignment table. slides may be a
// string ("1-3,5") or a bare number, which spreadsheets tend to export.
const rowsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "heading1": {"type": ["string", "null"]},
      "heading2": {"type": ["string", "null"]},
      "slides":   {"type": ["string", "integer", "null"]}
    },
    "additionalProperties": false
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func rowSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rows.json", bytes.NewReader([]byte(rowsSchema))); err != nil {
			schemaErr = fmt.Errorf("load rows schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("rows.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile rows schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}
