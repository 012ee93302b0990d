package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

type compiledSchema struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// compiled holds one entry per *Schema so two schemas sharing a name never
// collide.
var compiled sync.Map // map[*Schema]*compiledSchema

// Validate checks raw JSON against schema. A nil schema accepts anything.
// Failures are reported as *ErrInvalidResponse carrying raw.
func Validate(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}

	sch, err := compile(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("does not match %s: %w", schema.Name, err)}
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	v, _ := compiled.LoadOrStore(schema, &compiledSchema{})
	entry := v.(*compiledSchema)
	entry.once.Do(func() {
		entry.schema, entry.err = compileDefinition(schema)
	})
	return entry.schema, entry.err
}

func compileDefinition(schema *Schema) (*jsonschema.Schema, error) {
	// Definitions are Go maps; round-trip them so the compiler sees plain
	// JSON values.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", schema.Name, err)
	}

	url := "mem:///" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", schema.Name, err)
	}
	return sch, nil
}
