package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks inbound client messages against the JSON schemas shipped in schemas/.
type Validator struct {
	hello *jsonschema.Schema
	act   *jsonschema.Schema
}

func LoadValidator(schemaDir string) (*Validator, error) {
	hello, err := jsonschema.Compile(filepath.Join(schemaDir, "hello.schema.json"))
	if err != nil {
		return nil, fmt.Errorf("hello.schema.json: %w", err)
	}
	act, err := jsonschema.Compile(filepath.Join(schemaDir, "act.schema.json"))
	if err != nil {
		return nil, fmt.Errorf("act.schema.json: %w", err)
	}
	return &Validator{hello: hello, act: act}, nil
}

// Validate checks raw against the schema for msgType. Unknown types and a
// nil validator pass through.
func (v *Validator) Validate(msgType string, raw []byte) error {
	if v == nil {
		return nil
	}
	var s *jsonschema.Schema
	switch msgType {
	case TypeHello:
		s = v.hello
	case TypeAct:
		s = v.act
	default:
		return nil
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode %s: %w", msgType, err)
	}
	return s.Validate(doc)
}
