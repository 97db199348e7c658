package pattern

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a structured value Pattern for object-shaped arguments (e.g. a
// "--config" option whose value is a small JSON document). It is grounded
// on the teacher's core/types.Validator, which compiles and caches
// JSON Schema validators the same way (SPEC_FULL.md §3).
type Schema struct {
	base
	name string
	raw  map[string]any

	mu     sync.Mutex
	schema *jsonschema.Schema
	err    error
}

// NewSchema builds a Schema pattern from a JSON Schema document (as a Go
// map, the same shape CompileDecoder's callers build by hand).
func NewSchema(name string, doc map[string]any) *Schema {
	return &Schema{name: name, raw: doc}
}

func (s *Schema) Name() string {
	if s.name != "" {
		return s.name
	}
	return "object"
}

func (s *Schema) compiled() (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema != nil || s.err != nil {
		return s.schema, s.err
	}
	body, err := json.Marshal(s.raw)
	if err != nil {
		s.err = fmt.Errorf("marshal schema %q: %w", s.Name(), err)
		return nil, s.err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := "schema://" + s.Name()
	if err := compiler.AddResource(url, strings.NewReader(string(body))); err != nil {
		s.err = fmt.Errorf("add schema resource %q: %w", s.Name(), err)
		return nil, s.err
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		s.err = fmt.Errorf("compile schema %q: %w", s.Name(), err)
		return nil, s.err
	}
	s.schema = sch
	return s.schema, nil
}

// Validate parses text as JSON and checks it against the compiled schema.
func (s *Schema) Validate(text string, def any) Result {
	sch, err := s.compiled()
	if err != nil {
		return withDefault(def, Result{Flag: Error, Err: err})
	}
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return withDefault(def, errf("%q is not valid JSON: %w", text, err))
	}
	if err := sch.Validate(doc); err != nil {
		return withDefault(def, errf("%q does not satisfy schema %q: %w", text, s.Name(), err))
	}
	return valid(doc)
}

func (s *Schema) Invalidate(text string, def any) Result {
	return s.base.invalidate(s, text, def)
}
