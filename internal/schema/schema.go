package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var files embed.FS

type Name string

const (
	GoalCreate     Name = "goal_create"
	GoalUpdate     Name = "goal_update"
	LaunchCreate   Name = "launch_create"
	LaunchResubmit Name = "launch_resubmit"
	LaunchEvaluate Name = "launch_evaluate"
)

// compiled caches schemas by name.
var compiled sync.Map // map[Name]*jsonschema.Schema

// Error lists the offending fields keyed by their dotted path.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, field+": "+reason)
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// Validate checks a raw request body against the named schema.
func Validate(name Name, raw []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &Error{Fields: map[string]string{"body": "invalid JSON"}}
	}
	s, err := get(name)
	if err != nil {
		return err
	}
	if err := s.Validate(parsed); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		return &Error{Fields: collect(verr)}
	}
	return nil
}

func get(name Name) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	data, err := files.ReadFile("schemas/" + string(name) + ".json")
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", name, err)
	}
	compiled.Store(name, s)
	return s, nil
}

// collect flattens the validation tree into one message per instance path.
// The first message for a path wins.
func collect(verr *jsonschema.ValidationError) map[string]string {
	fields := make(map[string]string)
	for _, unit := range verr.BasicOutput().Errors {
		if unit.Error == nil {
			continue
		}
		field := strings.ReplaceAll(strings.TrimPrefix(unit.InstanceLocation, "/"), "/", ".")
		if field == "" {
			field = "body"
		}
		if _, seen := fields[field]; seen {
			continue
		}
		fields[field] = unit.Error.String()
	}
	if len(fields) == 0 {
		fields["body"] = verr.Error()
	}
	return fields
}
