package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ParamSpec describes a single tool input parameter.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// ToolSpec is an immutable tool declaration: identity, description and
// input contract. The full set forms the registry and is constructed
// once at process start.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
}

// InputSchema derives the JSON schema advertised over the protocol.
func (t ToolSpec) InputSchema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(t.Params)),
	}
	for _, param := range t.Params {
		prop := &jsonschema.Schema{
			Type:        param.Type,
			Description: param.Description,
		}
		if param.Default != nil {
			if raw, err := json.Marshal(param.Default); err == nil {
				prop.Default = json.RawMessage(raw)
			}
		}
		schema.Properties[param.Name] = prop
		if param.Required {
			schema.Required = append(schema.Required, param.Name)
		}
	}
	return schema
}

// ValidateArgs checks required parameters and fills optional ones with
// their declared defaults. It must stay side-effect free: rejection
// happens before any ledger or backend activity.
func (t ToolSpec) ValidateArgs(args map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(t.Params))
	var missing []string
	for _, param := range t.Params {
		value, ok := args[param.Name]
		if ok && value != nil {
			resolved[param.Name] = value
			continue
		}
		if param.Required {
			missing = append(missing, param.Name)
			continue
		}
		if param.Default != nil {
			resolved[param.Name] = param.Default
		}
	}
	if len(missing) > 0 {
		return nil, E(CodeInvalidArgument, "domain.ValidateArgs",
			fmt.Sprintf("tool %s: missing required parameters: %s", t.Name, strings.Join(missing, ", ")), nil)
	}
	return resolved, nil
}

// StringArg extracts a string parameter from resolved arguments.
func StringArg(args map[string]any, name string) (string, error) {
	value, ok := args[name]
	if !ok {
		return "", E(CodeInvalidArgument, "domain.StringArg", fmt.Sprintf("parameter %s is missing", name), nil)
	}
	str, ok := value.(string)
	if !ok {
		return "", E(CodeInvalidArgument, "domain.StringArg", fmt.Sprintf("parameter %s must be a string", name), nil)
	}
	return str, nil
}

// NumberArg extracts a numeric parameter, accepting the JSON decoder's
// float64 as well as integer defaults declared in the registry.
func NumberArg(args map[string]any, name string) (float64, error) {
	value, ok := args[name]
	if !ok {
		return 0, E(CodeInvalidArgument, "domain.NumberArg", fmt.Sprintf("parameter %s is missing", name), nil)
	}
	switch n := value.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, E(CodeInvalidArgument, "domain.NumberArg", fmt.Sprintf("parameter %s must be a number", name), err)
		}
		return parsed, nil
	default:
		return 0, E(CodeInvalidArgument, "domain.NumberArg", fmt.Sprintf("parameter %s must be a number", name), nil)
	}
}
