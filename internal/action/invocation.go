package action

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// literalJSON decodes numbers as their source literal so parameter values
// reach the backend exactly as sent.
var literalJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Invocation is one request from the orchestrator. ActionGroup and HTTPMethod
// are opaque and only echoed back; APIPath selects the strategy.
type Invocation struct {
	ActionGroup string     `json:"actionGroup"`
	APIPath     string     `json:"apiPath"`
	HTTPMethod  string     `json:"httpMethod"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters maps parameter names to values. Keys are not guaranteed present.
type Parameters map[string]string

// Get returns the value for key, or "" when absent.
func (p Parameters) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Has reports whether key is present with a non-empty value.
func (p Parameters) Has(key string) bool {
	return p.Get(key) != ""
}

// Keys returns the parameter names in sorted order.
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type namedParameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// UnmarshalJSON accepts either an object of name/value pairs or the list form
// [{"name": ..., "type": ..., "value": ...}] used by agent orchestrators.
// Numbers keep their JSON literal, booleans become "true" or "false", and
// nulls are dropped.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	out := Parameters{}

	var raw any
	if err := literalJSON.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode parameters: %w", err)
	}

	switch v := raw.(type) {
	case nil:
	case map[string]any:
		for name, value := range v {
			if s, ok := stringify(value); ok {
				out[name] = s
			}
		}
	case []any:
		var list []namedParameter
		if err := literalJSON.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode parameter list: %w", err)
		}
		for _, np := range list {
			if np.Name == "" {
				return errors.New("decode parameter list: parameter without a name")
			}
			if s, ok := stringify(np.Value); ok {
				out[np.Name] = s
			}
		}
	default:
		return fmt.Errorf("decode parameters: unsupported JSON type %T", raw)
	}

	*p = out
	return nil
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case stdjson.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// DecodeInvocation parses a JSON invocation.
func DecodeInvocation(data []byte) (Invocation, error) {
	var inv Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		return Invocation{}, fmt.Errorf("decode invocation: %w", err)
	}
	if inv.Parameters == nil {
		inv.Parameters = Parameters{}
	}
	return inv, nil
}
