package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)
	envPattern         = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// Built-in placeholder names.
const (
	uuidPlaceholder  = "uuid"
	runIDPlaceholder = "runId"
)

// VariableLookup returns the value of a saved variable.
type VariableLookup func(name string) (string, bool)

// expander replaces ${ENV} references with environment variables, and {{name}} references with
// saved variables or built-in values.
type expander struct {
	variables VariableLookup
	lookupEnv func(string) (string, bool)
	runID     string
}

func newExpander(variables VariableLookup, runID string) *expander {
	return &expander{
		variables: variables,
		lookupEnv: os.LookupEnv,
		runID:     runID,
	}
}

func (e *expander) expand(s string) (string, error) {
	if !strings.Contains(s, "${") && !strings.Contains(s, "{{") {
		return s, nil
	}
	var firstErr error
	s = envPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := envPattern.FindStringSubmatch(ref)[1]
		value, ok := e.lookupEnv(name)
		if !ok && firstErr == nil {
			firstErr = fmt.Errorf("environment variable %s is not set", name)
		}
		return value
	})
	s = placeholderPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := placeholderPattern.FindStringSubmatch(ref)[1]
		switch name {
		case uuidPlaceholder:
			return uuid.NewString()
		case runIDPlaceholder:
			return e.runID
		}
		if e.variables != nil {
			if value, ok := e.variables(name); ok {
				return value
			}
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("variable %q has not been set by an earlier case", name)
		}
		return ref
	})
	return s, firstErr
}

func (e *expander) expandMap(m map[string]string) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		expanded, err := e.expand(v)
		if err != nil {
			return nil, err
		}
		out[k] = expanded
	}
	return out, nil
}

// expandValue expands every string within a JSON value, including object keys.
func (e *expander) expandValue(value ldvalue.Value) (ldvalue.Value, error) {
	switch value.Type() {
	case ldvalue.StringType:
		s, err := e.expand(value.StringValue())
		if err != nil {
			return ldvalue.Null(), err
		}
		return ldvalue.String(s), nil
	case ldvalue.ArrayType:
		builder := ldvalue.ArrayBuild()
		for i := 0; i < value.Count(); i++ {
			item, err := e.expandValue(value.GetByIndex(i))
			if err != nil {
				return ldvalue.Null(), err
			}
			builder.Add(item)
		}
		return builder.Build(), nil
	case ldvalue.ObjectType:
		builder := ldvalue.ObjectBuild()
		for _, key := range value.Keys() {
			expandedKey, err := e.expand(key)
			if err != nil {
				return ldvalue.Null(), err
			}
			item, err := e.expandValue(value.GetByKey(key))
			if err != nil {
				return ldvalue.Null(), err
			}
			builder.Set(expandedKey, item)
		}
		return builder.Build(), nil
	default:
		return value, nil
	}
}

// stringify converts a scalar JSON value to the string form used in a query parameter.
func stringify(value ldvalue.Value) string {
	if value.Type() == ldvalue.StringType {
		return value.StringValue()
	}
	return value.JSONString()
}
