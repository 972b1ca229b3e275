// Package manifest reads declarative lists of API test cases and turns them into framework
// test cases.
//
// A manifest can be written in YAML, JSON, or TOML; all three are decoded into the same
// structure using its JSON field names.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a manifest file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Manifest is an ordered list of test cases plus settings that apply to all of them.
type Manifest struct {
	Name string `json:"name"`
	// BaseURL is used if no base URL was given on the command line or in the environment.
	BaseURL   string              `json:"baseUrl,omitempty"`
	TimeoutMS ldvalue.OptionalInt `json:"timeoutMs,omitempty"`
	Headers   map[string]string   `json:"headers,omitempty"`
	Variables map[string]string   `json:"variables,omitempty"`
	Cases     []CaseSpec          `json:"cases"`
}

// CaseSpec describes one test case. Exactly one of Login and Request must be set.
type CaseSpec struct {
	Name     string `json:"name"`
	Critical bool   `json:"critical,omitempty"`
	// Auth is the role whose stored token is sent with the request. If there is none, the
	// case fails with a precondition failure without sending anything.
	Auth string `json:"auth,omitempty"`
	// Token is sent as the bearer token instead of a stored one, e.g. to test an expired token.
	Token     string              `json:"token,omitempty"`
	Login     *LoginSpec          `json:"login,omitempty"`
	Request   *RequestSpec        `json:"request,omitempty"`
	Expect    ExpectSpec          `json:"expect,omitempty"`
	Save      map[string]string   `json:"save,omitempty"`
	Cleanup   *CleanupSpec        `json:"cleanup,omitempty"`
	TimeoutMS ldvalue.OptionalInt `json:"timeoutMs,omitempty"`
}

// LoginSpec logs in as a role. Fields left empty are taken from the configured credentials
// for the role.
type LoginSpec struct {
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

type RequestSpec struct {
	Method  string                   `json:"method"`
	Path    string                   `json:"path"`
	Query   map[string]ldvalue.Value `json:"query,omitempty"`
	Headers map[string]string        `json:"headers,omitempty"`
	Body    ldvalue.Value            `json:"body,omitempty"`
}

// ExpectSpec is the success predicate for a case.
type ExpectSpec struct {
	// Status is the exact status expected. Zero means any status below 400.
	Status int `json:"status,omitempty"`
	// Fields are dotted paths that must be present and non-null in the response.
	Fields []string `json:"fields,omitempty"`
	// Equals maps dotted paths to their expected values.
	Equals map[string]ldvalue.Value `json:"equals,omitempty"`
	// Envelope requires the body to have "success": true.
	Envelope bool `json:"envelope,omitempty"`
	// Paginated names a resource; data.<resource> must be an array with a pagination object.
	Paginated string `json:"paginated,omitempty"`
}

// CleanupSpec is a request to run after all cases have finished, such as deleting something
// the case created.
type CleanupSpec struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   string `json:"auth,omitempty"`
}

// FormatForPath determines the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("cannot determine manifest format of %q (expected .yaml, .yml, .json, or .toml)", path)
	}
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte, format Format) (*Manifest, error) {
	jsonData, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.DisallowUnknownFields()
	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	var raw interface{}
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("malformed YAML: %w", err)
		}
	case FormatTOML:
		var table map[string]interface{}
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("malformed TOML: %w", err)
		}
		raw = table
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}
	normalized, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// normalize converts the generic maps produced by the YAML decoder, which may have non-string
// keys, into values that encoding/json accepts.
func normalize(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []map[string]interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
