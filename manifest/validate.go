package manifest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/storefront-qa/api-contract-tests/credentials"
)

var validMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Validate checks the structure of the manifest without contacting the API.
func (m *Manifest) Validate() error {
	if len(m.Cases) == 0 {
		return fmt.Errorf("manifest %q has no cases", m.Name)
	}
	if m.TimeoutMS.IsDefined() && m.TimeoutMS.IntValue() <= 0 {
		return fmt.Errorf("timeoutMs must be positive")
	}
	names := make(map[string]bool, len(m.Cases))
	for i, c := range m.Cases {
		if c.Name == "" {
			return fmt.Errorf("case %d has no name", i+1)
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate case name %q", c.Name)
		}
		names[c.Name] = true
		if err := c.validate(); err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
	}
	return nil
}

func (c CaseSpec) validate() error {
	switch {
	case c.Login != nil && c.Request != nil:
		return fmt.Errorf("cannot have both login and request")
	case c.Login == nil && c.Request == nil:
		return fmt.Errorf("must have either login or request")
	}
	if c.Login != nil {
		if _, err := credentials.ParseRole(c.Login.Role); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if c.Auth != "" || c.Token != "" {
			return fmt.Errorf("a login case cannot also have auth or token")
		}
	}
	if c.Request != nil {
		if err := validateMethod(c.Request.Method); err != nil {
			return fmt.Errorf("request: %w", err)
		}
		if c.Request.Path == "" {
			return fmt.Errorf("request: path is required")
		}
	}
	if c.Auth != "" {
		if c.Token != "" {
			return fmt.Errorf("cannot have both auth and token")
		}
		if _, err := credentials.ParseRole(c.Auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if c.Expect.Status != 0 && (c.Expect.Status < 100 || c.Expect.Status > 599) {
		return fmt.Errorf("expect: invalid status %d", c.Expect.Status)
	}
	for name, path := range c.Save {
		if name == "" || path == "" {
			return fmt.Errorf("save: variable name and path are required")
		}
	}
	if c.TimeoutMS.IsDefined() && c.TimeoutMS.IntValue() <= 0 {
		return fmt.Errorf("timeoutMs must be positive")
	}
	if c.Cleanup != nil {
		if err := validateMethod(c.Cleanup.Method); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		if c.Cleanup.Path == "" {
			return fmt.Errorf("cleanup: path is required")
		}
		if c.Cleanup.Auth != "" {
			if _, err := credentials.ParseRole(c.Cleanup.Auth); err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}
		}
	}
	return nil
}

func validateMethod(method string) error {
	upper := strings.ToUpper(method)
	for _, m := range validMethods {
		if m == upper {
			return nil
		}
	}
	return fmt.Errorf("unsupported method %q (must be one of %s)", method, strings.Join(validMethods, ", "))
}
