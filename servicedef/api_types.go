// Package servicedef describes the wire conventions of the storefront API under test.
package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// DefaultLoginPath is the authentication endpoint, relative to the API base URL.
const DefaultLoginPath = "/auth/login"

// Envelope is the conventional shape of every JSON response body.
type Envelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    ldvalue.Value `json:"data,omitempty"`
}

// LoginParams is the request body for the login endpoint. Either Email or Phone identifies
// the account.
type LoginParams struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// IsDefined returns true if an account identifier and a password are both present.
func (p LoginParams) IsDefined() bool {
	return (p.Email != "" || p.Phone != "") && p.Password != ""
}

// Identity returns the account identifier, for log messages.
func (p LoginParams) Identity() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Phone
}

// LoginData is the "data" property of a successful login response.
type LoginData struct {
	Token string        `json:"token"`
	User  ldvalue.Value `json:"user,omitempty"`
}

// Pagination is the "pagination" property of list responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// PaginationKey is the top-level property holding the Pagination object.
const PaginationKey = "pagination"
