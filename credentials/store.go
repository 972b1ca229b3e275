// Package credentials holds the bearer tokens acquired by login steps during a run.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/storefront-qa/api-contract-tests/apiclient"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/servicedef"
)

// Role identifies which kind of account a token belongs to.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AllRoles lists the roles that can be logged in.
var AllRoles = []Role{RoleAdmin, RoleUser}

// ParseRole converts a role name, rejecting unknown roles.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q (must be one of %v)", s, AllRoles)
}

// Credentials is a token acquired by a successful login.
type Credentials struct {
	Role       Role
	Token      string
	AcquiredAt time.Time
}

// Caller is the part of apiclient.Client used by the store.
type Caller interface {
	Call(ctx context.Context, req apiclient.Request) apiclient.Result
}

// Store is the only owner of tokens during a run. Tokens are never persisted, and never
// expire; a later login for the same role replaces the earlier token.
type Store struct {
	loginPath string
	tokens    map[Role]Credentials
	now       func() time.Time
	lock      sync.RWMutex
}

// NewStore creates an empty store. If loginPath is empty, servicedef.DefaultLoginPath is used.
func NewStore(loginPath string) *Store {
	if loginPath == "" {
		loginPath = servicedef.DefaultLoginPath
	}
	return &Store{
		loginPath: loginPath,
		tokens:    make(map[Role]Credentials),
		now:       time.Now,
	}
}

func (s *Store) LoginPath() string {
	return s.loginPath
}

// Login calls the authentication endpoint and, if it succeeds and provides a token, stores the
// token for the role. On failure nothing is stored, any previous token for the role is kept,
// and the result describes the failure.
func (s *Store) Login(ctx context.Context, caller Caller, role Role, params servicedef.LoginParams) apiclient.Result {
	result := caller.Call(ctx, apiclient.Request{
		Method: "POST",
		Path:   s.loginPath,
		Body:   params,
	})
	if !result.Success {
		return result
	}
	token := extractToken(result)
	if token == "" {
		result.Success = false
		result.Kind = framework.KindAssertion
		result.Error = fmt.Sprintf("login for role %q succeeded but the response did not include a token", role)
		return result
	}
	s.Set(role, token)
	return result
}

// Set stores a token for the role, replacing any earlier one.
func (s *Store) Set(role Role, token string) {
	s.lock.Lock()
	s.tokens[role] = Credentials{Role: role, Token: token, AcquiredAt: s.now()}
	s.lock.Unlock()
}

// TokenFor returns the token for the role, or false if no login for that role has succeeded.
func (s *Store) TokenFor(role Role) (string, bool) {
	creds, ok := s.Get(role)
	return creds.Token, ok
}

func (s *Store) Get(role Role) (Credentials, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	creds, ok := s.tokens[role]
	return creds, ok
}

// Roles returns the roles that currently have a token, in sorted order.
func (s *Store) Roles() []Role {
	s.lock.RLock()
	ret := make([]Role, 0, len(s.tokens))
	for r := range s.tokens {
		ret = append(ret, r)
	}
	s.lock.RUnlock()
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// extractToken finds the token in a login response: normally data.token, but some endpoints
// return it at the top level.
func extractToken(result apiclient.Result) string {
	var envelope struct {
		Data  servicedef.LoginData `json:"data"`
		Token string               `json:"token"`
	}
	if err := json.Unmarshal(result.Body, &envelope); err != nil {
		return ""
	}
	if envelope.Data.Token != "" {
		return envelope.Data.Token
	}
	return envelope.Token
}
