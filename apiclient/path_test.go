package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestLookup(t *testing.T) {
	doc := ldvalue.Parse([]byte(`{"data":{"user":{"email":"a@b.c","deleted":null},"items":[10,20]}}`))

	for _, tc := range []struct {
		path     string
		expected ldvalue.Value
		exists   bool
	}{
		{"", doc, true},
		{"data.user.email", ldvalue.String("a@b.c"), true},
		{"data.user.deleted", ldvalue.Null(), true},
		{"data.items.1", ldvalue.Int(20), true},
		{"data.items.2", ldvalue.Null(), false},
		{"data.items.x", ldvalue.Null(), false},
		{"data.user.email.length", ldvalue.Null(), false},
		{"data.nope", ldvalue.Null(), false},
	} {
		t.Run(tc.path, func(t *testing.T) {
			value, ok := LookupOK(doc, tc.path)
			assert.Equal(t, tc.exists, ok)
			assert.Equal(t, tc.expected, value)
			assert.Equal(t, tc.expected, Lookup(doc, tc.path))
		})
	}
}
