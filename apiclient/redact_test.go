package apiclient

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestRedactBody(t *testing.T) {
	for _, p := range []struct {
		name, body string
		expected   string
	}{
		{"top level", `{"email":"a@b.c","password":"hunter2"}`, `{"email":"a@b.c","password":"<redacted>"}`},
		{"nested", `{"data":{"Token":"jwt","id":"u1"}}`, `{"data":{"Token":"<redacted>","id":"u1"}}`},
		{"in array", `[{"refreshToken":"r"},{"name":"x"}]`, `[{"refreshToken":"<redacted>"},{"name":"x"}]`},
	} {
		t.Run(p.name, func(t *testing.T) {
			assert.JSONEq(t, p.expected, redactBody([]byte(p.body)))
		})
	}
}

func TestRedactBodyLeavesOtherBodiesUnchanged(t *testing.T) {
	assert.Equal(t, `{"name":"It's"}`, redactBody([]byte(`{"name":"It's"}`)))
	assert.Equal(t, "token=abc", redactBody([]byte("token=abc")))
	assert.Equal(t, "", redactBody(nil))
}

func TestCurlCommandRedactsCredentialsInBody(t *testing.T) {
	cmd := CurlCommand("POST", "http://localhost/api/auth/login", nil, []byte(`{"email":"a@b.c","password":"hunter2"}`))
	assert.NotContains(t, cmd, "hunter2")
	assert.Contains(t, cmd, redactedValue)
}

func TestTruncateKeepsWholeRunes(t *testing.T) {
	s := strings.Repeat("a", 9) + "éé"
	out := truncate(s, 10)
	require.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("a", 9)+"...", out)

	assert.Equal(t, "short", truncate("short", 10))
}

func TestLongNonJSONMessageIsTruncatedOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("x", maxMessageLength-1) + "ü trailing"
	result := Result{Status: 502, Payload: ldvalue.String(body)}
	msg := result.Message()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
}
