package apiclient

import (
	"net/http"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

const redactedToken = "Bearer <redacted>"

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CurlCommand returns a shell command line that repeats a request with curl, for pasting into
// a terminal while investigating a failure. Bearer tokens and credentials in a JSON body are
// redacted.
func CurlCommand(method, fullURL string, headers http.Header, body []byte) string {
	var b commandBuilder
	b.add("curl", "-X", method)
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers[name] {
			if strings.EqualFold(name, "Authorization") && strings.HasPrefix(value, "Bearer ") {
				value = redactedToken
			}
			b.add("-H", name+": "+value)
		}
	}
	if len(body) > 0 {
		b.add("--data", redactBody(body))
	}
	b.add(fullURL)
	return b.String()
}
