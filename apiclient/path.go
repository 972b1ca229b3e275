package apiclient

import (
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Lookup returns the value at a dotted path, or a null value if any part of the path does not
// exist. Numeric path segments index into arrays. An empty path returns the value itself.
func Lookup(value ldvalue.Value, path string) ldvalue.Value {
	v, _ := LookupOK(value, path)
	return v
}

// LookupOK is like Lookup, but also reports whether the path exists. A property that exists
// with a JSON null value is reported as existing.
func LookupOK(value ldvalue.Value, path string) (ldvalue.Value, bool) {
	if path == "" {
		return value, true
	}
	current := value
	for _, segment := range strings.Split(path, ".") {
		switch current.Type() {
		case ldvalue.ObjectType:
			if !hasKey(current, segment) {
				return ldvalue.Null(), false
			}
			current = current.GetByKey(segment)
		case ldvalue.ArrayType:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= current.Count() {
				return ldvalue.Null(), false
			}
			current = current.GetByIndex(index)
		default:
			return ldvalue.Null(), false
		}
	}
	return current, true
}

func hasKey(object ldvalue.Value, key string) bool {
	for _, k := range object.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
