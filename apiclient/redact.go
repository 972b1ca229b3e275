package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const redactedValue = "<redacted>"

// sensitiveKeys are JSON property names whose values are never written to a log, compared
// case-insensitively.
var sensitiveKeys = map[string]bool{
	"password":     true,
	"token":        true,
	"accesstoken":  true,
	"refreshtoken": true,
}

// redactBody returns a body for logging. Values of sensitive properties in a JSON body are
// replaced at any depth; a non-JSON body is returned as is.
func redactBody(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return string(data)
	}
	value := ldvalue.Parse(trimmed)
	if !containsSensitiveKey(value) {
		return string(data)
	}
	return redactValue(value).JSONString()
}

func containsSensitiveKey(v ldvalue.Value) bool {
	switch v.Type() {
	case ldvalue.ObjectType:
		for _, k := range v.Keys() {
			if sensitiveKeys[strings.ToLower(k)] || containsSensitiveKey(v.GetByKey(k)) {
				return true
			}
		}
	case ldvalue.ArrayType:
		for i := 0; i < v.Count(); i++ {
			if containsSensitiveKey(v.GetByIndex(i)) {
				return true
			}
		}
	}
	return false
}

func redactValue(v ldvalue.Value) ldvalue.Value {
	switch v.Type() {
	case ldvalue.ObjectType:
		b := ldvalue.ObjectBuild()
		for _, k := range v.Keys() {
			if sensitiveKeys[strings.ToLower(k)] {
				b.Set(k, ldvalue.String(redactedValue))
			} else {
				b.Set(k, redactValue(v.GetByKey(k)))
			}
		}
		return b.Build()
	case ldvalue.ArrayType:
		b := ldvalue.ArrayBuild()
		for i := 0; i < v.Count(); i++ {
			b.Add(redactValue(v.GetByIndex(i)))
		}
		return b.Build()
	}
	return v
}
