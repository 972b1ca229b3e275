// Package harness provides the API-specific test API that test cases are written against.
//
// Runner infrastructure that is not specific to HTTP APIs, such as sequencing cases and
// accumulating results, is in the lower-level framework package.
package harness
