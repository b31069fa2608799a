package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

const snippetLen = 400

// ResponseAssertion chains checks against a single API response
type ResponseAssertion struct {
	t    *testing.T
	resp *http.Response
	body *string
}

// AssertResponse starts an assertion chain for resp
func AssertResponse(t *testing.T, resp *http.Response) *ResponseAssertion {
	t.Helper()
	return &ResponseAssertion{t: t, resp: resp}
}

func (ra *ResponseAssertion) text() string {
	ra.t.Helper()
	if ra.body != nil {
		return *ra.body
	}
	defer ra.resp.Body.Close()
	data, err := io.ReadAll(ra.resp.Body)
	if err != nil {
		ra.t.Fatalf("reading response body: %v", err)
	}
	s := string(data)
	ra.body = &s
	return s
}

func (ra *ResponseAssertion) object() map[string]interface{} {
	ra.t.Helper()
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(ra.text()), &obj); err != nil {
		ra.t.Fatalf("body is not a JSON object: %v\n%s", err, snippet(ra.text()))
	}
	return obj
}

// Status checks the status code, printing the body on mismatch
func (ra *ResponseAssertion) Status(code int) *ResponseAssertion {
	ra.t.Helper()
	if ra.resp.StatusCode != code {
		ra.t.Errorf("status = %d, want %d\n%s", ra.resp.StatusCode, code, snippet(ra.text()))
	}
	return ra
}

func (ra *ResponseAssertion) StatusOK() *ResponseAssertion {
	ra.t.Helper()
	return ra.Status(http.StatusOK)
}

func (ra *ResponseAssertion) StatusNotFound() *ResponseAssertion {
	ra.t.Helper()
	return ra.Status(http.StatusNotFound)
}

func (ra *ResponseAssertion) StatusBadRequest() *ResponseAssertion {
	ra.t.Helper()
	return ra.Status(http.StatusBadRequest)
}

// ContentTypeJSON checks the API's JSON content type
func (ra *ResponseAssertion) ContentTypeJSON() *ResponseAssertion {
	ra.t.Helper()
	if ct := ra.resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		ra.t.Errorf("Content-Type = %q, want application/json", ct)
	}
	return ra
}

// Contains checks for a substring of the raw body
func (ra *ResponseAssertion) Contains(substr string) *ResponseAssertion {
	ra.t.Helper()
	return ra.ContainsAll(substr)
}

// ContainsAll reports every missing substring, not just the first
func (ra *ResponseAssertion) ContainsAll(substrs ...string) *ResponseAssertion {
	ra.t.Helper()
	body := ra.text()
	var missing []string
	for _, s := range substrs {
		if !strings.Contains(body, s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		ra.t.Errorf("body is missing %q\n%s", missing, snippet(body))
	}
	return ra
}

func (ra *ResponseAssertion) NotContains(substr string) *ResponseAssertion {
	ra.t.Helper()
	if strings.Contains(ra.text(), substr) {
		ra.t.Errorf("body unexpectedly contains %q", substr)
	}
	return ra
}

// Matches checks the raw body against a regular expression
func (ra *ResponseAssertion) Matches(pattern string) *ResponseAssertion {
	ra.t.Helper()
	re, err := regexp.Compile(pattern)
	if err != nil {
		ra.t.Fatalf("bad pattern %q: %v", pattern, err)
	}
	if !re.MatchString(ra.text()) {
		ra.t.Errorf("body does not match %q\n%s", pattern, snippet(ra.text()))
	}
	return ra
}

// JSONField compares a top-level field after decoding, so numbers are float64
func (ra *ResponseAssertion) JSONField(key string, want interface{}) *ResponseAssertion {
	ra.t.Helper()
	got, ok := ra.object()[key]
	switch {
	case !ok:
		ra.t.Errorf("JSON field %q missing\n%s", key, snippet(ra.text()))
	case !reflect.DeepEqual(got, want):
		ra.t.Errorf("JSON field %q = %#v, want %#v", key, got, want)
	}
	return ra
}

// Decode unmarshals the body into v
func (ra *ResponseAssertion) Decode(v interface{}) *ResponseAssertion {
	ra.t.Helper()
	if err := json.Unmarshal([]byte(ra.text()), v); err != nil {
		ra.t.Fatalf("decoding body: %v\n%s", err, snippet(ra.text()))
	}
	return ra
}

func snippet(s string) string {
	if len(s) <= snippetLen {
		return s
	}
	return s[:snippetLen] + "..."
}
