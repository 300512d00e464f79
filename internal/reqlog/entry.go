// Package reqlog records one line per request on the console and in an append-only file.
package reqlog

import (
	"net/http"
	"time"
)

// TimeLayout renders timestamps like "Tue Mar 05 2024 14:02:11 GMT+0100 (CET)".
const TimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// FailureMessage is printed on the console when a line cannot be appended.
const FailureMessage = "Unable to append to server.log."

// Entry is one logged request.
type Entry struct {
	Timestamp string
	Method    string
	URL       string
}

// NewEntry builds the entry for r at time t.
// URL is the request URI as received, path plus query.
func NewEntry(t time.Time, r *http.Request) Entry {
	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}
	return Entry{
		Timestamp: t.Format(TimeLayout),
		Method:    r.Method,
		URL:       uri,
	}
}

// Line formats the entry as "<timestamp>: <METHOD> <URL>".
func (e Entry) Line() string {
	return e.Timestamp + ": " + e.Method + " " + e.URL
}
