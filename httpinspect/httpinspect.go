// Package httpinspect is an optional, opt-in observer helper for relays
// carrying HTTP(S) traffic. It has no effect on the data path — the relay
// stays byte-transparent per spec.md §1 — it only gives an
// OnDownstreamReadObserve/OnUpstreamReadObserve implementation something
// structured to log.
//
// Grounded on original_source/src/http.rs's RelayRequest/RelayedResponse
// parsing helpers (largely dead code there); reimplemented here on top of
// the standard library's HTTP parser rather than hand-rolling one, since
// net/http already is the idiomatic Go way to parse request/response
// framing and no pack example reaches for a third-party HTTP parser for
// this narrow a need.
package httpinspect

import (
	"bufio"
	"bytes"
	"fmt"
	"net/http"
)

// Request is a lightweight summary of an HTTP request observed on the
// downstream-read path.
type Request struct {
	Method        string
	Path          string
	Host          string
	ContentLength int64
	Headers       http.Header
}

// Response is the symmetric summary for the upstream-read path.
type Response struct {
	StatusCode    int
	Status        string
	ContentLength int64
	Headers       http.Header
}

// ParseRequest attempts to parse data as a single HTTP/1.x request. It
// returns an error if data does not begin with a well-formed request line
// and header block — callers should treat that as "not HTTP traffic" rather
// than as a hard failure, since the relay is byte-transparent and may be
// carrying anything.
func ParseRequest(data []byte) (*Request, error) {
	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("httpinspect: parse request: %w", err)
	}
	defer req.Body.Close()
	return &Request{
		Method:        req.Method,
		Path:          req.URL.RequestURI(),
		Host:          req.Host,
		ContentLength: req.ContentLength,
		Headers:       req.Header,
	}, nil
}

// ParseResponse attempts to parse data as a single HTTP/1.x response.
func ParseResponse(data []byte) (*Response, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("httpinspect: parse response: %w", err)
	}
	defer resp.Body.Close()
	return &Response{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		ContentLength: resp.ContentLength,
		Headers:       resp.Header,
	}, nil
}
