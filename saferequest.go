package ratelimit

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// SafeRequest is a detached, cloneable snapshot of a request's head and
// fully buffered body. The incoming body is a non-replayable stream, and
// several strategies need to inspect the head while the body is still
// needed intact for forwarding, so it is read once and carried as plain
// bytes from then on.
type SafeRequest struct {
	Method string
	URL    *url.URL
	Host   string
	Header http.Header
	Body   []byte
}

// NewSafeRequest snapshots r's method, URL, host and headers and pairs
// them with an already-read body. It does not read r.Body itself: callers
// buffer the body first (see ReadBody) so a read failure can be reported
// before any SafeRequest exists.
func NewSafeRequest(r *http.Request, body []byte) *SafeRequest {
	u := *r.URL
	return &SafeRequest{
		Method: r.Method,
		URL:    &u,
		Host:   r.Host,
		Header: r.Header.Clone(),
		Body:   body,
	}
}

// ReadBody drains r.Body up to maxBytes+1 bytes. It returns a non-nil err if
// the body could not be read at all (the caller should answer 500), and
// tooLarge=true if the body exceeded maxBytes (the caller should answer
// 413). maxBytes <= 0 means unbounded.
func ReadBody(r *http.Request, maxBytes int64) (body []byte, tooLarge bool, err error) {
	if r.Body == nil {
		return nil, false, nil
	}
	defer r.Body.Close()

	if maxBytes <= 0 {
		body, err = io.ReadAll(r.Body)
		return body, false, err
	}

	limited := io.LimitReader(r.Body, maxBytes+1)
	body, err = io.ReadAll(limited)
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > maxBytes {
		return nil, true, nil
	}
	return body, false, nil
}

// Rebuild reassembles an outbound *http.Request from the snapshot, ready
// to be handed to a Forwarder. Method, URL (path and query included, as a
// copy of the snapshot's URL), and every header are preserved exactly; the body is a fresh
// reader over the buffered bytes so it can be read again downstream.
func (s *SafeRequest) Rebuild(ctx context.Context) *http.Request {
	u := *s.URL
	req := &http.Request{
		Method:        s.Method,
		URL:           &u,
		Header:        s.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(s.Body)),
		ContentLength: int64(len(s.Body)),
		Host:          s.Host,
	}
	return req.WithContext(ctx)
}
