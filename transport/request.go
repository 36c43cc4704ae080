package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"

	ContentTypeJSON = "application/json"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Request describes one call against the API. The body is held in memory so the same
// request can be replayed after a token refresh.
type Request struct {
	Method string
	Path   string // relative to the client's base URL, already escaped
	Query  url.Values
	Header http.Header
	Body   []byte

	// Retried is set on the copy that gets replayed after a token refresh. A request
	// carrying it is never refreshed again.
	Retried bool
}

// NewRequest returns a request without a body
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, Header: make(http.Header)}
}

// NewJSONRequest marshals body (when non-nil) and sets the JSON content type
func NewJSONRequest(method, path string, body any) (*Request, error) {
	req := NewRequest(method, path)
	if body == nil {
		return req, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("[NewJSONRequest] encode %s %s: %w", method, path, err)
	}
	req.Body = encoded
	req.Header.Set(HeaderContentType, ContentTypeJSON)
	return req, nil
}

// NewMultipartRequest builds a multipart/form-data request with a single file part
func NewMultipartRequest(method, path, fieldName, fileName, contentType string, content io.Reader) (*Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(fieldName), quoteEscaper.Replace(fileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	partHeader.Set(HeaderContentType, contentType)

	part, err := mw.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("[NewMultipartRequest] create part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("[NewMultipartRequest] copy %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("[NewMultipartRequest] close writer: %w", err)
	}

	req := NewRequest(method, path)
	req.Body = buf.Bytes()
	req.Header.Set(HeaderContentType, mw.FormDataContentType())
	return req, nil
}

// Clone returns a deep copy so a replay never mutates the caller's request
func (r *Request) Clone() *Request {
	clone := *r
	clone.Header = r.Header.Clone()
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}
	if r.Query != nil {
		clone.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			clone.Query[k] = append([]string(nil), v...)
		}
	}
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}
	return &clone
}

// Response is a fully read API response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    *Request
}

// DecodeJSON unmarshals the response body into v. An empty body leaves v untouched.
func (r *Response) DecodeJSON(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.Request.Method, r.Request.Path, err)
	}
	return nil
}
