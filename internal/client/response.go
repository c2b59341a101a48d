package client

// Response is the uniform outcome of one HTTP call. StatusCode 0 means no
// HTTP response was obtained at all (connection refused, timeout, DNS
// failure); in that case Body holds the transport error text.
//
// Body is the decoded JSON value when the server returned parseable JSON,
// otherwise the raw response text. A Response is never mutated after
// construction.
type Response struct {
	StatusCode int
	Body       any
}

// IsSuccess reports whether a status code was obtained and is in the 2xx
// class.
func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// BodyMap returns the body as a JSON object, or nil when the body is absent
// or not an object.
func (r Response) BodyMap() map[string]any {
	m, _ := r.Body.(map[string]any)
	return m
}
