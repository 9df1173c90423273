package gateway

// upstreamError keeps the caller-facing message verbatim while still
// classifying as a bad upstream response (HTTP 500).
type upstreamError struct {
	msg string
}

func (e *upstreamError) Error() string {
	return e.msg
}

func (e *upstreamError) Unwrap() error {
	return ErrBadUpstreamResponse
}

// UpstreamInvalid marks a 2xx processor response whose body is unusable.
func UpstreamInvalid(msg string) error {
	return &upstreamError{msg: msg}
}
