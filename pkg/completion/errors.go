package completion

// CompletionError is returned whenever the completion service could not
// produce a reply: transport failures, rejected credentials, error statuses and
// malformed or empty responses all surface as this one kind.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return "completion failed"
	}
	return "completion failed: " + e.Err.Error()
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
