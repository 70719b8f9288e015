package emailerror

// ErrorType tells whether a failed send is worth retrying as is
type ErrorType string

const (
	// ErrorTypeRecipient means the recipient address was refused (unknown
	// mailbox, full mailbox). Another recipient may well succeed.
	ErrorTypeRecipient ErrorType = "recipient"

	// ErrorTypeProvider means the send service itself failed: credentials,
	// rate limits, outages or connection problems. Every send is affected.
	ErrorTypeProvider ErrorType = "provider"

	// ErrorTypeContent means the service rejected the message itself, for
	// example an AMP part it would not accept
	ErrorTypeContent ErrorType = "content"

	// ErrorTypeUnknown is anything else
	ErrorTypeUnknown ErrorType = "unknown"
)

// ClassifiedError wraps a send error with its classification
type ClassifiedError struct {
	Original error
	Type     ErrorType

	// Strategy is the send strategy that produced the error
	Strategy string

	// HTTPStatus is the HTTP status of the send response, 0 if none
	HTTPStatus int

	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Original == nil {
		return ""
	}
	return e.Original.Error()
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRecipientError returns true if the recipient was refused
func (e *ClassifiedError) IsRecipientError() bool {
	return e.Type == ErrorTypeRecipient
}

// IsProviderError returns true for provider errors. Unknown errors count as
// provider errors.
func (e *ClassifiedError) IsProviderError() bool {
	return e.Type == ErrorTypeProvider || e.Type == ErrorTypeUnknown
}
