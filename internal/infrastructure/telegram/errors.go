package telegram

import "errors"

// Domain-specific errors for Bot API operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTransport is returned on timeouts and connection failures.
	// These are transient: the ingestion loop retries them with backoff.
	ErrTransport = errors.New("telegram: transport failure")

	// ErrAPIRejected is returned when the Bot API answers ok=false.
	// These are not retried; the description names the cause.
	ErrAPIRejected = errors.New("telegram: api rejected request")

	// ErrSendFailed is returned when an outbound message exhausts its
	// send attempts.
	ErrSendFailed = errors.New("telegram: send failed")

	// ErrFileNotFound is returned when a document to upload does not exist.
	ErrFileNotFound = errors.New("telegram: file not found")
)
