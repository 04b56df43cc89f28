package gemini

import (
	"errors"
	"net/http"

	"google.golang.org/genai"
)

var (
	// ErrNotConfigured is returned when no API key is configured.
	ErrNotConfigured = errors.New("gemini client is not configured")

	// ErrEmptyPrompt is returned for an empty prompt or embedding input.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidResponse is returned when the API answers without usable content.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters block the response.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned when every retry attempt failed.
	ErrTransientFailure = errors.New("transient gemini failure")

	// ErrQuotaExceeded is returned when the API answers 429. It is not retried.
	ErrQuotaExceeded = errors.New("gemini quota exceeded")

	// ErrRequestRejected is returned for client errors such as a bad request
	// or an invalid key. It is not retried.
	ErrRequestRejected = errors.New("gemini rejected the request")
)

// apiErrorCode extracts the HTTP status of a genai API error.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

// isPermanentStatus reports client errors that a retry cannot fix.
func isPermanentStatus(code int) bool {
	switch code {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound:
		return true
	}
	return false
}
