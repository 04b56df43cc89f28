// Package api implements the HTTP handlers of the dream journal: accounts,
// dreams, analyses, insights, the community board and subscriptions. Handlers
// decode and validate requests, call the service layer and map its errors to
// status codes with MapErrorToStatusCode and GetSafeErrorMessage.
package api
