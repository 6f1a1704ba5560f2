// Package services holds the use-cases that sit between the HTTP handlers
// and the lower layers: subscriptions, the backend overview and the drug
// recognizer adapter.
//
// Errors here are sentinels; handlers map them to status codes.
package services

import "errors"

var (
	// ErrInvalidLanguage is returned for a language outside SupportedLanguages.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrInvalidPhone is returned when a phone number is present but is not
	// 7 to 15 digits with an optional leading '+'.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrUpstream wraps failures of the backend API.
	ErrUpstream = errors.New("upstream request failed")
)
