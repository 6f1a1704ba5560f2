package handlers

// Stable error codes of the ErrorResponse envelope. Clients branch on these,
// not on messages.
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_session",
//	  "message": "session id must be 8-64 characters of [A-Za-z0-9_-]"
//	}
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeGone             = "gone"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidSession = "invalid_session"
	ErrCodeUnknownFeature = "unknown_feature"
	ErrCodeEmptyMessage   = "empty_message"
	ErrCodeUnknownTopic   = "unknown_topic"
	ErrCodeInvalidPhone   = "invalid_phone"
	ErrCodeInvalidLang    = "invalid_language"
	ErrCodeInvalidFile    = "invalid_file"
	ErrCodeNoFile         = "no_file_selected"
	ErrCodeInFlight       = "submission_in_flight"
	ErrCodeUpstream       = "upstream_error"
	ErrCodeUnreachable    = "upstream_unreachable"
	ErrCodePersist        = "persist_failed"
)
