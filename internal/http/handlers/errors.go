package handlers

// Error codes returned in ErrorResponse.Code. Clients branch on these, not
// on messages.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeInternal           = "internal_error"
	ErrCodeInvalidRating      = "invalid_rating"
	ErrCodeTextTooLong        = "text_too_long"
	ErrCodeInvalidListing     = "invalid_listing"
	ErrCodeInvalidDestination = "invalid_destination"
	ErrCodeUnknownListing     = "unknown_listing"
	ErrCodeStorage            = "storage_unavailable"
	ErrCodeNavigationFailed   = "navigation_failed"
)
