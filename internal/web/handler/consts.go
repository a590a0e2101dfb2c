package handler

const (
	// APIPath is the base path for the JSON API.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)

// Error kinds of the JSON error envelope.
const (
	KindUnauthenticated   = "unauthenticated"
	KindForbidden         = "forbidden"
	KindValidation        = "validation"
	KindInvalidTransition = "invalid_transition"
	KindInvalidStatus     = "invalid_status"
	KindNotFound          = "not_found"
	KindDuplicateEmail    = "duplicate_email"
	KindSelfDeletion      = "self_deletion"
	KindUnavailable       = "unavailable"
	KindInternal          = "internal"
)
