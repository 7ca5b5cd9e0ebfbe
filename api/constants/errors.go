package constants

// Authentication & session
const (
	ErrMissingUserID  = "Missing or invalid user_id in body"
	ErrInvalidSession = "Your session has expired or is invalid. Please login again"
	ErrPleaseLogin    = "Please login to continue."
	ErrUnauthorized   = "You are not authorized to perform this action"
)

// Request handling
const (
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrInvalidRequestBody = "Invalid request body"
	ErrInvalidJSON        = "invalid json or missing fields"
)

// Domain validation
const (
	ErrNoDepartment       = "User has no department assigned. Please contact administrator"
	ErrNoAccessibleEntity = "No accessible cost entities found for your account"
	ErrEntityRequired     = "entity_id is required"
	ErrFiscalYearRequired = "fiscal_year is required"
	ErrTicketNotFound     = "Ticket not found"
	ErrInvalidTransition  = "Requested status transition is not allowed"
	ErrUnsupportedUpload  = "Unsupported file type. Upload .csv, .xls or .xlsx"
	ErrEmptyUpload        = "Invalid or empty file"
)

// DB / SQL error templates
const (
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrQueryFailed    = "query failed: "
)
