package constants

// Request/response keys
const (
	KeyUserID    = "user_id"
	ValueSuccess = "success"
	ValueError   = "error"
)

// Content types
const (
	ContentTypeText      = "Content-Type"
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
	ContentTypeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
	DateFormatAlt  = "02-01-2006"
)

// SQL fragments appended to filtered queries
const (
	QueryFilterEntity     = " AND entity_id = $%d"
	QueryFilterFiscalYear = " AND fiscal_year = $%d"
	QueryFilterAccount    = " AND account_code = $%d"
	QueryFilterStatus     = " AND status = $%d"
	QueryFilterDepartment = " AND department = $%d"
)
