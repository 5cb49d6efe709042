package resp

// Application level codes returned in JSON bodies next to the HTTP status.
const (
	CodeOK            = "OK"
	CodeQueued        = "QUEUED"
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
)
