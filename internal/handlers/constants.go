package handlers

const (
	CSRFFormField  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	ErrInvalidFormData       = "Invalid form data"
	ErrForbidden             = "Forbidden"
	ErrTooManyRequests       = "Too many requests, please slow down"
	ErrInternalServerError   = "Internal server error"
	ErrInternalServerErrorUC = "Internal Server Error"
	ErrNotFound              = "Not found"
)
