package utils

// ErrorResponse is the JSON body returned on failure: a user-facing
// message plus the underlying error text when there is one.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
