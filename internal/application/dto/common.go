package dto

// ErrorResponse corps d'erreur HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse corps d'erreur de validation : la liste complète
// des problèmes codés, jamais seulement le premier.
type ValidationErrorResponse struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Errors   interface{} `json:"errors"`
	Warnings interface{} `json:"warnings,omitempty"`
}
