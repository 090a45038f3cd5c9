package types

// ApiResponse is the envelope every endpoint returns. Code is a stable
// machine-readable string so clients can tell "retry is useless"
// (validation, conflict) from "retry might help" (AI_FAILED).
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func OK(data any) ApiResponse {
	return ApiResponse{Success: true, Data: data}
}

func OKWithMessage(data any, message string) ApiResponse {
	return ApiResponse{Success: true, Data: data, Message: message}
}

func Fail(message, code string) ApiResponse {
	return ApiResponse{Success: false, Message: message, Code: code}
}
