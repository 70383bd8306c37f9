package models

// ApiResponse is the JSON envelope used by every /api/v1 endpoint.
type ApiResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Count     int    `json:"count,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func SuccessResponse(data any, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

func ListResponse[T any](items []T) ApiResponse {
	if items == nil {
		items = []T{}
	}
	return ApiResponse{
		Success: true,
		Data:    items,
		Count:   len(items),
	}
}
