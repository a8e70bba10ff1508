package server

import "github.com/shouni/visionary-gallery/pkg/domain"

type Response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CategoryResponse struct {
	ID    domain.Category `json:"id"`
	Label string          `json:"label"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type ResetResponse struct {
	Reset bool `json:"reset"`
}

func SuccessResponse(data any) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

var (
	ErrInvalidRequestFormat = ErrorResponseWithDetails("invalid_request", "Invalid request format")
	ErrItemNotFound         = ErrorResponseWithDetails("not_found", "Gallery item not found")
	ErrGenerationBusy       = ErrorResponseWithDetails("generation_in_progress", "Another image is being generated")
	ErrGenerationFailed     = ErrorResponseWithDetails("generation_failed", domain.MsgGenerationFailed)
	ErrConfirmationRequired = ErrorResponseWithDetails("confirmation_required", "Pass confirm=true to proceed")
)
