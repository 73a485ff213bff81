package handlers

import (
	"errors"
	"net/http"

	"github.com/kova98/userlens.api/models"
)

type Handler func(http.ResponseWriter, *http.Request) Result

type Result struct {
	Error error
	Code  int
	Body  interface{}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func BadRequest(message string) Result {
	return Result{
		Code: http.StatusBadRequest,
		Body: ErrorResponse{message},
	}
}

func InternalError(error error, message string) Result {
	return Result{
		Error: errors.Join(errors.New(message), error),
		Code:  http.StatusInternalServerError,
	}
}

func NotFound(message string) Result {
	return Result{
		Code: http.StatusNotFound,
		Body: ErrorResponse{message},
	}
}

func Ok(body interface{}) Result {
	return Result{
		Code: http.StatusOK,
		Body: body,
	}
}

func Unauthorized(message string) Result {
	return Result{
		Code: http.StatusUnauthorized,
		Body: ErrorResponse{message},
	}
}

func Forbidden(message string) Result {
	return Result{
		Code: http.StatusForbidden,
		Body: ErrorResponse{message},
	}
}

// AnalysisFailed wraps a failed analysis in the {success:false,error} envelope.
// cause is logged for 5xx codes only and never sent to the client.
func AnalysisFailed(code int, message string, cause error) Result {
	return Result{
		Error: cause,
		Code:  code,
		Body:  models.FailureResponse{Success: false, Error: message},
	}
}
