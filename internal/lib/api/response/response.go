package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"parte-diario/internal/request"
)

type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func Error(msg string) Response {
	return Response{Error: msg}
}

// ErrorWithFields attaches the offending fields when err is a validation error.
func ErrorWithFields(msg string, err error) Response {
	resp := Response{Error: msg}

	var verr *request.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	return resp
}

type Success struct {
	Success bool `json:"success"`
}

func OK() Success {
	return Success{Success: true}
}

// Fail writes resp as JSON with the given status.
func Fail(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}
