package httperr

import (
	"github.com/gin-gonic/gin"
)

// Machine-readable error codes carried next to the message.
const (
	CodeValidation         = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeInvalidTransition  = "invalid_transition"
	CodeTimingOutOfRange   = "timing_out_of_range"
	CodeIdempotency        = "idempotency_conflict"
	CodeInvalidWithholding = "invalid_withholding"
	CodeDataIntegrity      = "data_integrity"
	CodeInternal           = "internal_error"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func NewResponse(status int, code, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Code = code
	resp.Error.Message = msg
	return resp
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, code string, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := NewResponse(status, code, msg, detail)
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort responds without an underlying error, e.g. for auth failures.
func Abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, NewResponse(status, code, msg, nil))
}
