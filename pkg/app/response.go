// Package app provides shared HTTP response plumbing for the API layer.
package app

import (
	"net/http"

	"github.com/driftnotes/drift-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// Response wraps a gin context with the project's envelope format.
type Response struct {
	Ctx *gin.Context
}

type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details []string    `json:"details,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{Ctx: ctx}
}

// ToResponse writes a code-only envelope, mapping known error codes to
// their HTTP status; everything else is a 500.
func (r *Response) ToResponse(c *code.Code) {
	status := http.StatusOK
	if !c.IsSuccess() {
		switch c.Code() {
		case code.ErrorNotFound.Code():
			status = http.StatusNotFound
		case code.ErrorTooManyRequests.Code():
			status = http.StatusTooManyRequests
		case code.ErrorInvalidParams.Code():
			status = http.StatusBadRequest
		case code.ErrorSyncBusy.Code():
			status = http.StatusConflict
		default:
			status = http.StatusInternalServerError
		}
	}
	r.Ctx.JSON(status, envelope{
		Code:    c.Code(),
		Message: c.Msg(),
		Details: c.Details(),
	})
}

// ToResponseData writes a success envelope carrying data.
func (r *Response) ToResponseData(data interface{}) {
	r.Ctx.JSON(http.StatusOK, envelope{
		Code:    code.Success.Code(),
		Message: code.Success.Msg(),
		Data:    data,
	})
}
