package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ResponseV2 struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	CodeOK             = "OK"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

func respondV2(c *gin.Context, status int, code, message string, data any) {
	c.JSON(status, ResponseV2{Code: code, Message: message, Data: data})
}

func okV2(c *gin.Context, data any) {
	respondV2(c, http.StatusOK, CodeOK, "OK", data)
}

func errV2(c *gin.Context, status int, code, message string, detail any) {
	// Keep the envelope stable: put free-form details into `data.detail`.
	payload := gin.H{}
	if detail != nil {
		payload["detail"] = detail
	}
	respondV2(c, status, code, message, payload)
}

func abortV2(c *gin.Context, status int, code, message string) {
	errV2(c, status, code, message, nil)
	c.Abort()
}
