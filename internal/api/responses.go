package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Code  string `json:"code,omitempty" example:"capacity_exceeded"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// RespondError writes a service error using its kind. Internal errors are
// logged and their text is not sent to the client.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.Code(err)
	if code == "internal" {
		logger.WithContext(c.Request.Context()).Error("request failed", "error", err, "path", c.FullPath())
		c.JSON(status, ErrorResponse{Error: "internal server error", Code: code})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// ParamID reads a positive integer path parameter. On failure it writes a
// 400 response and reports false.
func ParamID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}
