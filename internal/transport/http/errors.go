package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juva99/yoop-sub001/internal/domain"
)

// writeError is the single place domain failures become HTTP responses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	msg := err.Error()

	var de *domain.Error
	if errors.As(err, &de) {
		code, msg = de.Code, de.Msg
		switch de.Kind {
		case domain.KindValidation:
			status = http.StatusBadRequest
		case domain.KindConflict, domain.KindInvalidState:
			status = http.StatusConflict
		case domain.KindUnauthorized:
			status = http.StatusForbidden
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindTimeout:
			status = http.StatusGatewayTimeout
		case domain.KindUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"code": code, "error": msg})
}
