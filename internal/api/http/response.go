package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/logging"
)

// RespondError maps err to a status code, logs it with the request context
// and writes {"ok": false, "error": msg}. Server errors get a generic message.
func RespondError(c *gin.Context, op string, err error) {
	status := apperr.HTTPStatus(err)

	log := logging.FromContext(c.Request.Context()).WithFields(map[string]interface{}{
		"operation": op,
		"status":    status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Warn("request rejected")
	}

	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": apperr.PublicMessage(err)})
}

// RespondBindError answers a request whose body failed to bind or validate.
func RespondBindError(c *gin.Context, err error) {
	body := gin.H{"ok": false, "error": "invalid body"}
	if details := FormatValidationErrors(err); len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// FormatValidationErrors formats validation errors from validator/v10.
func FormatValidationErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		out = append(out, msg)
	}
	return out
}
