package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"alphabook/internal/auth"
	"alphabook/internal/rbac"
	"alphabook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Client-facing messages. They never reveal which credential was wrong or
// why a token failed.
const (
	msgInvalidCredentials = "invalid email or password"
	msgRateLimited        = "too many login attempts, try again later"
	msgUnauthenticated    = "authentication required"
	msgUserGone           = "user no longer exists"
	msgForbidden          = "insufficient permission"
	msgInvalidBody        = "invalid request body"
	msgInternal           = "internal server error"
)

type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details"`
}

// respondOK writes the success envelope {data, error:null}.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data, "error": nil})
}

// respondError writes the failure envelope {error:{message, details}} and aborts.
func respondError(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Message: message, Details: details}})
}

// writeError maps a domain error to its status. Anything unrecognized is a
// 500 whose cause is logged and never sent to the client.
func writeError(c *gin.Context, err error) {
	var perr *rbac.PermissionError
	switch {
	case errors.Is(err, auth.ErrValidation):
		respondError(c, http.StatusBadRequest, "validation failed", validationMessage(err))
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, msgInvalidCredentials, nil)
	case errors.Is(err, auth.ErrRateLimited):
		respondError(c, http.StatusTooManyRequests, msgRateLimited, nil)
	case errors.Is(err, auth.ErrTokenInvalid):
		respondError(c, http.StatusUnauthorized, msgUnauthenticated, nil)
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(c, http.StatusUnauthorized, msgUserGone, nil)
	case errors.As(err, &perr):
		respondError(c, http.StatusForbidden, msgForbidden, perr.Details())
	default:
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", "err", err, "path", c.FullPath())
		respondError(c, http.StatusInternalServerError, msgInternal, nil)
	}
}

// writeBindError reports a body that failed to decode or validate.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonFieldName(fe.Field())] = fe.Tag()
		}
		respondError(c, http.StatusBadRequest, "validation failed", fields)
		return
	}
	respondError(c, http.StatusBadRequest, msgInvalidBody, nil)
}

func validationMessage(err error) any {
	if msg, ok := strings.CutPrefix(err.Error(), auth.ErrValidation.Error()+": "); ok {
		return msg
	}
	return nil
}

// jsonFieldName lowercases the first letter of a Go field name, matching the
// request structs' json tags.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
