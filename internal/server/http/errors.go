package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidOrExpired),
		errors.Is(err, common.ErrMissingCredentials),
		errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func detailFor(status int, err error) string {
	switch status {
	case http.StatusInternalServerError:
		return common.ErrorInternal.Error()
	case http.StatusUnauthorized:
		if errors.Is(err, common.ErrTokenExpired) {
			return "token expired"
		}
		if errors.Is(err, common.ErrInvalidToken) {
			return "invalid token"
		}
		return common.ErrorUnauthorized.Error()
	default:
		return err.Error()
	}
}

// abortWithError maps err to a status code and a detail message. Internal
// errors never leak their text.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Detail: detailFor(status, err)})
}

// abortWithBadRequest reports a request that failed binding.
func abortWithBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
}
