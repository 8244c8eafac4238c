package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"devconnector/internal/service"
)

type errorMessage struct {
	Msg string `json:"msg"`
}

// fieldMessages maps "<Field>.<tag>" validation failures to user facing messages.
var fieldMessages = map[string]string{
	"Name.required":     "Name is required",
	"Email.required":    "Email is required",
	"Email.email":       "Please include a valid email",
	"Password.required": "Password is required",
	"Password.min":      "Password must contain min 5 characters",
	"Password.max":      "Password must contain at most 72 bytes",
	"Status.required":   "Status is required",
	"Skills.required":   "Skills is required",
	"Title.required":    "Title is required",
	"Company.required":  "Company is required",
	"School.required":   "School is required",
	"Degree.required":   "Degree is required",
	"From.required":     "From Date is required",
	"Text.required":     "Text is required",
}

func respondValidation(c *gin.Context, msgs ...string) {
	errs := make([]errorMessage, len(msgs))
	for i, m := range msgs {
		errs[i] = errorMessage{Msg: m}
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}

// respondBindError translates a ShouldBind* failure into the validation error shape.
func (h *Handler) respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
				msgs = append(msgs, msg)
				continue
			}
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
		respondValidation(c, msgs...)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		respondValidation(c, "Request body is required")
	case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		respondValidation(c, "Request body is not valid JSON")
	default:
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Warnf("bind request: %v", err)
		respondValidation(c, "Invalid request body")
	}
}

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and reported as a generic server error.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Messages...)
	case errors.Is(err, service.ErrUserAlreadyExists):
		respondValidation(c, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"errors": []errorMessage{{Msg: "Invalid Credentials"}}})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, errorMessage{Msg: "Token is not valid"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, errorMessage{Msg: "User not authorized"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorMessage{Msg: "User not found"})
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, errorMessage{Msg: "There is no profile for this user"})
	case errors.Is(err, service.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, errorMessage{Msg: "Entry not found"})
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, errorMessage{Msg: "Post not found"})
	case errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, errorMessage{Msg: "Comment not found"})
	case errors.Is(err, service.ErrAlreadyLiked):
		c.JSON(http.StatusBadRequest, errorMessage{Msg: "Post already liked"})
	case errors.Is(err, service.ErrNotLiked):
		c.JSON(http.StatusBadRequest, errorMessage{Msg: "Post has not been liked yet"})
	case errors.Is(err, service.ErrGitHubNotConfigured), errors.Is(err, service.ErrStorageNotConfigured):
		c.JSON(http.StatusServiceUnavailable, errorMessage{Msg: err.Error()})
	default:
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorMessage{Msg: "Server error"})
	}
}
