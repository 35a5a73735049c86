package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"catapi/internal/errors"
)

// Envelope messages for write operations.
const (
	MsgCatCreated  = "Cat created"
	MsgCatUpdated  = "Cat updated"
	MsgCatDeleted  = "Cat deleted"
	MsgUserCreated = "User created"
	MsgUserUpdated = "User updated"
	MsgUserDeleted = "User deleted"
)

// MessageResponse wraps the resource returned by create, update and delete.
type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// read writes data unwrapped; lookups and listings carry no envelope.
func read(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func written(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: message, Data: data})
}

// bind decodes the request into req and runs its validation rules.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("invalid request body")
	}
	return c.Validate(req)
}

// ErrorHandler converts every error returned by a handler or middleware
// into an ErrorResponse.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

func toHTTPError(err error) *errors.HTTPError {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		msg := http.StatusText(he.Code)
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
		default:
			msg = fmt.Sprint(m)
		}
		return errors.NewHTTPError(he.Code, msg)
	}
	return errors.MapErrorToHTTP(err)
}
