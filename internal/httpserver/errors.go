package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail logs a service error under op and converts it to the HTTP error the client sees.
func fail(l *slog.Logger, op string, err error) error {
	code := statusOf(err)
	msg := service.Message(err)
	if msg == "" {
		msg = http.StatusText(code)
	}

	he := echo.NewHTTPError(code, msg)
	if code >= http.StatusInternalServerError {
		l.Error(op+"_failed", "status", code, "reason", msg, "error", err)
		return he.SetInternal(err)
	}
	l.Warn(op+"_failed", "status", code, "reason", msg)
	return he
}

func badBody(l *slog.Logger, op string, err error) error {
	l.Warn(op+"_failed", "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
}

// ErrorHandler renders every error as {"message": "..."}; internal detail never reaches the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = http.StatusText(code)
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			if code < http.StatusInternalServerError {
				msg = m.Error()
			}
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, transport.MessageResponse{Message: msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
