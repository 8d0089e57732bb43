package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
)

type ContactHTTP struct {
	Svc *service.ContactService
}

func (h *ContactHTTP) ContactUs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.send")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "contact", err)
	}

	if err := h.Svc.ContactUs(ctx, user, req); err != nil {
		return fail(l, "contact", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Email Sent"})
}
