package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register", err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register", err)
	}

	c.SetCookie(CreateCookie(SessionCookie, res.Token, "/", res.ExpiresAt))
	return c.JSON(http.StatusCreated, transport.AuthResponse{Profile: transport.ProfileOf(res.User), Token: res.Token})
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login", err)
	}

	c.SetCookie(CreateCookie(SessionCookie, res.Token, "/", res.ExpiresAt))
	l.Info("login_success", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, transport.AuthResponse{Profile: transport.ProfileOf(res.User), Token: res.Token})
}

// Logout only expires the cookie. The token itself stays valid until it expires.
func (h *UserHTTP) Logout(c echo.Context) error {
	c.SetCookie(DeleteCookie(SessionCookie, "/"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Successfully Logged Out"})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.ProfileOf(user))
}

func (h *UserHTTP) LoginStatus(c echo.Context) error {
	token := ""
	if ck, err := c.Cookie(SessionCookie); err == nil {
		token = ck.Value
	}
	return c.JSON(http.StatusOK, h.Svc.LoginStatus(token))
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_user", err)
	}

	updated, err := h.Svc.UpdateUser(ctx, user, req)
	if err != nil {
		return fail(l, "update_user", err)
	}
	return c.JSON(http.StatusOK, transport.ProfileOf(updated))
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_password")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "change_password", err)
	}

	if err := h.Svc.ChangePassword(ctx, user.ID, req); err != nil {
		return fail(l, "change_password", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Password change successful"})
}

func (h *UserHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.forgot_password")

	var req transport.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "forgot_password", err)
	}

	if err := h.Svc.ForgotPassword(ctx, req); err != nil {
		return fail(l, "forgot_password", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Reset Email Sent"})
}

func (h *UserHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "reset_password", err)
	}

	if err := h.Svc.ResetPassword(ctx, c.Param("resetToken"), req); err != nil {
		return fail(l, "reset_password", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Password Reset Successful, Please Login"})
}
