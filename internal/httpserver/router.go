package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

type Deps struct {
	Users    *UserHTTP
	Products *ProductHTTP
	Contact  *ContactHTTP

	Tokens  *tokens.Issuer
	UserSvc *service.UserService

	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
		}
		return c.NoContent(http.StatusOK)
	})

	auth := RequireAuth(d.Tokens, d.UserSvc)

	users := e.Group("/api/users")
	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.POST("/logout", d.Users.Logout)
	users.GET("/loggedin", d.Users.LoginStatus)
	users.POST("/forgotpassword", d.Users.ForgotPassword)
	users.PUT("/resetpassword/:resetToken", d.Users.ResetPassword)
	users.POST("/getuser", d.Users.GetUser, auth)
	users.PATCH("/updateuser", d.Users.UpdateUser, auth)
	users.PATCH("/changepassword", d.Users.ChangePassword, auth)

	products := e.Group("/api/products", auth)
	products.POST("", d.Products.CreateProduct)
	products.GET("", d.Products.GetProducts)
	products.GET("/search", d.Products.SearchProducts)
	products.GET("/:id", d.Products.GetProduct)
	products.PATCH("/:id", d.Products.PatchProduct)
	products.DELETE("/:id", d.Products.DeleteProduct)

	e.POST("/api/contactus", d.Contact.ContactUs, auth)
}
