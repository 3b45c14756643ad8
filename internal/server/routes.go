package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	d.Product.RegisterRoutes(e)
	d.Cart.RegisterRoutes(e)
	d.Checkout.RegisterRoutes(e)
	d.Order.RegisterRoutes(e)
	d.Auth.RegisterRoutes(e)
	d.AdminProduct.RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		if d.Health != nil {
			if err := d.Health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if d.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(d.MetricsHandler))
	}
}
