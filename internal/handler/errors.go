package handler

import (
	"errors"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// 失敗シグナル -> (status, 戻り先)
type redirectRule struct {
	err      error
	status   int
	message  string
	location string
}

var redirectRules = []redirectRule{
	{usecase.ErrUnauthenticated, http.StatusUnauthorized, "login required", "/login"},
	{usecase.ErrEmptyCart, http.StatusBadRequest, "cart is empty", "/cart"},
	{usecase.ErrNoBuyNowSelection, http.StatusSeeOther, "no buy-now selection", "/products"},
	{usecase.ErrProductNotFound, http.StatusNotFound, "product not found", "/products"},
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	for _, r := range redirectRules {
		if errors.Is(err, r.err) {
			c.Response().Header().Set(echo.HeaderLocation, r.location)
			return c.JSON(r.status, ErrorResponse{Error: r.message, Redirect: r.location})
		}
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
