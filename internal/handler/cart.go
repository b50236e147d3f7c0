package handler

import (
	"net/http"

	"online-store-backend/internal/dto"
	"online-store-backend/internal/middleware"
	"online-store-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.GetCart(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.AddItem(ctx, middleware.UserID(c), req.ProductID, req.Quantity); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product added to cart"})
}

func (h *CartHandler) ReduceItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ReduceItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.ReduceItem(ctx, middleware.UserID(c), req.ProductID, req.Quantity); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product reduced from cart"})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID := c.Param("id")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing item id")
	}

	if err := h.cartService.RemoveItem(ctx, middleware.UserID(c), itemID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
}
