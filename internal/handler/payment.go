package handler

import (
	"io"
	"net/http"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/dto"
	"online-store-backend/internal/middleware"
	"online-store-backend/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
}

func NewPaymentHandler(checkoutService service.CheckoutService, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
	}
}

func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.checkoutService.CreateCheckoutSession(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) FinalizeOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.FinalizeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	resp, err := h.checkoutService.FinalizeBySessionID(ctx, middleware.UserID(c), req.SessionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Refund(c echo.Context) error {
	ctx := c.Request().Context()

	paymentID := c.Param("id")

	var req dto.RefundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid refund amount")
	}

	resp, err := h.paymentService.Refund(ctx, middleware.UserID(c), paymentID, amount, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// StripeWebhook takes the raw body plus signature header. A signature or
// payload failure is the only error surfaced back to the gateway.
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")
	if err := h.checkoutService.HandleWebhook(ctx, body, sigHeader); err != nil {
		if apperr.Is(err, apperr.KindGateway) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid signature"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
