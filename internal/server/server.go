package server

import (
	"net/http"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/handler"
	appmw "online-store-backend/internal/middleware"
	"online-store-backend/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	productHandler *handler.ProductHandler
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
}

func NewServer(
	productService service.ProductService,
	cartService service.CartService,
	orderService service.OrderService,
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		productHandler: handler.NewProductHandler(productService),
		cartHandler:    handler.NewCartHandler(cartService),
		orderHandler:   handler.NewOrderHandler(orderService),
		paymentHandler: handler.NewPaymentHandler(checkoutService, paymentService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.productHandler.ListProducts)
	api.GET("/products/:id", s.productHandler.GetProduct)

	// webhook is signed, not user-authenticated
	api.POST("/stripe/webhook", s.paymentHandler.StripeWebhook)

	authed := api.Group("", appmw.Auth())
	authed.GET("/cart", s.cartHandler.GetCart)
	authed.POST("/cart/add", s.cartHandler.AddItem)
	authed.POST("/cart/reduce", s.cartHandler.ReduceItem)
	authed.DELETE("/cart/items/:id", s.cartHandler.RemoveItem)

	authed.GET("/orders", s.orderHandler.ListOrders)
	authed.GET("/orders/:id", s.orderHandler.GetOrder)

	authed.POST("/checkout/session", s.paymentHandler.CreateCheckoutSession)
	authed.POST("/checkout/finalize", s.paymentHandler.FinalizeOrder)
	authed.POST("/payments/:id/refund", s.paymentHandler.Refund)
}

// errorHandler maps service error kinds onto HTTP statuses.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	if kind, ok := apperr.KindOf(err); ok {
		msg = err.Error()
		switch kind {
		case apperr.KindBadRequest, apperr.KindInvalidAmount:
			status = http.StatusBadRequest
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindInvalidState, apperr.KindInsufficientStock:
			status = http.StatusConflict
		case apperr.KindPaymentIncomplete:
			status = http.StatusPaymentRequired
		case apperr.KindGateway:
			status = http.StatusBadGateway
		}
	} else if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(status, map[string]string{"error": msg})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
