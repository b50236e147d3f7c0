package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/client"
	"online-store-backend/internal/dto"
	"online-store-backend/internal/model"
	"online-store-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentEvidence carries the gateway correlation ids both confirmation
// triggers (synchronous finalize, asynchronous webhook) hand to
// ConfirmPayment.
type PaymentEvidence struct {
	PaymentIntentID string
	SessionID       string
	CustomerID      string
}

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (*dto.CheckoutSessionResponse, error)
	FinalizeBySessionID(ctx context.Context, userID, sessionID string) (*dto.FinalizeOrderResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type checkoutServiceImpl struct {
	db               *gorm.DB
	stripeClient     client.StripeClient
	frontendURL      string
	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewCheckoutService(
	db *gorm.DB,
	stripeClient client.StripeClient,
	frontendURL string,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	webhookEventRepo repository.WebhookEventRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		db:               db,
		stripeClient:     stripeClient,
		frontendURL:      frontendURL,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

// CreateCheckoutSession validates the cart against live stock and opens a
// gateway session bound to the order via metadata. Stock is NOT reserved
// here; reservation happens at confirmation.
func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, userID string) (*dto.CheckoutSessionResponse, error) {
	var resp *dto.CheckoutSessionResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindPendingByUser(ctx, tx, userID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindBadRequest, "no items in cart")
			}
			return fmt.Errorf("find cart: %w", err)
		}
		if len(order.Items) == 0 {
			return apperr.New(apperr.KindBadRequest, "no items in cart")
		}

		lines := make([]client.SessionLineItem, 0, len(order.Items))
		for _, item := range order.Items {
			product, err := s.productRepo.FindByID(ctx, tx, item.ProductID)
			if err != nil {
				return fmt.Errorf("find product %s: %w", item.ProductID, err)
			}
			if product.StockQuantity < item.Quantity {
				return apperr.Newf(apperr.KindInsufficientStock, "not enough stock for %s", product.Name)
			}
			lines = append(lines, client.SessionLineItem{
				Name:       product.Name,
				UnitAmount: minorUnits(item.Price),
				Quantity:   item.Quantity,
			})
		}

		sess, err := s.stripeClient.CreateCheckoutSession(ctx, lines,
			fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}", s.frontendURL),
			fmt.Sprintf("%s/cart", s.frontendURL),
			map[string]string{"order_id": order.ID},
		)
		if err != nil {
			return apperr.Wrap(apperr.KindGateway, "create checkout session", err)
		}

		resp = &dto.CheckoutSessionResponse{SessionID: sess.ID, URL: sess.URL}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// FinalizeBySessionID is the synchronous confirmation path: the client
// returns from the gateway redirect and asks us to settle the order.
func (s *checkoutServiceImpl) FinalizeBySessionID(ctx context.Context, userID, sessionID string) (*dto.FinalizeOrderResponse, error) {
	sess, err := s.stripeClient.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "retrieve checkout session", err)
	}

	orderID := sess.Metadata["order_id"]
	if orderID == "" {
		return nil, apperr.New(apperr.KindBadRequest, "session has no order reference")
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID, false)
	if err != nil || order.UserID != userID {
		return nil, apperr.New(apperr.KindNotFound, "order not found")
	}

	if sess.PaymentStatus != "paid" {
		return nil, apperr.New(apperr.KindPaymentIncomplete, "payment not completed")
	}

	if err := s.ConfirmPayment(ctx, orderID, PaymentEvidence{
		PaymentIntentID: sess.PaymentIntent,
		SessionID:       sess.ID,
		CustomerID:      sess.Customer,
	}); err != nil {
		return nil, err
	}

	return &dto.FinalizeOrderResponse{
		Message: "Order finalized successfully",
		OrderID: orderID,
	}, nil
}

// ConfirmPayment is the single state transition both triggers converge on:
// under the order row lock it re-checks stock, decrements every line,
// flips the order to ORDERED and records the payment, all or nothing.
// A payment already recorded for the same intent makes the call a no-op.
func (s *checkoutServiceImpl) ConfirmPayment(ctx context.Context, orderID string, evidence PaymentEvidence) error {
	// An empty intent id would make unrelated confirmations collide on the
	// unique index and masquerade as replays.
	if evidence.PaymentIntentID == "" {
		return apperr.New(apperr.KindBadRequest, "missing payment intent reference")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "order not found")
			}
			return fmt.Errorf("find order: %w", err)
		}

		// already processed: retries and webhook replays land here
		if _, err := s.paymentRepo.FindByIntentID(ctx, tx, evidence.PaymentIntentID); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find payment: %w", err)
		}

		for _, item := range order.Items {
			product, err := s.productRepo.FindByID(ctx, tx, item.ProductID)
			if err != nil {
				return fmt.Errorf("find product %s: %w", item.ProductID, err)
			}
			if product.StockQuantity < item.Quantity {
				return apperr.Newf(apperr.KindInsufficientStock, "not enough stock for %s", product.Name)
			}
		}
		for _, item := range order.Items {
			if err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return apperr.Newf(apperr.KindInsufficientStock, "not enough stock for product %s", item.ProductID)
				}
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderOrdered); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		intentID := evidence.PaymentIntentID
		payment := &model.Payment{
			ID:                    uuid.NewString(),
			OrderID:               order.ID,
			StripePaymentIntentID: &intentID,
			Amount:                order.TotalPrice(),
			Currency:              "usd",
			Status:                model.PaymentSucceeded,
			PaymentMethod:         model.PaymentMethodCard,
			StripeCustomerID:      evidence.CustomerID,
		}
		if evidence.SessionID != "" {
			sessionID := evidence.SessionID
			payment.StripeSessionID = &sessionID
		}
		return s.paymentRepo.Create(ctx, tx, payment)
	})

	// A lost race on the unique intent id means the other caller already
	// settled this order; the rollback undid our decrement.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// HandleWebhook is the asynchronous confirmation path. The signature check
// precedes any state mutation; application-level failures are swallowed so
// the gateway stops redelivering.
func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.stripeClient.VerifyWebhookSignature(payload, sigHeader)
	if err != nil {
		return apperr.Wrap(apperr.KindGateway, "verify webhook signature", err)
	}

	processed, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		sess, err := event.Session()
		if err != nil {
			return apperr.Wrap(apperr.KindGateway, "decode session object", err)
		}
		orderID := sess.Metadata["order_id"]
		if orderID == "" {
			log.Printf("webhook %s: no order_id in session metadata, dropping", event.ID)
			break
		}
		err = s.ConfirmPayment(ctx, orderID, PaymentEvidence{
			PaymentIntentID: sess.PaymentIntent,
			SessionID:       sess.ID,
			CustomerID:      sess.Customer,
		})
		if err != nil {
			// acknowledged anyway: redelivery cannot fix an application error
			log.Printf("webhook %s: confirm payment for order %s: %v", event.ID, orderID, err)
		}
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		log.Printf("webhook %s: mark processed: %v", event.ID, err)
	}
	return nil
}
