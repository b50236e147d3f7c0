package service

import (
	"context"
	"errors"
	"fmt"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/dto"
	"online-store-backend/internal/model"
	"online-store-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	ReduceItem(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	GetCart(ctx context.Context, userID string) (*dto.CartResponse, error)
}

type cartServiceImpl struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewCartService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) CartService {
	return &cartServiceImpl{
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// AddItem puts quantity units of a product into the user's cart, creating
// the cart and the line as needed. The stock check is against the projected
// line total, not just the increment.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return apperr.New(apperr.KindBadRequest, "quantity must be greater than zero")
	}

	product, err := s.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "product not found")
		}
		return fmt.Errorf("find product: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetOrCreatePending(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}

		item, err := s.orderRepo.FindItem(ctx, tx, order.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find cart line: %w", err)
		}

		projected := quantity
		if item != nil {
			projected += item.Quantity
		}
		if projected > product.StockQuantity {
			return apperr.Newf(apperr.KindInsufficientStock, "not enough stock for %s", product.Name)
		}

		if item == nil {
			// price and name snapshot taken once, at line creation
			return s.orderRepo.CreateItem(ctx, tx, &model.OrderItem{
				ID:          uuid.NewString(),
				OrderID:     order.ID,
				ProductID:   productID,
				Quantity:    quantity,
				Price:       product.Price,
				ProductName: product.Name,
			})
		}
		return s.orderRepo.UpdateItemQuantity(ctx, tx, item.ID, projected)
	})
}

// ReduceItem takes quantity units off an existing line. Driving the line to
// zero or below deletes it.
func (s *cartServiceImpl) ReduceItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return apperr.New(apperr.KindBadRequest, "quantity must be greater than zero")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindPendingByUser(ctx, tx, userID, false)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "no pending cart found")
			}
			return fmt.Errorf("find cart: %w", err)
		}

		item, err := s.orderRepo.FindItem(ctx, tx, order.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "item not found in cart")
			}
			return fmt.Errorf("find cart line: %w", err)
		}

		remaining := item.Quantity - quantity
		if remaining <= 0 {
			return s.orderRepo.DeleteItem(ctx, tx, item.ID)
		}
		return s.orderRepo.UpdateItemQuantity(ctx, tx, item.ID, remaining)
	})
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindPendingByUser(ctx, tx, userID, false)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "no pending cart found")
			}
			return fmt.Errorf("find cart: %w", err)
		}

		for _, item := range order.Items {
			if item.ID == itemID {
				return s.orderRepo.DeleteItem(ctx, tx, item.ID)
			}
		}
		return apperr.New(apperr.KindNotFound, "item not found in cart")
	})
}

// GetCart returns the pending order with derived total. An absent cart is an
// empty result, not an error.
func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*dto.CartResponse, error) {
	order, err := s.orderRepo.FindPendingByUser(ctx, s.db, userID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.CartResponse{Items: []dto.CartItem{}, TotalPrice: "0.00"}, nil
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	resp := &dto.CartResponse{
		OrderID:    order.ID,
		Items:      make([]dto.CartItem, 0, len(order.Items)),
		TotalPrice: order.TotalPrice().StringFixed(2),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.CartItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
			LineTotal:   item.Price.Mul(decimalFromInt(item.Quantity)).StringFixed(2),
		})
	}
	return resp, nil
}
