package service

import (
	"context"
	"errors"
	"fmt"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/dto"
	"online-store-backend/internal/model"
	"online-store-backend/internal/repository"

	"gorm.io/gorm"
)

type OrderService interface {
	ListOrders(ctx context.Context, userID string) ([]*dto.OrderResponse, error)
	GetOrder(ctx context.Context, userID, orderID string) (*dto.OrderResponse, error)
}

type orderServiceImpl struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
}

func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository) OrderService {
	return &orderServiceImpl{
		db:        db,
		orderRepo: orderRepo,
	}
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID string) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	resp := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return resp, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, s.db, orderID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "order not found")
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order.UserID != userID {
		return nil, apperr.New(apperr.KindNotFound, "order not found")
	}

	return toOrderResponse(order), nil
}

func toOrderResponse(order *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
		})
	}

	return &dto.OrderResponse{
		ID:         order.ID,
		Status:     string(order.Status),
		Items:      items,
		TotalPrice: order.TotalPrice().StringFixed(2),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}
