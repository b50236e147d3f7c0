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

type ProductService interface {
	ListProducts(ctx context.Context) ([]*dto.ProductResponse, error)
	GetProduct(ctx context.Context, productID string) (*dto.ProductResponse, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
	}
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	resp := make([]*dto.ProductResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, toProductResponse(product))
	}
	return resp, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID string) (*dto.ProductResponse, error) {
	product, err := s.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	return toProductResponse(product), nil
}

func toProductResponse(product *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                 product.ID,
		Name:               product.Name,
		Description:        product.Description,
		Price:              product.Price.StringFixed(2),
		DiscountPercentage: product.DiscountPercentage,
		DiscountedPrice:    product.DiscountedPrice().StringFixed(2),
		PromotionText:      product.PromotionText,
		StockQuantity:      product.StockQuantity,
	}
}
