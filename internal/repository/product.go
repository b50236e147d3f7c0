package repository

import (
	"context"
	"errors"

	"online-store-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict is returned when a decrement would drive stock below zero.
var ErrStockConflict = errors.New("stock would go negative")

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error)
	FindActiveByID(ctx context.Context, productID string) (*model.Product, error)
	ListActive(ctx context.Context) ([]*model.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "prod-espresso-maker", Name: "Espresso Maker", Description: "Stovetop espresso maker, 6 cups", Price: decimal.NewFromFloat(49.90), StockQuantity: 25, IsActive: true},
		{ID: "prod-grinder", Name: "Burr Grinder", Description: "Conical burr coffee grinder", Price: decimal.NewFromFloat(89.00), StockQuantity: 10, IsActive: true},
		{ID: "prod-beans-1kg", Name: "House Blend Beans 1kg", Price: decimal.NewFromFloat(18.50), DiscountPercentage: 10, PromotionText: "10% off this month", StockQuantity: 200, IsActive: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindActiveByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) ListActive(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// DecrementStock is conditional on live stock so the quantity column can
// never go negative even if callers race.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}
