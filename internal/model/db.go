package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderOrdered   OrderStatus = "ORDERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentSucceeded  PaymentStatus = "SUCCEEDED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentCancelled  PaymentStatus = "CANCELLED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundSucceeded RefundStatus = "SUCCEEDED"
	RefundFailed    RefundStatus = "FAILED"
	RefundCancelled RefundStatus = "CANCELLED"
)

type Product struct {
	ID                 string          `gorm:"primaryKey;size:36;not null"`
	Name               string          `gorm:"size:255;not null"`
	Description        string          `gorm:"type:text"`
	Price              decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountPercentage int             `gorm:"not null;default:0"` // [0,100]
	PromotionText      string          `gorm:"size:255"`
	StockQuantity      int             `gorm:"not null;default:0"` // never below zero
	IsActive           bool            `gorm:"not null;default:true;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountPercentage > 0 {
		off := p.Price.Mul(decimal.NewFromInt(int64(p.DiscountPercentage))).Div(decimal.NewFromInt(100))
		return p.Price.Sub(off)
	}
	return p.Price
}

// Order doubles as the cart while PENDING: at most one PENDING order exists
// per user, enforced by a unique index (see client.Migrate).
type Order struct {
	ID        string      `gorm:"primaryKey;size:36;not null"`
	UserID    string      `gorm:"size:64;index;not null"`
	Status    OrderStatus `gorm:"size:20;index;not null"`
	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	Payment   *Payment    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPrice is derived, never stored.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type OrderItem struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	OrderID   string `gorm:"size:36;not null;uniqueIndex:idx_order_product"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_order_product"`
	Quantity  int    `gorm:"not null"`
	// Price and ProductName are captured when the line is created; later
	// product changes do not alter existing carts or order history.
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ProductName string          `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Payment struct {
	ID                    string          `gorm:"primaryKey;size:36;not null"`
	OrderID               string          `gorm:"size:36;uniqueIndex;not null"`
	StripePaymentIntentID *string         `gorm:"size:255;uniqueIndex"`
	StripeSessionID       *string         `gorm:"size:255;uniqueIndex"`
	Amount                decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency              string          `gorm:"size:3;not null;default:usd"`
	Status                PaymentStatus   `gorm:"size:20;index;not null"`
	PaymentMethod         PaymentMethod   `gorm:"size:20;not null"`
	StripeCustomerID      string          `gorm:"size:255"`
	FailureReason         string          `gorm:"type:text"`
	Refunds               []Refund        `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Refund struct {
	ID             string          `gorm:"primaryKey;size:36;not null"`
	PaymentID      string          `gorm:"size:36;index;not null"`
	StripeRefundID *string         `gorm:"size:255;uniqueIndex"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Reason         string          `gorm:"type:text;not null"`
	Status         RefundStatus    `gorm:"size:20;not null"`
	FailureReason  string          `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WebhookEvent records processed gateway event ids so at-least-once
// deliveries short-circuit instead of replaying side effects.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
