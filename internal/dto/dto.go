package dto

import "time"

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ReduceItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"` // unit price snapshot
	LineTotal   string `json:"line_total"`
}

type CartResponse struct {
	OrderID    string     `json:"order_id,omitempty"`
	Items      []CartItem `json:"items"`
	TotalPrice string     `json:"total_price"`
}

type OrderItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice string              `json:"total_price"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type ProductResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Price              string `json:"price"`
	DiscountPercentage int    `json:"discount_percentage"`
	DiscountedPrice    string `json:"discounted_price"`
	PromotionText      string `json:"promotion_text,omitempty"`
	StockQuantity      int    `json:"stock_quantity"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type FinalizeOrderRequest struct {
	SessionID string `json:"session_id"`
}

type FinalizeOrderResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

type RefundRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

type RefundResponse struct {
	RefundID string `json:"refund_id"`
	Amount   string `json:"amount"`
	Status   string `json:"status"`
}
