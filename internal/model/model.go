// Package model содержит доменные сущности магазина пополнений.
package model

import "time"

// OrderStatus описывает статус жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

// Terminal сообщает, является ли статус конечным для клиента.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed:
		return true
	}
	return false
}

// VerificationStatus описывает статус проверки оплаты администратором.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// DeliveryStatus описывает статус доставки товара на игровой аккаунт.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryProcessing DeliveryStatus = "processing"
	DeliveryDelivered  DeliveryStatus = "delivered"
	DeliveryFailed     DeliveryStatus = "failed"
)

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentBkash       PaymentMethod = "bkash"
	PaymentNagad       PaymentMethod = "nagad"
	PaymentRocket      PaymentMethod = "rocket"
	PaymentRupantorPay PaymentMethod = "rupantorpay"
)

// PaymentMethods перечисляет допустимые способы оплаты.
var PaymentMethods = []PaymentMethod{
	PaymentBkash,
	PaymentNagad,
	PaymentRocket,
	PaymentRupantorPay,
}

// Product описывает товар каталога (пакет алмазов или подписку).
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	// Diamonds хранит количество алмазов либо символьную метку тарифа ("WEEKLY").
	Diamonds   string `json:"diamonds"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Category   string `json:"category,omitempty"`
	GameName   string `json:"gameName,omitempty"`
	IsFeatured bool   `json:"isFeatured,omitempty"`
	IsActive   bool   `json:"isActive"`
	SoldCount  int    `json:"soldCount,omitempty"`
	Stock      int    `json:"stock,omitempty"`
}

// Order описывает одну покупку: оплату, проверку и доставку.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	UserID      string `json:"userId,omitempty"`

	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	GameName    string  `json:"gameName"`
	Diamonds    string  `json:"diamonds"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency"`

	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
	ServerID   string `json:"serverId,omitempty"`

	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	UserName     string `json:"userName"`

	PaymentMethod   string `json:"paymentMethod"`
	PaymentAccount  string `json:"paymentAccount,omitempty"`
	TransactionID   string `json:"transactionId"`
	PaymentProofURL string `json:"paymentProofUrl,omitempty"`

	Status OrderStatus `json:"status"`

	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
	VerifiedBy         string             `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`

	DeliveryStatus DeliveryStatus `json:"deliveryStatus,omitempty"`
	DeliveryNotes  string         `json:"deliveryNotes,omitempty"`
	DeliveredAt    *time.Time     `json:"deliveredAt,omitempty"`

	Notes      string `json:"notes,omitempty"`
	AdminNotes string `json:"adminNotes,omitempty"`

	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CartItem описывает одну позицию корзины.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// NotificationType описывает тип уведомления пользователя.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationOrder   NotificationType = "order"
)

// Notification описывает уведомление пользователя в локальной истории.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
	OrderID   string           `json:"orderId,omitempty"`
	Link      string           `json:"link,omitempty"`
}

// Settings содержит настройки витрины, получаемые с бэкенда.
type Settings struct {
	SiteName        string            `json:"siteName"`
	SupportPhone    string            `json:"supportPhone,omitempty"`
	SupportEmail    string            `json:"supportEmail,omitempty"`
	MaintenanceMode bool              `json:"maintenanceMode"`
	PaymentNumbers  map[string]string `json:"paymentNumbers,omitempty"`
}

// DefaultSettings возвращает настройки по умолчанию при недоступном бэкенде.
func DefaultSettings() Settings {
	return Settings{
		SiteName: "NRX Diamond Store",
	}
}
