// Package api предоставляет клиент REST-бэкенда магазина пополнений.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/normalize"
)

// ErrUnauthorized возвращается при отсутствующем или просроченном токене на
// защищённой операции.
var ErrUnauthorized = errors.New("authentication required")

// StatusError описывает ответ бэкенда с неуспешным HTTP-статусом.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// TooManyRequestsError сообщает, через какое время бэкенд готов принять
// следующий запрос.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e *TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client инкапсулирует HTTP-взаимодействие с бэкендом витрины.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создаёт HTTP-клиент для обращения к бэкенду по указанному адресу.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// ProductsFilter выбирает подмножество каталога.
type ProductsFilter string

const (
	ProductsActive   ProductsFilter = "active"
	ProductsInactive ProductsFilter = "inactive"
	ProductsAll      ProductsFilter = "all"
)

// ProductsSummary содержит сводку каталога из ответа бэкенда.
type ProductsSummary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ProductsResponse содержит товары и сводку каталога.
type ProductsResponse struct {
	Products []model.Product `json:"products"`
	Summary  ProductsSummary `json:"summary"`
}

// NotificationsFeed содержит серверные уведомления пользователя.
type NotificationsFeed struct {
	UnreadCount int                  `json:"unreadCount"`
	Items       []model.Notification `json:"items"`
}

// CreateOrderRequest описывает тело запроса на создание заказа.
type CreateOrderRequest struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	Diamonds      string  `json:"diamonds"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity,omitempty"`
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName,omitempty"`
	ServerID      string  `json:"serverId,omitempty"`
	UserID        string  `json:"userId"`
	UserEmail     string  `json:"userEmail"`
	UserName      string  `json:"userName"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID string  `json:"transactionId"`
	ContactPhone  string  `json:"contactPhone,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// ListOrders возвращает заказы пользователя, нормализованные к каноническому
// виду. Фильтр status необязателен.
func (c *Client) ListOrders(ctx context.Context, userID string, status model.OrderStatus) ([]model.Order, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}
	if status != "" {
		q.Set("status", string(status))
	}

	var raw any
	if err := c.do(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, "", &raw); err != nil {
		return nil, err
	}

	return normalize.Orders(raw, c.logger), nil
}

// GetOrder возвращает один заказ по идентификатору.
func (c *Client) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, "", &raw); err != nil {
		return model.Order{}, err
	}
	return normalize.Order(raw), nil
}

// CreateOrder отправляет оформление заказа и возвращает его идентификатор.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, token string) (string, error) {
	var resp struct {
		OrderID string `json:"orderId"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", req, token, &resp); err != nil {
		return "", err
	}
	if resp.OrderID == "" {
		return "", fmt.Errorf("create order: empty order id in response")
	}
	return resp.OrderID, nil
}

// UpdateOrderStatus запрашивает смену статуса заказа на сервере.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, adminNotes, token string) error {
	body := struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		AdminNotes string `json:"adminNotes,omitempty"`
	}{ID: orderID, Status: string(status), AdminNotes: adminNotes}

	return c.do(ctx, http.MethodPut, "/orders", body, token, nil)
}

// VerifyOrder передаёт решение администратора по подтверждению оплаты.
func (c *Client) VerifyOrder(ctx context.Context, orderID string, verify bool, notes, token string) error {
	body := struct {
		Verify bool   `json:"verify"`
		Notes  string `json:"notes,omitempty"`
	}{Verify: verify, Notes: notes}

	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/verify", body, token, nil)
}

// UploadPaymentProof прикрепляет к заказу ссылку на подтверждение оплаты.
func (c *Client) UploadPaymentProof(ctx context.Context, orderID, imageURL, token string) error {
	body := struct {
		ImageURL string `json:"imageUrl"`
	}{ImageURL: imageURL}

	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/upload_proof", body, token, nil)
}

// UserNotifications возвращает серверные уведомления и число непрочитанных.
func (c *Client) UserNotifications(ctx context.Context, userID string) (NotificationsFeed, error) {
	var feed NotificationsFeed
	err := c.do(ctx, http.MethodGet, "/notifications/user/"+url.PathEscape(userID), nil, "", &feed)
	return feed, err
}

// MarkNotificationRead помечает серверное уведомление прочитанным.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return c.do(ctx, http.MethodPut, "/notifications/read/"+url.PathEscape(notificationID), nil, "", nil)
}

// MarkAllNotificationsRead помечает все серверные уведомления пользователя
// прочитанными.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPut, "/notifications/user/"+url.PathEscape(userID)+"/read-all", nil, "", nil)
}

// Products возвращает каталог с учётом фильтра активности.
func (c *Client) Products(ctx context.Context, filter ProductsFilter) (ProductsResponse, error) {
	path := "/products"
	switch filter {
	case ProductsActive:
		path += "?onlyActive=true"
	case ProductsInactive:
		path += "?onlyInactive=true"
	case ProductsAll:
		path += "?includeInactive=true"
	}

	var resp ProductsResponse
	err := c.do(ctx, http.MethodGet, path, nil, "", &resp)
	return resp, err
}

// Settings возвращает настройки витрины.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := c.do(ctx, http.MethodGet, "/settings", nil, "", &s)
	return s, err
}

// UpdateSettings сохраняет настройки витрины.
func (c *Client) UpdateSettings(ctx context.Context, s model.Settings, token string) error {
	return c.do(ctx, http.MethodPut, "/settings", s, token, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Minute
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = time.Duration(seconds) * time.Second
		}
		return &TooManyRequestsError{RetryAfter: retryAfter}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
