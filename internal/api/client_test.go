package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
)

func TestListOrders_NormalizesSnakeCase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("path = %q, want /orders", r.URL.Path)
		}
		if got := r.URL.Query().Get("userId"); got != "user-1" {
			t.Errorf("userId = %q, want user-1", got)
		}
		if got := r.URL.Query().Get("status"); got != "pending" {
			t.Errorf("status = %q, want pending", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"a1b2c3d4-e5f6","product_name":"Mini Pack","total_amount":30,"payment_method":"bkash"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	orders, err := client.ListOrders(context.Background(), "user-1", model.OrderStatusPending)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("len(orders) = %d, want 1", len(orders))
	}

	o := orders[0]
	if o.ProductName != "Mini Pack" {
		t.Errorf("productName = %q, want Mini Pack", o.ProductName)
	}
	if o.TotalAmount != 30 {
		t.Errorf("totalAmount = %v, want 30", o.TotalAmount)
	}
	if o.OrderNumber != "A1B2C3D4" {
		t.Errorf("orderNumber = %q, want A1B2C3D4", o.OrderNumber)
	}
	if o.Status != model.OrderStatusPending {
		t.Errorf("status = %q, want pending default", o.Status)
	}
}

func TestCreateOrder_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("%s %s, want POST /orders", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("authorization = %q", got)
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.ProductName != "Mini Pack" || req.PlayerID != "12345678" {
			t.Errorf("unexpected body: %+v", req)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"orderId":"order-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	id, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		ProductID:     "p1",
		ProductName:   "Mini Pack",
		Price:         30,
		PlayerID:      "12345678",
		PaymentMethod: "bkash",
		TransactionID: "TX123456",
	}, "token-123")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if id != "order-42" {
		t.Fatalf("order id = %q, want order-42", id)
	}
}

func TestClient_UnauthorizedSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{}, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestClient_StatusErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("order can only be cancelled while pending"))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	err := client.UpdateOrderStatus(context.Background(), "order-1", model.OrderStatusCancelled, "", "token")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusConflict {
		t.Errorf("code = %d, want 409", statusErr.Code)
	}
	if statusErr.Body != "order can only be cancelled while pending" {
		t.Errorf("body = %q", statusErr.Body)
	}
}

func TestClient_TooManyRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.ListOrders(context.Background(), "user-1", "")

	var tooMany *TooManyRequestsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("err = %v, want *TooManyRequestsError", err)
	}
	if tooMany.RetryAfter != 30*time.Second {
		t.Fatalf("retryAfter = %s, want 30s", tooMany.RetryAfter)
	}
}

func TestUploadPaymentProof_PathAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order-7/upload_proof" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var body struct {
			ImageURL string `json:"imageUrl"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.ImageURL != "https://img.example/proof.png" {
			t.Errorf("imageUrl = %q", body.ImageURL)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	if err := client.UploadPaymentProof(context.Background(), "order-7", "https://img.example/proof.png", "token"); err != nil {
		t.Fatalf("upload proof: %v", err)
	}
}

func TestProducts_FilterQueries(t *testing.T) {
	tests := []struct {
		filter ProductsFilter
		query  string
	}{
		{ProductsActive, "onlyActive=true"},
		{ProductsInactive, "onlyInactive=true"},
		{ProductsAll, "includeInactive=true"},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.RawQuery; got != tt.query {
					t.Errorf("query = %q, want %q", got, tt.query)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"products":[{"id":"p1","name":"Mini Pack"}],"summary":{"total":1,"active":1,"inactive":0}}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, zap.NewNop())

			resp, err := client.Products(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("products: %v", err)
			}
			if len(resp.Products) != 1 || resp.Summary.Total != 1 {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestUserNotifications_DecodesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications/user/user-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"unreadCount":2,"items":[{"id":"n1","title":"Order Placed","read":false},{"id":"n2","title":"Order Completed","read":false}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	feed, err := client.UserNotifications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("user notifications: %v", err)
	}
	if feed.UnreadCount != 2 || len(feed.Items) != 2 {
		t.Fatalf("unexpected feed: %+v", feed)
	}
	if feed.Items[0].Title != "Order Placed" {
		t.Errorf("title = %q", feed.Items[0].Title)
	}
}
