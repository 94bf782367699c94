// Package devserver реализует в памяти REST-контракт бэкенда витрины.
//
// Продакшен-бэкенд вне рамок этого репозитория; devserver реализует тот же
// контракт для локальной разработки и интеграционных тестов, включая
// серверную проверку переходов жизненного цикла заказа.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/lifecycle"
	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/normalize"
)

// Server хранит состояние витрины в памяти и обслуживает REST-контракт.
type Server struct {
	logger *zap.Logger
	secret []byte

	mu            sync.Mutex
	orders        map[string]model.Order
	products      []model.Product
	settings      model.Settings
	notifications map[string][]model.Notification
}

// NewServer создаёт dev-бэкенд с предзаполненным каталогом.
func NewServer(secret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		logger:        logger,
		secret:        []byte(secret),
		orders:        make(map[string]model.Order),
		notifications: make(map[string][]model.Notification),
		settings:      model.DefaultSettings(),
		products: []model.Product{
			{ID: uuid.NewString(), Name: "Mini Pack", Diamonds: "25", Price: 30, Category: "diamonds", GameName: "Free Fire", IsActive: true},
			{ID: uuid.NewString(), Name: "Mega Pack", Diamonds: "530", Price: 400, Category: "diamonds", GameName: "Free Fire", IsActive: true, IsFeatured: true},
			{ID: uuid.NewString(), Name: "Weekly Membership", Diamonds: "WEEKLY", Price: 160, Category: "membership", GameName: "Free Fire", IsActive: true},
			{ID: uuid.NewString(), Name: "Legacy Pack", Diamonds: "100", Price: 80, Category: "diamonds", GameName: "Free Fire", IsActive: false},
		},
	}
}

// Router настраивает HTTP-маршруты dev-бэкенда.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(s.logger))

	r.Post("/auth/login", s.login)

	r.Get("/orders", s.listOrders)
	r.Get("/orders/{id}", s.getOrder)
	r.Get("/products", s.listProducts)
	r.Get("/settings", s.getSettings)
	r.Get("/notifications/user/{userId}", s.userNotifications)
	r.Put("/notifications/read/{id}", s.markNotificationRead)
	r.Put("/notifications/user/{userId}/read-all", s.markAllNotificationsRead)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/orders", s.createOrder)
		r.Put("/orders", s.updateOrderStatus)
		r.Post("/orders/{id}/verify", s.verifyOrder)
		r.Post("/orders/{id}/upload_proof", s.uploadProof)
		r.Put("/settings", s.updateSettings)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	token, err := s.IssueToken(req.UserID)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	res := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		if status != "" && string(o.Status) != status {
			continue
		}
		res = append(res, o)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.orders[chi.URLParam(r, "id")]
	s.mu.Unlock()

	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o := normalize.Order(raw)
	now := time.Now()
	o.ID = uuid.NewString()
	o.OrderNumber = normalize.DeriveOrderNumber(o.ID)
	o.UserID = userID
	o.Status = model.OrderStatusPending
	o.VerificationStatus = model.VerificationPending
	o.DeliveryStatus = model.DeliveryPending
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Quantity > 0 && o.UnitPrice == 0 {
		o.UnitPrice = o.TotalAmount / float64(o.Quantity)
	}

	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()

	s.pushNotification(userID, model.Notification{
		Title:   "Order Received",
		Message: "Order " + o.OrderNumber + " received and awaiting payment verification.",
		Type:    model.NotificationOrder,
		OrderID: o.ID,
	})

	writeJSON(w, http.StatusCreated, map[string]string{"orderId": o.ID})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		AdminNotes string `json:"adminNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	now := time.Now()
	err := s.transition(req.ID, func(o model.Order) (model.Order, error) {
		var updated model.Order
		var err error

		switch model.OrderStatus(req.Status) {
		case model.OrderStatusCancelled:
			updated, err = lifecycle.Cancel(o, now)
		case model.OrderStatusCompleted:
			updated, err = lifecycle.Deliver(o, req.AdminNotes, now)
		case model.OrderStatusFailed:
			updated, err = lifecycle.Fail(o, req.AdminNotes, now)
		case model.OrderStatusProcessing:
			updated, err = lifecycle.Verify(o, "admin", req.AdminNotes, now)
		default:
			return o, errors.New("unknown status")
		}
		if err != nil {
			return o, err
		}

		if req.AdminNotes != "" {
			updated.AdminNotes = req.AdminNotes
		}
		return updated, nil
	})
	s.respondTransition(w, req.ID, err)
}

func (s *Server) verifyOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req struct {
		Verify bool   `json:"verify"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	admin, _ := userIDFromContext(r.Context())
	now := time.Now()

	err := s.transition(orderID, func(o model.Order) (model.Order, error) {
		if req.Verify {
			return lifecycle.Verify(o, admin, req.Notes, now)
		}
		return lifecycle.Reject(o, admin, req.Notes, now)
	})
	if err == nil {
		s.mu.Lock()
		o := s.orders[orderID]
		s.mu.Unlock()

		title, msg := "Payment Verified", "Payment for order "+o.OrderNumber+" has been verified."
		if !req.Verify {
			title, msg = "Payment Rejected", "Payment for order "+o.OrderNumber+" was rejected."
		}
		s.pushNotification(o.UserID, model.Notification{
			Title:   title,
			Message: msg,
			Type:    model.NotificationOrder,
			OrderID: o.ID,
		})
	}
	s.respondTransition(w, orderID, err)
}

func (s *Server) uploadProof(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageURL == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := s.transition(orderID, func(o model.Order) (model.Order, error) {
		return lifecycle.AttachProof(o, req.ImageURL, time.Now())
	})
	s.respondTransition(w, orderID, err)
}

var errOrderNotFound = errors.New("order not found")

// transition применяет переход к заказу атомарно под блокировкой.
func (s *Server) transition(orderID string, fn func(model.Order) (model.Order, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return errOrderNotFound
	}

	updated, err := fn(o)
	if err != nil {
		return err
	}

	s.orders[orderID] = updated
	return nil
}

// Недопустимые переходы отклоняются с 409, чтобы клиент не мог угадать
// результат без подтверждения сервера.
func (s *Server) respondTransition(w http.ResponseWriter, orderID string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, errOrderNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	default:
		s.logger.Info("transition rejected", zap.String("order", orderID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusConflict)
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	onlyActive := q.Get("onlyActive") == "true"
	onlyInactive := q.Get("onlyInactive") == "true"
	includeInactive := q.Get("includeInactive") == "true"

	s.mu.Lock()
	var products []model.Product
	var active, inactive int
	for _, p := range s.products {
		if p.IsActive {
			active++
		} else {
			inactive++
		}

		switch {
		case onlyActive && !p.IsActive:
			continue
		case onlyInactive && p.IsActive:
			continue
		case !onlyActive && !onlyInactive && !includeInactive && !p.IsActive:
			continue
		}
		products = append(products, p)
	}
	total := len(s.products)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"summary": map[string]int{
			"total":    total,
			"active":   active,
			"inactive": inactive,
		},
	})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) userNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	s.mu.Lock()
	items := make([]model.Notification, len(s.notifications[userID]))
	copy(items, s.notifications[userID])
	s.mu.Unlock()

	var unread int
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"unreadCount": unread,
		"items":       items,
	})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	for userID, items := range s.notifications {
		for i := range items {
			if items[i].ID == id {
				items[i].Read = true
				s.notifications[userID] = items
			}
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	s.mu.Lock()
	items := s.notifications[userID]
	for i := range items {
		items[i].Read = true
	}
	s.notifications[userID] = items
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) pushNotification(userID string, n model.Notification) {
	n.ID = uuid.NewString()
	n.Timestamp = time.Now()

	s.mu.Lock()
	s.notifications[userID] = append([]model.Notification{n}, s.notifications[userID]...)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
