// Package service реализует бизнес-логику клиента витрины: оформление и
// отмену заказов, загрузку подтверждений оплаты и фоновую синхронизацию
// локального состояния с бэкендом.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/api"
	"github.com/nrxshop/storefront-system/internal/lifecycle"
	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/notify"
	"github.com/nrxshop/storefront-system/internal/poller"
	"github.com/nrxshop/storefront-system/internal/session"
	"github.com/nrxshop/storefront-system/internal/store"
	"github.com/nrxshop/storefront-system/internal/validation"
)

// Backend описывает контракт REST-бэкенда, используемый сервисом.
type Backend interface {
	ListOrders(ctx context.Context, userID string, status model.OrderStatus) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	CreateOrder(ctx context.Context, req api.CreateOrderRequest, token string) (string, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, adminNotes, token string) error
	VerifyOrder(ctx context.Context, orderID string, verify bool, notes, token string) error
	UploadPaymentProof(ctx context.Context, orderID, imageURL, token string) error
	UserNotifications(ctx context.Context, userID string) (api.NotificationsFeed, error)
	Products(ctx context.Context, filter api.ProductsFilter) (api.ProductsResponse, error)
	Settings(ctx context.Context) (model.Settings, error)
}

// Intervals задаёт периодичность фоновых опросов по ресурсам.
type Intervals struct {
	Products      time.Duration
	Settings      time.Duration
	Notifications time.Duration
	Orders        time.Duration
}

// DefaultIntervals возвращает периодичность опросов по умолчанию.
func DefaultIntervals() Intervals {
	return Intervals{
		Products:      30 * time.Second,
		Settings:      10 * time.Second,
		Notifications: 30 * time.Second,
		Orders:        15 * time.Second,
	}
}

// Profile содержит данные аккаунта для заполнения контактов заказа.
type Profile struct {
	UserID string
	Email  string
	Name   string
	Phone  string
}

// CheckoutInput содержит форму оформления заказа.
type CheckoutInput struct {
	PlayerID      string
	PlayerName    string
	ServerID      string
	PaymentMethod string
	TransactionID string
	ContactPhone  string
}

// ErrProductNotFound возвращается для товара, отсутствующего в каталоге.
var ErrProductNotFound = errors.New("product not found")

type stopper interface{ Stop() }

// Service связывает бэкенд, сессию, клиентские хранилища и диспетчер
// уведомлений.
type Service struct {
	backend    Backend
	session    *session.Session
	cart       *store.Cart
	wishlist   *store.Wishlist
	dispatcher *notify.Dispatcher
	intervals  Intervals
	logger     *zap.Logger

	mu       sync.Mutex
	profile  Profile
	orders   map[string]model.Order
	products []model.Product
	summary  api.ProductsSummary
	settings model.Settings
	pollers  []stopper
}

// NewService создаёт сервис витрины.
func NewService(backend Backend, sess *session.Session, cart *store.Cart, wishlist *store.Wishlist, dispatcher *notify.Dispatcher, intervals Intervals, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:    backend,
		session:    sess,
		cart:       cart,
		wishlist:   wishlist,
		dispatcher: dispatcher,
		intervals:  intervals,
		logger:     logger,
		orders:     make(map[string]model.Order),
		settings:   model.DefaultSettings(),
	}
}

// SetProfile сохраняет данные аккаунта текущего пользователя.
func (s *Service) SetProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Checkout валидирует форму, создаёт заказ на сервере по каждой позиции
// корзины и очищает корзину только после подтверждения всех заказов.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) ([]string, error) {
	if err := validation.ValidatePlayerID(input.PlayerID); err != nil {
		return nil, err
	}
	if err := validation.ValidatePaymentMethod(input.PaymentMethod); err != nil {
		return nil, err
	}
	if err := validation.ValidateTransactionID(input.TransactionID); err != nil {
		return nil, err
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	token, err := s.session.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	profile := s.profile
	s.mu.Unlock()

	orderIDs := make([]string, 0, len(items))
	for _, item := range items {
		req := api.CreateOrderRequest{
			ProductID:     item.Product.ID,
			ProductName:   item.Product.Name,
			Diamonds:      item.Product.Diamonds,
			Price:         item.Product.Price * float64(item.Quantity),
			Quantity:      item.Quantity,
			PlayerID:      input.PlayerID,
			PlayerName:    input.PlayerName,
			ServerID:      input.ServerID,
			UserID:        profile.UserID,
			UserEmail:     profile.Email,
			UserName:      profile.Name,
			PaymentMethod: input.PaymentMethod,
			TransactionID: input.TransactionID,
			ContactPhone:  input.ContactPhone,
		}
		if req.ContactPhone == "" {
			req.ContactPhone = profile.Phone
		}

		id, err := s.backend.CreateOrder(ctx, req, token)
		if err != nil {
			return orderIDs, fmt.Errorf("create order for %s: %w", item.Product.Name, err)
		}
		orderIDs = append(orderIDs, id)
	}

	s.cart.Clear()

	s.dispatcher.Dispatch(store.NotificationInput{
		Title:   "Order Placed",
		Message: fmt.Sprintf("Your order has been placed. We will verify the payment shortly. Orders: %d.", len(orderIDs)),
		Type:    model.NotificationSuccess,
		Link:    "/dashboard",
	})

	if err := s.RefreshOrders(ctx); err != nil {
		s.logger.Warn("refresh orders after checkout", zap.Error(err))
	}

	return orderIDs, nil
}

// CancelOrder отменяет заказ покупателя. Недопустимый переход отклоняется
// локально без обращения к серверу; локальное состояние меняется только
// после подтверждения сервером.
func (s *Service) CancelOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	cached, known := s.orders[orderID]
	s.mu.Unlock()

	if known && !lifecycle.CanCancel(cached) {
		return lifecycle.ErrNotCancellable
	}

	token, err := s.session.Token()
	if err != nil {
		return err
	}

	if err := s.backend.UpdateOrderStatus(ctx, orderID, model.OrderStatusCancelled, "", token); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	s.refetchOrder(ctx, orderID, func(o model.Order) (model.Order, error) {
		return lifecycle.Cancel(o, time.Now())
	})
	return nil
}

// UploadPaymentProof прикрепляет подтверждение оплаты к заказу. Требуется
// действующая сессия.
func (s *Service) UploadPaymentProof(ctx context.Context, orderID, imageURL string) error {
	s.mu.Lock()
	cached, known := s.orders[orderID]
	s.mu.Unlock()

	if known {
		if _, err := lifecycle.AttachProof(cached, imageURL, time.Now()); err != nil {
			return err
		}
	}

	token, err := s.session.Token()
	if err != nil {
		return err
	}

	if err := s.backend.UploadPaymentProof(ctx, orderID, imageURL, token); err != nil {
		return fmt.Errorf("upload payment proof: %w", err)
	}

	s.refetchOrder(ctx, orderID, func(o model.Order) (model.Order, error) {
		return lifecycle.AttachProof(o, imageURL, time.Now())
	})
	return nil
}

// VerifyOrder передаёт решение администратора по оплате заказа.
func (s *Service) VerifyOrder(ctx context.Context, orderID string, verify bool, notes string) error {
	token, err := s.session.Token()
	if err != nil {
		return err
	}

	if err := s.backend.VerifyOrder(ctx, orderID, verify, notes, token); err != nil {
		return fmt.Errorf("verify order: %w", err)
	}

	s.refetchOrder(ctx, orderID, nil)
	return nil
}

// RefreshOrders запрашивает заказы пользователя и вливает их в локальный
// кэш с защитой от устаревших ответов.
func (s *Service) RefreshOrders(ctx context.Context) error {
	s.mu.Lock()
	userID := s.profile.UserID
	s.mu.Unlock()

	orders, err := s.backend.ListOrders(ctx, userID, "")
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	for _, o := range orders {
		s.adopt(o)
	}
	return nil
}

// RefreshProducts запрашивает актуальный каталог активных товаров.
func (s *Service) RefreshProducts(ctx context.Context) error {
	resp, err := s.backend.Products(ctx, api.ProductsActive)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	s.mu.Lock()
	s.products = resp.Products
	s.summary = resp.Summary
	s.mu.Unlock()
	return nil
}

// Orders возвращает заказы из локального кэша, новые впереди.
func (s *Service) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res
}

// Order возвращает заказ из локального кэша.
func (s *Service) Order(orderID string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	return o, ok
}

// Products возвращает закэшированный каталог и его сводку.
func (s *Service) Products() ([]model.Product, api.ProductsSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]model.Product, len(s.products))
	copy(products, s.products)
	return products, s.summary
}

// Settings возвращает закэшированные настройки витрины. До первого
// успешного ответа бэкенда действуют настройки по умолчанию.
func (s *Service) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// ToggleWishlist добавляет товар из каталога в список желаний либо убирает
// его оттуда. Возвращает true, если товар оказался в списке.
func (s *Service) ToggleWishlist(productID string) (bool, error) {
	if s.wishlist.Contains(productID) {
		s.wishlist.Remove(productID)
		return false, nil
	}

	product, ok := s.catalogProduct(productID)
	if !ok {
		return false, ErrProductNotFound
	}
	s.wishlist.Add(product)
	return true, nil
}

// WishlistToCart переносит товар из списка желаний в корзину.
func (s *Service) WishlistToCart(productID string) error {
	for _, p := range s.wishlist.Items() {
		if p.ID == productID {
			s.cart.Add(p, 1)
			s.wishlist.Remove(productID)
			return nil
		}
	}
	return ErrProductNotFound
}

// Wishlist возвращает текущий список желаний.
func (s *Service) Wishlist() []model.Product {
	return s.wishlist.Items()
}

func (s *Service) catalogProduct(productID string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == productID {
			return p, true
		}
	}
	return model.Product{}, false
}

// StartSync запускает фоновые опросы каталога, настроек, уведомлений и
// заказов.
func (s *Service) StartSync(ctx context.Context) {
	products := poller.New("products", s.intervals.Products,
		func(ctx context.Context) (api.ProductsResponse, error) {
			return s.backend.Products(ctx, api.ProductsActive)
		},
		func(resp api.ProductsResponse) {
			s.mu.Lock()
			s.products = resp.Products
			s.summary = resp.Summary
			s.mu.Unlock()
		},
		s.logger,
	)

	settings := poller.New("settings", s.intervals.Settings,
		func(ctx context.Context) (model.Settings, error) {
			return s.backend.Settings(ctx)
		},
		func(settings model.Settings) {
			s.mu.Lock()
			s.settings = settings
			s.mu.Unlock()
		},
		s.logger,
	)

	notifications := poller.New("notifications", s.intervals.Notifications,
		func(ctx context.Context) (api.NotificationsFeed, error) {
			s.mu.Lock()
			userID := s.profile.UserID
			s.mu.Unlock()
			if userID == "" {
				return api.NotificationsFeed{}, nil
			}
			return s.backend.UserNotifications(ctx, userID)
		},
		func(feed api.NotificationsFeed) {
			s.dispatcher.MergeServerFeed(feed.Items)
		},
		s.logger,
	)

	orders := poller.New("orders", s.intervals.Orders,
		func(ctx context.Context) ([]model.Order, error) {
			s.mu.Lock()
			userID := s.profile.UserID
			s.mu.Unlock()
			if userID == "" {
				return nil, nil
			}
			return s.backend.ListOrders(ctx, userID, "")
		},
		func(orders []model.Order) {
			for _, o := range orders {
				s.adopt(o)
			}
		},
		s.logger,
	)

	s.mu.Lock()
	s.pollers = append(s.pollers, products, settings, notifications, orders)
	s.mu.Unlock()

	products.Start(ctx)
	settings.Start(ctx)
	notifications.Start(ctx)
	orders.Start(ctx)
}

// Close останавливает фоновые опросы.
func (s *Service) Close() {
	s.mu.Lock()
	pollers := s.pollers
	s.pollers = nil
	s.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
}

// refetchOrder обновляет заказ из подтверждённого серверного состояния.
// Если перечитать заказ не удалось, применяется переход apply к локальной
// копии: сервер уже подтвердил мутацию.
func (s *Service) refetchOrder(ctx context.Context, orderID string, apply func(model.Order) (model.Order, error)) {
	fresh, err := s.backend.GetOrder(ctx, orderID)
	if err == nil {
		s.adopt(fresh)
		return
	}
	s.logger.Warn("refetch order", zap.String("order", orderID), zap.Error(err))

	if apply == nil {
		return
	}

	s.mu.Lock()
	cached, known := s.orders[orderID]
	s.mu.Unlock()
	if !known {
		return
	}

	updated, err := apply(cached)
	if err != nil {
		return
	}
	s.adopt(updated)
}

// adopt вливает заказ в кэш. Запись с более новым локальным updatedAt не
// затирается устаревшим результатом опроса. Наблюдаемые изменения статуса
// и проверки оплаты транслируются в уведомления.
func (s *Service) adopt(incoming model.Order) {
	s.mu.Lock()
	old, known := s.orders[incoming.ID]
	if known && old.UpdatedAt.After(incoming.UpdatedAt) {
		s.mu.Unlock()
		return
	}
	s.orders[incoming.ID] = incoming
	s.mu.Unlock()

	if !known {
		return
	}

	if old.VerificationStatus == model.VerificationPending && incoming.VerificationStatus != model.VerificationPending {
		s.dispatcher.VerificationResult(incoming, incoming.VerificationStatus == model.VerificationVerified, incoming.VerificationNotes)
	}
	if old.Status != incoming.Status {
		s.dispatcher.OrderStatusChanged(incoming, old.Status, incoming.Status)
	}
}
