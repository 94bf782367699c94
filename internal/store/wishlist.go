package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/storage"
)

const wishlistKey = "nrx_wishlist"

// Wishlist хранит отложенные товары. Семантика множества: без дубликатов
// и без количества.
type Wishlist struct {
	mu      sync.Mutex
	backend storage.Backend
	logger  *zap.Logger

	items []model.Product
	subs  []func([]model.Product)
}

// NewWishlist загружает список желаний из хранилища. Повреждённые данные
// приводят к пустому списку.
func NewWishlist(backend storage.Backend, logger *zap.Logger) *Wishlist {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Wishlist{backend: backend, logger: logger}

	data, err := backend.Get(wishlistKey)
	if err == nil {
		if err := json.Unmarshal(data, &w.items); err != nil {
			logger.Warn("wishlist: reset corrupted state", zap.Error(err))
			w.items = nil
		}
	}

	return w
}

// Subscribe регистрирует обработчик, вызываемый после каждой мутации.
func (w *Wishlist) Subscribe(fn func([]model.Product)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
}

// Add добавляет товар в список. Повторное добавление не создаёт дубликата.
func (w *Wishlist) Add(product model.Product) {
	w.mutate(func() {
		for _, p := range w.items {
			if p.ID == product.ID {
				return
			}
		}
		w.items = append(w.items, product)
	})
}

// Remove удаляет товар из списка.
func (w *Wishlist) Remove(productID string) {
	w.mutate(func() {
		for i := range w.items {
			if w.items[i].ID == productID {
				w.items = append(w.items[:i], w.items[i+1:]...)
				return
			}
		}
	})
}

// Clear опустошает список желаний.
func (w *Wishlist) Clear() {
	w.mutate(func() {
		w.items = nil
	})
}

// Contains сообщает, есть ли товар в списке.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Items возвращает копию текущего списка.
func (w *Wishlist) Items() []model.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wishlist) mutate(fn func()) {
	w.mu.Lock()
	fn()
	w.persistLocked()
	snapshot := w.snapshotLocked()
	subs := make([]func([]model.Product), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (w *Wishlist) persistLocked() {
	data, err := json.Marshal(w.items)
	if err != nil {
		w.logger.Error("wishlist: marshal state", zap.Error(err))
		return
	}
	if err := w.backend.Set(wishlistKey, data); err != nil {
		w.logger.Error("wishlist: persist state", zap.Error(err))
	}
}

func (w *Wishlist) snapshotLocked() []model.Product {
	snapshot := make([]model.Product, len(w.items))
	copy(snapshot, w.items)
	return snapshot
}
