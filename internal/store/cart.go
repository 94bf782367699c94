// Package store содержит персистентные клиентские коллекции: корзину,
// список желаний и историю уведомлений. Каждая коллекция загружается из
// локального хранилища при создании, мутирует в памяти, сохраняется после
// каждой мутации и синхронно оповещает подписчиков.
package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/storage"
)

const cartKey = "nrx_cart"

// Cart хранит позиции корзины покупателя.
type Cart struct {
	mu      sync.Mutex
	backend storage.Backend
	logger  *zap.Logger

	items []model.CartItem
	open  bool
	subs  []func([]model.CartItem)
}

// NewCart загружает корзину из хранилища. Повреждённые данные приводят к
// пустой корзине, а не к ошибке.
func NewCart(backend storage.Backend, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cart{backend: backend, logger: logger}

	data, err := backend.Get(cartKey)
	if err == nil {
		if err := json.Unmarshal(data, &c.items); err != nil {
			logger.Warn("cart: reset corrupted state", zap.Error(err))
			c.items = nil
		}
	}

	return c
}

// Subscribe регистрирует обработчик, вызываемый после каждой мутации.
func (c *Cart) Subscribe(fn func([]model.CartItem)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Add добавляет товар в корзину, суммируя количество существующей позиции,
// и открывает панель корзины.
func (c *Cart) Add(product model.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mutate(func() {
		for i := range c.items {
			if c.items[i].Product.ID == product.ID {
				c.items[i].Quantity += quantity
				return
			}
		}
		c.items = append(c.items, model.CartItem{Product: product, Quantity: quantity})
	})

	c.mu.Lock()
	c.open = true
	c.mu.Unlock()
}

// UpdateQuantity изменяет количество позиции на delta. Результат ≤0 удаляет
// позицию. Отсутствующий товар игнорируется.
func (c *Cart) UpdateQuantity(productID string, delta int) {
	c.mutate(func() {
		for i := range c.items {
			if c.items[i].Product.ID != productID {
				continue
			}
			c.items[i].Quantity += delta
			if c.items[i].Quantity <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			}
			return
		}
	})
}

// Remove удаляет позицию из корзины.
func (c *Cart) Remove(productID string) {
	c.mutate(func() {
		for i := range c.items {
			if c.items[i].Product.ID == productID {
				c.items = append(c.items[:i], c.items[i+1:]...)
				return
			}
		}
	})
}

// Clear опустошает корзину.
func (c *Cart) Clear() {
	c.mutate(func() {
		c.items = nil
	})
}

// Items возвращает копию текущих позиций.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Total возвращает сумму цена×количество по всем позициям.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// Count возвращает суммарное количество единиц товара в корзине.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Open открывает панель корзины.
func (c *Cart) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
}

// Close закрывает панель корзины.
func (c *Cart) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

// Toggle переключает видимость панели корзины.
func (c *Cart) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
}

// IsOpen сообщает, открыта ли панель корзины.
func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// mutate выполняет мутацию и сохранение под блокировкой, затем оповещает
// подписчиков уже без блокировки.
func (c *Cart) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.persistLocked()
	snapshot := c.snapshotLocked()
	subs := make([]func([]model.CartItem), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Ошибка записи логируется, но мутация в памяти не откатывается: для
// текущей сессии источником истины остаётся память.
func (c *Cart) persistLocked() {
	data, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error("cart: marshal state", zap.Error(err))
		return
	}
	if err := c.backend.Set(cartKey, data); err != nil {
		c.logger.Error("cart: persist state", zap.Error(err))
	}
}

func (c *Cart) snapshotLocked() []model.CartItem {
	snapshot := make([]model.CartItem, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}
