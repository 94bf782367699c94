package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/storage"
)

const notificationsKey = "notifications"

// NotificationInput содержит поля нового уведомления. Идентификатор, время
// и признак прочтения назначаются хранилищем.
type NotificationInput struct {
	Title   string
	Message string
	Type    model.NotificationType
	OrderID string
	Link    string
}

// Notifications хранит историю уведомлений пользователя, новые записи
// впереди.
type Notifications struct {
	mu      sync.Mutex
	backend storage.Backend
	logger  *zap.Logger
	now     func() time.Time

	items []model.Notification
	subs  []func([]model.Notification)
}

// NewNotifications загружает историю уведомлений из хранилища. Повреждённые
// данные приводят к пустой истории; метки времени восстанавливаются из
// сериализованного ISO-представления.
func NewNotifications(backend storage.Backend, logger *zap.Logger) *Notifications {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifications{backend: backend, logger: logger, now: time.Now}

	data, err := backend.Get(notificationsKey)
	if err == nil {
		if err := json.Unmarshal(data, &n.items); err != nil {
			logger.Warn("notifications: reset corrupted state", zap.Error(err))
			n.items = nil
		}
	}

	return n
}

// Subscribe регистрирует обработчик, вызываемый после каждой мутации.
func (n *Notifications) Subscribe(fn func([]model.Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Add создаёт уведомление и помещает его в начало истории.
func (n *Notifications) Add(input NotificationInput) model.Notification {
	record := model.Notification{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Message:   input.Message,
		Type:      input.Type,
		Read:      false,
		Timestamp: n.now(),
		OrderID:   input.OrderID,
		Link:      input.Link,
	}

	n.mutate(func() {
		n.items = append([]model.Notification{record}, n.items...)
	})

	return record
}

// Insert добавляет уже существующую запись (например, пришедшую с бэкенда),
// если записи с таким идентификатором ещё нет.
func (n *Notifications) Insert(record model.Notification) bool {
	inserted := false
	n.mutate(func() {
		for _, existing := range n.items {
			if existing.ID == record.ID {
				return
			}
		}
		n.items = append([]model.Notification{record}, n.items...)
		inserted = true
	})
	return inserted
}

// MarkRead помечает уведомление прочитанным.
func (n *Notifications) MarkRead(id string) {
	n.mutate(func() {
		for i := range n.items {
			if n.items[i].ID == id {
				n.items[i].Read = true
				return
			}
		}
	})
}

// MarkAllRead помечает все уведомления прочитанными.
func (n *Notifications) MarkAllRead() {
	n.mutate(func() {
		for i := range n.items {
			n.items[i].Read = true
		}
	})
}

// Remove удаляет уведомление из истории.
func (n *Notifications) Remove(id string) {
	n.mutate(func() {
		for i := range n.items {
			if n.items[i].ID == id {
				n.items = append(n.items[:i], n.items[i+1:]...)
				return
			}
		}
	})
}

// ClearAll опустошает историю уведомлений.
func (n *Notifications) ClearAll() {
	n.mutate(func() {
		n.items = nil
	})
}

// All возвращает копию истории, новые записи впереди.
func (n *Notifications) All() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

// Recent возвращает не более limit последних уведомлений. Полная история
// при этом сохраняется: ограничение действует только на выдачу.
func (n *Notifications) Recent(limit int) []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if limit < 0 {
		limit = 0
	}
	if limit > len(n.items) {
		limit = len(n.items)
	}
	snapshot := make([]model.Notification, limit)
	copy(snapshot, n.items[:limit])
	return snapshot
}

// UnreadCount возвращает число непрочитанных уведомлений.
func (n *Notifications) UnreadCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	var count int
	for _, item := range n.items {
		if !item.Read {
			count++
		}
	}
	return count
}

func (n *Notifications) mutate(fn func()) {
	n.mu.Lock()
	fn()
	n.persistLocked()
	snapshot := n.snapshotLocked()
	subs := make([]func([]model.Notification), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (n *Notifications) persistLocked() {
	data, err := json.Marshal(n.items)
	if err != nil {
		n.logger.Error("notifications: marshal state", zap.Error(err))
		return
	}
	if err := n.backend.Set(notificationsKey, data); err != nil {
		n.logger.Error("notifications: persist state", zap.Error(err))
	}
}

func (n *Notifications) snapshotLocked() []model.Notification {
	snapshot := make([]model.Notification, len(n.items))
	copy(snapshot, n.items)
	return snapshot
}
