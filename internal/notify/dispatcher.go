// Package notify переводит события жизненного цикла в уведомления пользователя.
package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
	"github.com/nrxshop/storefront-system/internal/store"
)

// PlatformNotifier показывает системное уведомление, если у приложения есть
// на это разрешение.
type PlatformNotifier interface {
	Notify(title, message string) error
}

// Dispatcher создаёт записи уведомлений и дублирует их системным
// уведомлением по возможности.
type Dispatcher struct {
	store    *store.Notifications
	platform PlatformNotifier
	logger   *zap.Logger
}

// NewDispatcher создаёт диспетчер поверх хранилища уведомлений. platform
// может быть nil, тогда системные уведомления не показываются.
func NewDispatcher(s *store.Notifications, platform PlatformNotifier, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{store: s, platform: platform, logger: logger}
}

// Dispatch сохраняет уведомление и показывает системное. Неудача системного
// уведомления логируется и не мешает созданию записи.
func (d *Dispatcher) Dispatch(input store.NotificationInput) model.Notification {
	record := d.store.Add(input)

	if d.platform != nil {
		if err := d.platform.Notify(record.Title, record.Message); err != nil {
			d.logger.Warn("platform notification failed", zap.Error(err))
		}
	}

	return record
}

// OrderStatusChanged формирует уведомление о смене статуса заказа.
func (d *Dispatcher) OrderStatusChanged(o model.Order, from, to model.OrderStatus) {
	if from == to {
		return
	}

	input := store.NotificationInput{
		Type:    model.NotificationOrder,
		OrderID: o.ID,
		Link:    "/dashboard",
	}

	switch to {
	case model.OrderStatusProcessing:
		input.Title = "Order In Progress"
		input.Message = fmt.Sprintf("Order %s is being processed. Your %s will arrive soon.", o.OrderNumber, o.ProductName)
	case model.OrderStatusCompleted:
		input.Type = model.NotificationSuccess
		input.Title = "Order Completed"
		input.Message = fmt.Sprintf("Order %s is complete. %s delivered to player %s.", o.OrderNumber, o.ProductName, o.PlayerID)
	case model.OrderStatusCancelled:
		input.Type = model.NotificationWarning
		input.Title = "Order Cancelled"
		input.Message = fmt.Sprintf("Order %s has been cancelled.", o.OrderNumber)
	case model.OrderStatusFailed:
		input.Type = model.NotificationError
		input.Title = "Order Failed"
		input.Message = fmt.Sprintf("Order %s could not be delivered. Contact support.", o.OrderNumber)
	default:
		input.Title = "Order Updated"
		input.Message = fmt.Sprintf("Order %s status changed to %s.", o.OrderNumber, to)
	}

	d.Dispatch(input)
}

// VerificationResult формирует уведомление о решении по проверке оплаты.
func (d *Dispatcher) VerificationResult(o model.Order, verified bool, notes string) {
	input := store.NotificationInput{
		Type:    model.NotificationSuccess,
		OrderID: o.ID,
		Link:    "/dashboard",
		Title:   "Payment Verified",
		Message: fmt.Sprintf("Payment for order %s has been verified.", o.OrderNumber),
	}

	if !verified {
		input.Type = model.NotificationError
		input.Title = "Payment Rejected"
		input.Message = fmt.Sprintf("Payment for order %s was rejected.", o.OrderNumber)
		if notes != "" {
			input.Message += " Reason: " + notes
		}
	}

	d.Dispatch(input)
}

// MergeServerFeed вливает серверные уведомления в локальную историю без
// дубликатов по идентификатору. Системные уведомления при этом не
// показываются: записи уже были доставлены сервером.
func (d *Dispatcher) MergeServerFeed(items []model.Notification) int {
	var inserted int
	for i := len(items) - 1; i >= 0; i-- {
		if d.store.Insert(items[i]) {
			inserted++
		}
	}
	return inserted
}
