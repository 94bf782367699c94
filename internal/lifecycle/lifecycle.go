// Package lifecycle реализует конечный автомат жизненного цикла заказа.
//
// Статус заказа и статус проверки оплаты ведутся одним автоматом: проверка
// не отдельное изменяемое поле, а охранное условие перехода
// pending → processing. Это исключает рассинхронизацию двух полей.
package lifecycle

import (
	"errors"
	"time"

	"github.com/nrxshop/storefront-system/internal/model"
)

// ErrNotCancellable возвращается при попытке отменить заказ не в статусе pending.
var (
	ErrNotCancellable = errors.New("order can only be cancelled while pending")
	// ErrNotPending возвращается, если проверка оплаты применяется к заказу вне статуса pending.
	ErrNotPending = errors.New("order is not pending verification")
	// ErrNotVerified возвращается при попытке завершить заказ без подтверждённой оплаты.
	ErrNotVerified = errors.New("payment is not verified")
	// ErrNotProcessing возвращается при попытке доставки заказа вне статуса processing.
	ErrNotProcessing = errors.New("order is not processing")
	// ErrTerminal возвращается при попытке изменить заказ в конечном статусе.
	ErrTerminal = errors.New("order is in a terminal state")
	// ErrProofNotAllowed возвращается при загрузке подтверждения оплаты в недопустимом статусе.
	ErrProofNotAllowed = errors.New("payment proof is no longer accepted")
)

// CanCancel сообщает, может ли покупатель отменить заказ.
func CanCancel(o model.Order) bool {
	return o.Status == model.OrderStatusPending
}

// Cancel переводит заказ pending → cancelled по инициативе покупателя.
func Cancel(o model.Order, now time.Time) (model.Order, error) {
	if !CanCancel(o) {
		return o, ErrNotCancellable
	}
	o.Status = model.OrderStatusCancelled
	o.UpdatedAt = now
	return o, nil
}

// Verify подтверждает оплату и переводит заказ pending → processing.
func Verify(o model.Order, admin, notes string, now time.Time) (model.Order, error) {
	if o.Status.Terminal() {
		return o, ErrTerminal
	}
	if o.Status != model.OrderStatusPending {
		return o, ErrNotPending
	}

	o.VerificationStatus = model.VerificationVerified
	o.VerificationNotes = notes
	o.VerifiedBy = admin
	o.VerifiedAt = &now
	o.Status = model.OrderStatusProcessing
	o.DeliveryStatus = model.DeliveryProcessing
	o.UpdatedAt = now
	return o, nil
}

// Reject отклоняет подтверждение оплаты и отменяет заказ.
func Reject(o model.Order, admin, notes string, now time.Time) (model.Order, error) {
	if o.Status.Terminal() {
		return o, ErrTerminal
	}
	if o.Status != model.OrderStatusPending {
		return o, ErrNotPending
	}

	o.VerificationStatus = model.VerificationRejected
	o.VerificationNotes = notes
	o.VerifiedBy = admin
	o.VerifiedAt = &now
	o.Status = model.OrderStatusCancelled
	o.UpdatedAt = now
	return o, nil
}

// Deliver фиксирует завершение доставки: processing → completed.
// CompletedAt устанавливается один раз и далее не меняется.
func Deliver(o model.Order, notes string, now time.Time) (model.Order, error) {
	if o.Status != model.OrderStatusProcessing {
		return o, ErrNotProcessing
	}
	if o.VerificationStatus != model.VerificationVerified {
		return o, ErrNotVerified
	}

	o.Status = model.OrderStatusCompleted
	o.DeliveryStatus = model.DeliveryDelivered
	o.DeliveryNotes = notes
	o.DeliveredAt = &now
	if o.CompletedAt == nil {
		o.CompletedAt = &now
	}
	o.UpdatedAt = now
	return o, nil
}

// Fail переводит заказ в статус failed при неуспешной доставке.
func Fail(o model.Order, notes string, now time.Time) (model.Order, error) {
	if o.Status.Terminal() {
		return o, ErrTerminal
	}

	o.Status = model.OrderStatusFailed
	o.DeliveryStatus = model.DeliveryFailed
	o.DeliveryNotes = notes
	o.UpdatedAt = now
	return o, nil
}

// AttachProof прикрепляет подтверждение оплаты. Повторная загрузка заменяет
// предыдущее; после выхода заказа из pending/processing загрузка запрещена.
func AttachProof(o model.Order, proofURL string, now time.Time) (model.Order, error) {
	if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusProcessing {
		return o, ErrProofNotAllowed
	}

	o.PaymentProofURL = proofURL
	o.UpdatedAt = now
	return o, nil
}
