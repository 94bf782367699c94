// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"strings"

	"github.com/nrxshop/storefront-system/internal/model"
)

// ErrPlayerIDTooShort возвращается для игрового идентификатора короче трёх символов.
var (
	ErrPlayerIDTooShort = errors.New("player id must be at least 3 characters")
	// ErrTransactionIDTooShort возвращается для идентификатора транзакции короче пяти символов.
	ErrTransactionIDTooShort = errors.New("transaction id must be at least 5 characters")
	// ErrUnknownPaymentMethod возвращается для неподдерживаемого способа оплаты.
	ErrUnknownPaymentMethod = errors.New("unsupported payment method")
	// ErrProofType возвращается для недопустимого типа файла подтверждения оплаты.
	ErrProofType = errors.New("payment proof must be a jpeg, png or webp image")
	// ErrProofTooLarge возвращается для файла подтверждения больше пяти мегабайт.
	ErrProofTooLarge = errors.New("payment proof must be at most 5 MB")
)

const maxProofSize = 5 << 20

// ValidatePlayerID проверяет игровой идентификатор получателя.
func ValidatePlayerID(playerID string) error {
	if len(strings.TrimSpace(playerID)) < 3 {
		return ErrPlayerIDTooShort
	}
	return nil
}

// ValidateTransactionID проверяет идентификатор платёжной транзакции.
func ValidateTransactionID(transactionID string) error {
	if len(strings.TrimSpace(transactionID)) < 5 {
		return ErrTransactionIDTooShort
	}
	return nil
}

// ValidatePaymentMethod проверяет принадлежность способа оплаты к допустимым.
func ValidatePaymentMethod(method string) error {
	for _, m := range model.PaymentMethods {
		if string(m) == method {
			return nil
		}
	}
	return ErrUnknownPaymentMethod
}

// ValidateProofFile проверяет тип и размер файла подтверждения оплаты до
// какой-либо загрузки в сеть.
func ValidateProofFile(contentType string, size int64) error {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return ErrProofType
	}
	if size > maxProofSize {
		return ErrProofTooLarge
	}
	return nil
}
