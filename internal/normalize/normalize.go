// Package normalize приводит ответы бэкенда к каноническому виду заказа.
//
// Бэкенд исторически отдаёт поля заказа и в snake_case, и в camelCase,
// иногда одновременно. Нормализация применяет фиксированный приоритет:
// camelCase-алиас важнее snake_case, при отсутствии обоих подставляется
// типизированное значение по умолчанию. Функции пакета тотальны: на любом
// входе они не паникуют, а идемпотентность гарантирует, что повторная
// нормализация канонической записи не меняет её.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nrxshop/storefront-system/internal/model"
)

// Order приводит произвольный объект заказа к канонической записи.
func Order(raw map[string]any) model.Order {
	if raw == nil {
		raw = map[string]any{}
	}

	o := model.Order{
		ID:     stringField(raw, "", "id"),
		UserID: stringField(raw, "", "userId", "user_id"),

		ProductID:   stringField(raw, "", "productId", "product_id"),
		ProductName: stringField(raw, "Unknown Product", "productName", "product_name"),
		GameName:    stringField(raw, "Unknown Game", "gameName", "game_name"),
		Diamonds:    numberOrLabel(raw, "0", "diamonds"),
		Quantity:    intField(raw, 1, "quantity"),
		UnitPrice:   floatField(raw, 0, "unitPrice", "unit_price"),
		TotalAmount: floatField(raw, 0, "totalAmount", "total_amount", "price"),
		Currency:    stringField(raw, "BDT", "currency"),

		PlayerID:   stringField(raw, "", "playerId", "player_id", "gameId", "game_id"),
		PlayerName: stringField(raw, "", "playerName", "player_name"),
		ServerID:   stringField(raw, "", "serverId", "server_id"),

		ContactEmail: stringField(raw, "", "contactEmail", "contact_email", "userEmail", "user_email"),
		ContactPhone: stringField(raw, "", "contactPhone", "contact_phone", "phoneNumber", "phone_number"),
		UserName:     stringField(raw, "Unknown User", "userName", "user_name"),

		PaymentMethod:   stringField(raw, "Unknown", "paymentMethod", "payment_method"),
		PaymentAccount:  stringField(raw, "", "paymentAccount", "payment_account"),
		TransactionID:   stringField(raw, "", "transactionId", "transaction_id"),
		PaymentProofURL: stringField(raw, "", "paymentProofUrl", "payment_proof_url"),

		Status: model.OrderStatus(stringField(raw, "pending", "status")),

		VerificationStatus: model.VerificationStatus(stringField(raw, "pending", "verificationStatus", "verification_status")),
		VerificationNotes:  stringField(raw, "", "verificationNotes", "verification_notes"),
		VerifiedBy:         stringField(raw, "", "verifiedBy", "verified_by"),
		VerifiedAt:         timePtrField(raw, "verifiedAt", "verified_at"),

		DeliveryStatus: model.DeliveryStatus(stringField(raw, "", "deliveryStatus", "delivery_status")),
		DeliveryNotes:  stringField(raw, "", "deliveryNotes", "delivery_notes"),
		DeliveredAt:    timePtrField(raw, "deliveredAt", "delivered_at"),

		Notes:      stringField(raw, "", "notes"),
		AdminNotes: stringField(raw, "", "adminNotes", "admin_notes"),

		CreatedAt:   timeField(raw, "createdAt", "created_at"),
		UpdatedAt:   timeField(raw, "updatedAt", "updated_at"),
		CompletedAt: timePtrField(raw, "completedAt", "completed_at"),
	}

	o.OrderNumber = stringField(raw, "", "orderNumber", "order_number")
	if o.OrderNumber == "" {
		o.OrderNumber = DeriveOrderNumber(o.ID)
	}

	return o
}

// Orders нормализует последовательность заказов. Вход, не являющийся
// массивом, трактуется как пустой результат и логируется.
func Orders(raw any, logger *zap.Logger) []model.Order {
	if logger == nil {
		logger = zap.NewNop()
	}

	items, ok := raw.([]any)
	if !ok {
		if typed, isTyped := raw.([]map[string]any); isTyped {
			res := make([]model.Order, 0, len(typed))
			for _, m := range typed {
				res = append(res, Order(m))
			}
			return res
		}
		if raw != nil {
			logger.Warn("normalize orders: input is not an array")
		}
		return []model.Order{}
	}

	res := make([]model.Order, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		res = append(res, Order(m))
	}
	return res
}

// DeriveOrderNumber выводит номер заказа из идентификатора: первые восемь
// символов в верхнем регистре.
func DeriveOrderNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func stringField(raw map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := asString(raw[k]); ok && s != "" {
			return s
		}
	}
	return def
}

// numberOrLabel принимает числовое значение либо символьную метку тарифа.
func numberOrLabel(raw map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		v := raw[k]
		if s, ok := asString(v); ok && s != "" {
			return s
		}
		if f, ok := asFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return def
}

func intField(raw map[string]any, def int, keys ...string) int {
	for _, k := range keys {
		if f, ok := asFloat(raw[k]); ok && f != 0 {
			return int(f)
		}
	}
	return def
}

func floatField(raw map[string]any, def float64, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := asFloat(raw[k]); ok && f != 0 {
			return f
		}
	}
	return def
}

func timeField(raw map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		if t, ok := asTime(raw[k]); ok {
			return t
		}
	}
	return time.Time{}
}

func timePtrField(raw map[string]any, keys ...string) *time.Time {
	for _, k := range keys {
		if t, ok := asTime(raw[k]); ok {
			return &t
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
