package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/nrxshop/storefront-system/internal/model"
)

func pendingOrder() model.Order {
	return model.Order{
		ID:                 "order-1",
		OrderNumber:        "ORDER-1",
		Status:             model.OrderStatusPending,
		VerificationStatus: model.VerificationPending,
		DeliveryStatus:     model.DeliveryPending,
	}
}

func TestCancel_OnlyFromPending(t *testing.T) {
	now := time.Now()

	o, err := Cancel(pendingOrder(), now)
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if o.Status != model.OrderStatusCancelled {
		t.Fatalf("status = %q, want cancelled", o.Status)
	}

	for _, status := range []model.OrderStatus{
		model.OrderStatusProcessing,
		model.OrderStatusCompleted,
		model.OrderStatusCancelled,
		model.OrderStatusFailed,
	} {
		in := pendingOrder()
		in.Status = status

		got, err := Cancel(in, now)
		if !errors.Is(err, ErrNotCancellable) {
			t.Fatalf("cancel from %q: err = %v, want ErrNotCancellable", status, err)
		}
		if got != in {
			t.Fatalf("rejected cancel must leave the order unchanged")
		}
	}
}

func TestVerify_GatesProcessing(t *testing.T) {
	now := time.Now()

	o, err := Verify(pendingOrder(), "admin", "looks good", now)
	if err != nil {
		t.Fatalf("verify pending: %v", err)
	}
	if o.Status != model.OrderStatusProcessing {
		t.Fatalf("status = %q, want processing", o.Status)
	}
	if o.VerificationStatus != model.VerificationVerified {
		t.Fatalf("verification = %q, want verified", o.VerificationStatus)
	}
	if o.VerifiedBy != "admin" || o.VerifiedAt == nil {
		t.Fatalf("verifier metadata not recorded: %+v", o)
	}

	in := pendingOrder()
	in.Status = model.OrderStatusProcessing
	if _, err := Verify(in, "admin", "", now); !errors.Is(err, ErrNotPending) {
		t.Fatalf("verify processing: err = %v, want ErrNotPending", err)
	}

	in.Status = model.OrderStatusCompleted
	if _, err := Verify(in, "admin", "", now); !errors.Is(err, ErrTerminal) {
		t.Fatalf("verify completed: err = %v, want ErrTerminal", err)
	}
}

func TestReject_CancelsOrder(t *testing.T) {
	o, err := Reject(pendingOrder(), "admin", "blurry screenshot", time.Now())
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if o.VerificationStatus != model.VerificationRejected {
		t.Fatalf("verification = %q, want rejected", o.VerificationStatus)
	}
	if o.Status != model.OrderStatusCancelled {
		t.Fatalf("status = %q, want cancelled", o.Status)
	}
	if o.VerificationNotes != "blurry screenshot" {
		t.Fatalf("notes = %q", o.VerificationNotes)
	}
}

func TestDeliver_RequiresVerifiedProcessing(t *testing.T) {
	now := time.Now()

	verified, err := Verify(pendingOrder(), "admin", "", now)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	done, err := Deliver(verified, "sent in game", now)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if done.Status != model.OrderStatusCompleted {
		t.Fatalf("status = %q, want completed", done.Status)
	}
	if done.DeliveryStatus != model.DeliveryDelivered || done.DeliveredAt == nil {
		t.Fatalf("delivery state not recorded: %+v", done)
	}
	if done.CompletedAt == nil {
		t.Fatal("completedAt must be set on completion")
	}

	if _, err := Deliver(pendingOrder(), "", now); !errors.Is(err, ErrNotProcessing) {
		t.Fatalf("deliver pending: err = %v, want ErrNotProcessing", err)
	}

	unverified := pendingOrder()
	unverified.Status = model.OrderStatusProcessing
	if _, err := Deliver(unverified, "", now); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("deliver unverified: err = %v, want ErrNotVerified", err)
	}
}

func TestDeliver_CompletedAtSetOnce(t *testing.T) {
	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	verified, _ := Verify(pendingOrder(), "admin", "", first)
	verified.CompletedAt = &first

	done, err := Deliver(verified, "", time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if !done.CompletedAt.Equal(first) {
		t.Fatalf("completedAt must not change once set: %v", done.CompletedAt)
	}
}

func TestAttachProof_RulesAndOverwrite(t *testing.T) {
	now := time.Now()

	o, err := AttachProof(pendingOrder(), "https://img.example/proof1.png", now)
	if err != nil {
		t.Fatalf("attach to pending: %v", err)
	}

	// Повторная загрузка заменяет предыдущее подтверждение.
	o, err = AttachProof(o, "https://img.example/proof2.png", now)
	if err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if o.PaymentProofURL != "https://img.example/proof2.png" {
		t.Fatalf("proof url = %q", o.PaymentProofURL)
	}

	processing := pendingOrder()
	processing.Status = model.OrderStatusProcessing
	if _, err := AttachProof(processing, "https://img.example/p.png", now); err != nil {
		t.Fatalf("attach to processing: %v", err)
	}

	completed := pendingOrder()
	completed.Status = model.OrderStatusCompleted
	if _, err := AttachProof(completed, "https://img.example/p.png", now); !errors.Is(err, ErrProofNotAllowed) {
		t.Fatalf("attach to completed: err = %v, want ErrProofNotAllowed", err)
	}
}

func TestFail_FromActiveStates(t *testing.T) {
	now := time.Now()

	o, err := Fail(pendingOrder(), "player id not found", now)
	if err != nil {
		t.Fatalf("fail pending: %v", err)
	}
	if o.Status != model.OrderStatusFailed || o.DeliveryStatus != model.DeliveryFailed {
		t.Fatalf("unexpected state: %+v", o)
	}

	completed := pendingOrder()
	completed.Status = model.OrderStatusCompleted
	if _, err := Fail(completed, "", now); !errors.Is(err, ErrTerminal) {
		t.Fatalf("fail completed: err = %v, want ErrTerminal", err)
	}
}
