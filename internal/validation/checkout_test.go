package validation

import (
	"errors"
	"testing"
)

func TestValidatePlayerID(t *testing.T) {
	tests := []struct {
		name     string
		playerID string
		wantErr  error
	}{
		{"valid", "12345678", nil},
		{"minimum length", "123", nil},
		{"too short", "12", ErrPlayerIDTooShort},
		{"whitespace only", "   ", ErrPlayerIDTooShort},
		{"padded short id", " 12 ", ErrPlayerIDTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePlayerID(tt.playerID); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePlayerID(%q) = %v, want %v", tt.playerID, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransactionID(t *testing.T) {
	tests := []struct {
		name          string
		transactionID string
		wantErr       error
	}{
		{"valid", "TX123456", nil},
		{"minimum length", "TX123", nil},
		{"too short", "TX12", ErrTransactionIDTooShort},
		{"empty", "", ErrTransactionIDTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateTransactionID(tt.transactionID); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTransactionID(%q) = %v, want %v", tt.transactionID, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePaymentMethod(t *testing.T) {
	for _, method := range []string{"bkash", "nagad", "rocket", "rupantorpay"} {
		if err := ValidatePaymentMethod(method); err != nil {
			t.Errorf("ValidatePaymentMethod(%q) = %v, want nil", method, err)
		}
	}

	for _, method := range []string{"", "paypal", "BKASH"} {
		if err := ValidatePaymentMethod(method); !errors.Is(err, ErrUnknownPaymentMethod) {
			t.Errorf("ValidatePaymentMethod(%q) = %v, want ErrUnknownPaymentMethod", method, err)
		}
	}
}

func TestValidateProofFile(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{"png", "image/png", 1 << 20, nil},
		{"jpeg", "image/jpeg", 1 << 20, nil},
		{"webp at limit", "image/webp", 5 << 20, nil},
		{"gif rejected", "image/gif", 1 << 20, ErrProofType},
		{"pdf rejected", "application/pdf", 1 << 20, ErrProofType},
		{"oversized", "image/png", 5<<20 + 1, ErrProofTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateProofFile(tt.contentType, tt.size); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProofFile(%q, %d) = %v, want %v", tt.contentType, tt.size, err, tt.wantErr)
			}
		})
	}
}
