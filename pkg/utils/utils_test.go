package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ==================== MONEY ====================

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 59.97, LineTotal(19.99, 3))
	assert.Equal(t, 0.0, LineTotal(12.5, 0))
}

func TestSumAmounts_NoFloatDrift(t *testing.T) {
	assert.Equal(t, 0.3, SumAmounts(0.1, 0.2))
	assert.Equal(t, 200.0, SumAmounts(120, 80))
	assert.Equal(t, 0.0, SumAmounts())
}

func TestApplyPercentDiscount(t *testing.T) {
	tests := []struct {
		total, pct      float64
		discount, after float64
	}{
		{200, 10, 20, 180},
		{99.99, 15, 15, 84.99},
		{50, 100, 50, 0},
		{10.01, 33, 3.3, 6.71},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v@%v%%", tt.total, tt.pct), func(t *testing.T) {
			discount, after := ApplyPercentDiscount(tt.total, tt.pct)
			assert.Equal(t, tt.discount, discount)
			assert.Equal(t, tt.after, after)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "180.00", FormatAmount(180))
	assert.Equal(t, "19.99", FormatAmount(19.99))
}

func TestToPaisa(t *testing.T) {
	assert.Equal(t, int64(18000), ToPaisa(180))
	assert.Equal(t, int64(1999), ToPaisa(19.99))
	assert.Equal(t, int64(30), ToPaisa(SumAmounts(0.1, 0.2)))
}

// ==================== JWT ====================

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	userID := primitive.NewObjectID().Hex()

	token, exp, err := tokens.Generate(userID, "Gita", "gita@example.com", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "Gita", claims.Name)
	assert.Equal(t, "gita@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	token, _, err := tokens.Generate(primitive.NewObjectID().Hex(), "Gita", "gita@example.com", "user")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour).Parse(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		stale := NewTokenManager("secret", time.Hour)
		stale.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := stale.Generate(primitive.NewObjectID().Hex(), "Gita", "gita@example.com", "user")
		require.NoError(t, err)

		_, err = tokens.Parse(old)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.jwt")
		assert.Error(t, err)
	})
}

// ==================== VALIDATION ====================

type checkoutForm struct {
	Phone   string `json:"phone" validate:"required,mobile"`
	OrderID string `json:"orderId" validate:"required,objectid"`
	Status  string `json:"status" validate:"omitempty,oneof=Processing Shipped"`
}

func TestValidateStruct(t *testing.T) {
	valid := checkoutForm{Phone: "+9779812345678", OrderID: primitive.NewObjectID().Hex()}
	assert.Empty(t, ValidateStruct(valid))

	errs := ValidateStruct(checkoutForm{Phone: "98-12", OrderID: "xyz", Status: "Lost"})
	assert.Equal(t, map[string]string{
		"phone":   "Invalid phone number",
		"orderId": "Must be a valid id",
		"status":  "Must be one of: Processing, Shipped",
	}, errs)

	errs = ValidateStruct(&checkoutForm{})
	assert.Equal(t, "This field is required", errs["phone"])
	assert.Equal(t, "This field is required", errs["orderId"])
}

func TestFormatValidationErrors(t *testing.T) {
	out := FormatValidationErrors(map[string]string{"phone": "Invalid phone number", "email": "Invalid email format"})
	assert.Equal(t, "email: Invalid email format; phone: Invalid phone number", out)
}

// ==================== ERRORS ====================

func TestAppError_Status(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrValidation("x").Status())
	assert.Equal(t, http.StatusNotFound, ErrNotFound("x").Status())
	assert.Equal(t, http.StatusUnauthorized, ErrUnauthorized("x").Status())
	assert.Equal(t, http.StatusForbidden, ErrForbidden("x").Status())
	assert.Equal(t, http.StatusConflict, ErrConflict("x").Status())
	assert.Equal(t, http.StatusBadGateway, ErrUpstream("x", nil).Status())
	assert.Equal(t, http.StatusInternalServerError, ErrInternal("x", nil).Status())
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("placing order: %w", ErrConflict("Duplicate order"))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.Equal(t, "Duplicate order", AsAppError(wrapped).Message)

	plain := errors.New("mongo: connection reset")
	appErr := AsAppError(plain)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.ErrorIs(t, appErr, plain)
	assert.False(t, IsKind(plain, KindInternal))
}

// ==================== SECRETS ====================

func TestGenerateOTP(t *testing.T) {
	assert.Regexp(t, `^[0-9]{6}$`, GenerateOTP(6))
	assert.Regexp(t, `^[0-9]{6}$`, GenerateOTP(0))
	assert.Len(t, GenerateOTP(8), 8)
}

func TestGenerateResetToken(t *testing.T) {
	raw, hashed, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, raw, 64)
	assert.Equal(t, hashed, HashToken(raw))
	assert.NotEqual(t, raw, hashed)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}
