package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetDisplay(t *testing.T) {
	testCases := []struct {
		name     string
		amount   float64
		currency string
		expected string
	}{
		{"millions", 2500000, "INR", "INR 2.5M"},
		{"thousands", 45000, "INR", "INR 45.0K"},
		{"small amount", 500, "INR", "INR 500"},
		{"exact million", 1000000, "INR", "INR 1.0M"},
		{"exact thousand", 1000, "INR", "INR 1.0K"},
		{"zero", 0, "INR", "INR 0"},
		{"fractional small", 999.5, "INR", "INR 999.5"},
		{"other currency", 1800000, "USD", "USD 1.8M"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BudgetDisplay(tc.amount, tc.currency))
		})
	}
}

func TestFormatPSRID(t *testing.T) {
	assert.Equal(t, "REQ-001", FormatPSRID(1))
	assert.Equal(t, "REQ-042", FormatPSRID(42))
	assert.Equal(t, "REQ-999", FormatPSRID(999))
	assert.Equal(t, "REQ-1000", FormatPSRID(1000))
}

func TestStatusKnown(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusInProgress} {
		assert.True(t, s.Known(), string(s))
	}

	assert.False(t, Status("archived").Known())
	assert.False(t, Status("").Known())
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 3, PriorityHigh.Rank())
	assert.Equal(t, 2, PriorityMedium.Rank())
	assert.Equal(t, 1, PriorityLow.Rank())
	assert.Equal(t, 0, Priority("urgent").Rank())
}

func TestRoleKnown(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleProcurement, RoleRequestor, RoleGuest} {
		assert.True(t, r.Known(), string(r))
	}

	assert.False(t, Role("superuser").Known())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestPasswordHashing(t *testing.T) {
	hash := HashPassword("s3cret-pass")
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-pass", hash)

	user := User{Password: hash}
	assert.True(t, user.VerifyPassword("s3cret-pass"))
	assert.False(t, user.VerifyPassword("wrong"))
}

func TestHistoryLogScanRoundtrip(t *testing.T) {
	log := HistoryLog{
		{Action: "created", UserID: 1, UserName: "Alice", Details: "PSR created as draft"},
		{Action: "submitted", UserID: 1, UserName: "Alice"},
	}

	value, err := log.Value()
	require.NoError(t, err)

	var decoded HistoryLog
	require.NoError(t, decoded.Scan(value))

	require.Len(t, decoded, 2)
	assert.Equal(t, "created", decoded[0].Action)
	assert.Equal(t, "Alice", decoded[1].UserName)
}
