package dto

import (
	"testing"

	"revpay/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ParseAmount tests ---

func TestParseAmount_Valid(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"50.00", "50.00"},
		{"1", "1"},
		{"0.5", "0.5"},
		{"10000.00", "10000.00"},
		{"  25.75  ", "25.75"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.raw)
		require.NoError(t, err, "input: %q", tc.raw)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "input: %q got %s", tc.raw, got)
	}
}

func TestParseAmount_NotADecimal(t *testing.T) {
	cases := []string{
		"fifty",
		"50,00",
		"",
		"50.00.00",
		"$50",
	}
	for _, tc := range cases {
		_, err := ParseAmount(tc)
		require.Error(t, err, "input: %q", tc)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VAL_000", appErr.Code)
	}
}

func TestParseAmount_TooPrecise(t *testing.T) {
	_, err := ParseAmount("50.001")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_000", appErr.Code)
	assert.Contains(t, appErr.Message, "precision")
}

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username: "  alice  ",
		Password: "  pass1234  ",
		FullName: " Alice Example ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
	assert.Equal(t, "Alice Example", req.FullName)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	note := "dinner <script>alert('x')</script> split"
	req := TransferRequest{
		Recipient: "bob",
		Amount:    "25.00",
		Pin:       "1234",
		Note:      &note,
	}
	SanitizeStruct(&req)

	assert.Contains(t, *req.Note, "&lt;script&gt;")
	assert.NotContains(t, *req.Note, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	note := "  lunch  "
	req := TransferRequest{
		Recipient: "bob",
		Amount:    "10.00",
		Pin:       "1234",
		Note:      &note,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "lunch", *req.Note)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := TransferRequest{
		Recipient: "bob",
		Amount:    "10.00",
		Pin:       "1234",
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.Note)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"TXN-001",
		"txn_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"txn 001",     // space
		"txn<001>",    // angle brackets
		"txn;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"txn\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
