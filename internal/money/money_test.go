package money

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator(ms int64) *Generator {
	return NewGeneratorWith(
		func() time.Time { return time.UnixMilli(ms) },
		bytes.NewReader(bytes.Repeat([]byte{0x5a}, 4096)),
	)
}

func splitReference(t *testing.T, ref string) (string, int64, string) {
	t.Helper()
	parts := strings.Split(ref, "|")
	require.Len(t, parts, 3, "reference %q", ref)
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	return parts[0], ms, parts[2]
}

func TestTransactionReference(t *testing.T) {
	g := fixedGenerator(1718000000000)

	ref := g.TransactionReference()

	prefix, ms, suffix := splitReference(t, ref)
	assert.Equal(t, TransactionPrefix, prefix)
	assert.Equal(t, int64(1718000000000), ms)
	assert.Len(t, suffix, 9)
}

func TestTransferReference(t *testing.T) {
	g := fixedGenerator(1718000000123)

	ref := g.TransferReference()

	prefix, ms, suffix := splitReference(t, ref)
	assert.Equal(t, TransferPrefix, prefix)
	assert.Equal(t, int64(1718000000123), ms)
	assert.Len(t, suffix, 16)
	for _, c := range suffix {
		assert.Contains(t, base36Alphabet, string(c))
	}
}

func TestReferencesAreUnique(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		ref := g.TransactionReference()
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s", ref)
		seen[ref] = struct{}{}
	}
}

func TestAccountNumber(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 100; i++ {
		n := g.AccountNumber()
		assert.True(t, IsAccountNumber(n), "not a valid account number: %q", n)
	}
}

func TestIsAccountNumber(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1234567890", true},
		{"0000000001", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAccountNumber(tt.input), "IsAccountNumber(%q)", tt.input)
	}
}

func TestNumberMarshalJSON(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"150.5", `{"v":150.5}`},
		{"100.50", `{"v":100.5}`},
		{"0", `{"v":0}`},
		{"12345678901234.99", `{"v":12345678901234.99}`},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.value)
		out, err := json.Marshal(struct {
			V Number `json:"v"`
		}{V: NewNumber(d)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(out))
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "150.50", Format(decimal.RequireFromString("150.5")))
	assert.Equal(t, "0.00", Format(decimal.Zero))
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"100.50", false},
		{"0.01", false},
		{"1", false},
		{"0", true},
		{"-5", true},
		{"10.001", true},
		{"9999999999999999.99", false},
		{"10000000000000000", true},
		{"100000000000000000000", true},
	}
	for _, tt := range tests {
		err := ValidateAmount(decimal.RequireFromString(tt.value))
		if tt.wantErr {
			assert.Error(t, err, "value %s", tt.value)
		} else {
			assert.NoError(t, err, "value %s", tt.value)
		}
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(MaxAmount))
	assert.False(t, InRange(MaxAmount.Add(decimal.RequireFromString("0.01"))))
}
