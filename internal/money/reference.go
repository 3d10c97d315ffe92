package money

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	// TransactionPrefix marks the per-row reference of a ledger entry.
	TransactionPrefix = "TRF"

	// TransferPrefix marks the reference shared by both legs of a transfer.
	TransferPrefix = "Trx"

	// AccountNumberLength is the fixed length of an account number.
	AccountNumberLength = 10

	transactionRandLen = 9
	transferRandLen    = 16
	base36Alphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Generator produces references and account numbers.
// A timestamp component is combined with a random base36 suffix so that
// collisions within the same millisecond are negligible.
type Generator struct {
	now  func() time.Time
	rand io.Reader
}

// NewGenerator creates a Generator backed by crypto/rand and the wall clock.
func NewGenerator() *Generator {
	return &Generator{
		now:  time.Now,
		rand: rand.Reader,
	}
}

// NewGeneratorWith creates a Generator with an explicit clock and random source.
func NewGeneratorWith(now func() time.Time, random io.Reader) *Generator {
	return &Generator{now: now, rand: random}
}

// TransactionReference returns a reference like "TRF|1718000000000|k3j9x0a1b".
func (g *Generator) TransactionReference() string {
	return g.reference(TransactionPrefix, transactionRandLen)
}

// TransferReference returns a reference like "Trx|1718000000000|0a1b2c3d4e5f6g7h".
func (g *Generator) TransferReference() string {
	return g.reference(TransferPrefix, transferRandLen)
}

// AccountNumber returns a 10-digit account number. Leading zeros are allowed.
func (g *Generator) AccountNumber() string {
	var sb strings.Builder
	sb.Grow(AccountNumberLength)
	for sb.Len() < AccountNumberLength {
		sb.WriteByte('0' + byte(g.randInt(10)))
	}
	return sb.String()
}

func (g *Generator) reference(prefix string, n int) string {
	ts := strconv.FormatInt(g.now().UnixMilli(), 10)

	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(base36Alphabet[g.randInt(len(base36Alphabet))])
	}

	return fmt.Sprintf("%s|%s|%s", prefix, ts, sb.String())
}

func (g *Generator) randInt(max int) int {
	n, err := rand.Int(g.rand, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms
		panic(fmt.Sprintf("money: failed to read random source: %v", err))
	}
	return int(n.Int64())
}

// IsAccountNumber reports whether s is a well-formed account number.
func IsAccountNumber(s string) bool {
	if len(s) != AccountNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
