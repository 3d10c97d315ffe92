package domain

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		page, limit string
		want        PageRequest
	}{
		{"", "", PageRequest{Page: 1, Limit: 20}},
		{"3", "10", PageRequest{Page: 3, Limit: 10}},
		{"abc", "x", PageRequest{Page: 1, Limit: 20}},
		{"0", "-5", PageRequest{Page: 1, Limit: 20}},
		{"2", "1000", PageRequest{Page: 2, Limit: 100}},
		{"100000000000000001", "100", PageRequest{Page: math.MaxInt32 / 100, Limit: 100}},
		{"99999999999999999999", "", PageRequest{Page: 1, Limit: 20}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPageRequest(tt.page, tt.limit), "page=%q limit=%q", tt.page, tt.limit)
	}
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 3, Limit: 20}.Offset())

	huge := NewPageRequest("9223372036854775807", "1")
	assert.GreaterOrEqual(t, huge.Offset(), 0)
	assert.LessOrEqual(t, huge.Offset(), math.MaxInt32)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		req   PageRequest
		total int
		want  Pagination
	}{
		{"empty", PageRequest{1, 20}, 0, Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, Limit: 20}},
		{"exact pages", PageRequest{1, 5}, 10, Pagination{CurrentPage: 1, TotalPages: 2, TotalItems: 10, Limit: 5, HasMore: true}},
		{"last page", PageRequest{2, 5}, 10, Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 10, Limit: 5}},
		{"partial page", PageRequest{1, 20}, 21, Pagination{CurrentPage: 1, TotalPages: 2, TotalItems: 21, Limit: 20, HasMore: true}},
		{"past the end", PageRequest{9, 20}, 21, Pagination{CurrentPage: 9, TotalPages: 2, TotalItems: 21, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.req, tt.total))
		})
	}
}

func TestCanAccess(t *testing.T) {
	owner := uuid.New()
	assert.True(t, CanAccess(owner, owner))
	assert.False(t, CanAccess(uuid.New(), owner))
	assert.False(t, CanAccess(uuid.Nil, uuid.Nil))
}

func TestCanAccessTransaction(t *testing.T) {
	actor := uuid.New()
	other := uuid.New()
	assert.True(t, canAccessTransaction(actor, &actor, nil))
	assert.True(t, canAccessTransaction(actor, nil, &actor))
	assert.True(t, canAccessTransaction(actor, &other, &actor))
	assert.False(t, canAccessTransaction(actor, &other, &other))
	assert.False(t, canAccessTransaction(actor, nil, nil))
}

func TestAccountStatusTransitions(t *testing.T) {
	assert.True(t, AccountStatusActive.CanTransitionTo(AccountStatusFrozen))
	assert.True(t, AccountStatusFrozen.CanTransitionTo(AccountStatusActive))
	assert.True(t, AccountStatusSuspended.CanTransitionTo(AccountStatusClosed))
	assert.False(t, AccountStatusClosed.CanTransitionTo(AccountStatusActive))
	assert.False(t, AccountStatusActive.CanTransitionTo(AccountStatus("DORMANT")))
}

func TestTransactionTypeCategory(t *testing.T) {
	assert.Equal(t, TransactionCategoryCredit, TransactionTypeDeposit.Category())
	assert.Equal(t, TransactionCategoryCredit, TransactionTypeTransferIn.Category())
	assert.Equal(t, TransactionCategoryDebit, TransactionTypeWithdrawal.Category())
	assert.Equal(t, TransactionCategoryDebit, TransactionTypeTransferOut.Category())
}
