package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/memory"
	"github.com/thablackcodes/gresh-finance/internal/money"
)

type recordingPublisher struct {
	events chan *domain.Transaction
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan *domain.Transaction, 16)}
}

func (p *recordingPublisher) PublishTransactionCompleted(_ context.Context, tx *domain.Transaction) error {
	select {
	case p.events <- tx:
	default:
	}
	return nil
}

type failingPublisher struct{}

func (failingPublisher) PublishTransactionCompleted(context.Context, *domain.Transaction) error {
	return errors.New("broker unavailable")
}

type ledgerFixture struct {
	store     *memory.Store
	ledger    *domain.LedgerService
	publisher *recordingPublisher
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	publisher := newRecordingPublisher()
	logger, _ := test.NewNullLogger()

	return &ledgerFixture{
		store:     store,
		publisher: publisher,
		ledger: domain.NewLedgerService(
			store.Accounts(),
			store.Transactions(),
			store.Customers(),
			store,
			money.NewGenerator(),
			publisher,
			logger,
		),
	}
}

func (f *ledgerFixture) customer(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := f.store.Customers().Create(context.Background(), &domain.Customer{
		ID:         id,
		FirstName:  "Ada",
		LastName:   "Obi",
		Email:      id.String() + "@example.com",
		IsActive:   true,
		IsVerified: true,
	})
	require.NoError(t, err)
	return id
}

func (f *ledgerFixture) account(t *testing.T, owner uuid.UUID, number, balance string, status domain.AccountStatus) *domain.Account {
	t.Helper()
	ctx := context.Background()
	acc := domain.NewAccount(owner, number, domain.AccountTypeSavings, domain.DefaultCurrency)
	acc.Status = status
	require.NoError(t, f.store.Accounts().Create(ctx, acc))

	if b := decimal.RequireFromString(balance); b.IsPositive() {
		_, err := f.store.Accounts().AdjustBalance(ctx, acc.ID, b)
		require.NoError(t, err)
	}
	got, err := f.store.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	return got
}

func (f *ledgerFixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Accounts().GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return acc.Balance
}

func (f *ledgerFixture) history(t *testing.T, accountID uuid.UUID) []*domain.Transaction {
	t.Helper()
	txs, _, err := f.store.Transactions().ListByAccount(context.Background(), accountID, 0, 0)
	require.NoError(t, err)
	return txs
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDomainError(t *testing.T, err error, kind domain.ErrorKind, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err), "kind of %v", err)
	msg, ok := domain.MessageOf(err)
	require.True(t, ok, "not a domain error: %v", err)
	assert.Equal(t, message, msg)
}

func TestDeposit_Success(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	acc := f.account(t, owner, "1234567890", "50.00", domain.AccountStatusActive)

	narration := "salary"
	res, err := f.ledger.Deposit(context.Background(), owner, "1234567890", dec("100.50"), &narration)
	require.NoError(t, err)

	assert.True(t, res.Account.BalanceBefore.Equal(dec("50.00")))
	assert.True(t, res.Account.BalanceAfter.Equal(dec("150.50")))
	assert.Equal(t, owner, res.Account.Owner.ID)

	tx := res.Transaction
	assert.Equal(t, domain.TransactionTypeDeposit, tx.Type)
	assert.Equal(t, domain.TransactionCategoryCredit, tx.Category)
	assert.Equal(t, domain.TransactionStatusSuccess, tx.Status)
	assert.True(t, tx.Amount.Equal(dec("100.50")))
	assert.True(t, tx.BalanceAfter.Equal(dec("150.50")))
	assert.Nil(t, tx.FromAccountID)
	require.NotNil(t, tx.ToAccountID)
	assert.Equal(t, acc.ID, *tx.ToAccountID)
	assert.Nil(t, tx.TransferReference)

	assert.True(t, f.balance(t, "1234567890").Equal(dec("150.50")))
	assert.Len(t, f.history(t, acc.ID), 1)
}

func TestDeposit_Preconditions(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	stranger := f.customer(t)
	f.account(t, owner, "1000000001", "10", domain.AccountStatusActive)
	f.account(t, owner, "1000000002", "10", domain.AccountStatusFrozen)

	tests := []struct {
		name    string
		actor   uuid.UUID
		number  string
		amount  string
		kind    domain.ErrorKind
		message string
	}{
		{"missing account", owner, "9999999999", "5", domain.KindNotFound, "Account not found"},
		{"not owner", stranger, "1000000001", "5", domain.KindForbidden, "You don't have permission to deposit to this account"},
		{"frozen account", owner, "1000000002", "5", domain.KindForbidden, "Cannot deposit to FROZEN account"},
		{"zero amount", owner, "1000000001", "0", domain.KindBadRequest, domain.ErrInvalidAmount.Message},
		{"negative amount", owner, "1000000001", "-1", domain.KindBadRequest, domain.ErrInvalidAmount.Message},
		{"three decimals", owner, "1000000001", "1.005", domain.KindBadRequest, domain.ErrInvalidAmount.Message},
		// ownership is checked before status
		{"stranger on frozen", stranger, "1000000002", "5", domain.KindForbidden, "You don't have permission to deposit to this account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Deposit(context.Background(), tt.actor, tt.number, dec(tt.amount), nil)
			assertDomainError(t, err, tt.kind, tt.message)
		})
	}

	assert.True(t, f.balance(t, "1000000001").Equal(dec("10")))
	assert.True(t, f.balance(t, "1000000002").Equal(dec("10")))
}

func TestDeposit_NarrationTooLong(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	f.account(t, owner, "1000000001", "0", domain.AccountStatusActive)

	long := string(make([]byte, domain.MaxNarrationLength+1))
	_, err := f.ledger.Deposit(context.Background(), owner, "1000000001", dec("1"), &long)
	assert.ErrorIs(t, err, domain.ErrNarrationTooLong)
}

func TestDeposit_IsNotIdempotent(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	acc := f.account(t, owner, "1234567890", "0", domain.AccountStatusActive)

	first, err := f.ledger.Deposit(context.Background(), owner, "1234567890", dec("10"), nil)
	require.NoError(t, err)
	second, err := f.ledger.Deposit(context.Background(), owner, "1234567890", dec("10"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.Transaction.Reference, second.Transaction.Reference)
	assert.NotEqual(t, first.Transaction.ID, second.Transaction.ID)
	assert.True(t, f.balance(t, "1234567890").Equal(dec("20")))
	assert.Len(t, f.history(t, acc.ID), 2)
}

func TestWithdraw_Success(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	acc := f.account(t, owner, "1234567890", "100", domain.AccountStatusActive)

	res, err := f.ledger.Withdraw(context.Background(), owner, "1234567890", dec("40.25"), nil)
	require.NoError(t, err)

	assert.True(t, res.Account.BalanceBefore.Equal(dec("100")))
	assert.True(t, res.Account.BalanceAfter.Equal(dec("59.75")))
	tx := res.Transaction
	assert.Equal(t, domain.TransactionTypeWithdrawal, tx.Type)
	assert.Equal(t, domain.TransactionCategoryDebit, tx.Category)
	require.NotNil(t, tx.FromAccountID)
	assert.Equal(t, acc.ID, *tx.FromAccountID)
	assert.Nil(t, tx.ToAccountID)
	assert.True(t, tx.BalanceAfter.Equal(dec("59.75")))
}

func TestWithdraw_FrozenAccount(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	acc := f.account(t, owner, "1234567890", "100", domain.AccountStatusFrozen)

	_, err := f.ledger.Withdraw(context.Background(), owner, "1234567890", dec("50"), nil)
	assertDomainError(t, err, domain.KindForbidden, "Cannot withdraw from FROZEN account")

	assert.True(t, f.balance(t, "1234567890").Equal(dec("100")))
	assert.Empty(t, f.history(t, acc.ID))
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	acc := f.account(t, owner, "1234567890", "30", domain.AccountStatusActive)

	_, err := f.ledger.Withdraw(context.Background(), owner, "1234567890", dec("30.01"), nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	assert.True(t, f.balance(t, "1234567890").Equal(dec("30")))
	assert.Empty(t, f.history(t, acc.ID))
}

func TestWithdraw_ConcurrentOverdraft(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.customer(t)
	acc := f.account(t, owner, "1234567890", "75", domain.AccountStatusActive)

	const workers = 2
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.ledger.Withdraw(context.Background(), owner, "1234567890", dec("75"), nil)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, f.balance(t, "1234567890").IsZero())
	assert.Len(t, f.history(t, acc.ID), 1)
}

func TestTransfer_Success(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	from := f.account(t, alice, "1111111111", "200", domain.AccountStatusActive)
	to := f.account(t, bob, "2222222222", "5", domain.AccountStatusActive)

	narration := "rent"
	res, err := f.ledger.Transfer(context.Background(), alice, "1111111111", "2222222222", dec("120.40"), &narration)
	require.NoError(t, err)

	assert.True(t, res.Sender.BalanceBefore.Equal(dec("200")))
	assert.True(t, res.Sender.BalanceAfter.Equal(dec("79.60")))
	assert.True(t, res.Receiver.BalanceBefore.Equal(dec("5")))
	assert.True(t, res.Receiver.BalanceAfter.Equal(dec("125.40")))
	assert.Equal(t, alice, res.Sender.Owner.ID)
	assert.Equal(t, bob, res.Receiver.Owner.ID)

	out, in := res.SenderTransaction, res.ReceiverTransaction
	assert.Equal(t, domain.TransactionTypeTransferOut, out.Type)
	assert.Equal(t, domain.TransactionCategoryDebit, out.Category)
	assert.Equal(t, domain.TransactionTypeTransferIn, in.Type)
	assert.Equal(t, domain.TransactionCategoryCredit, in.Category)

	require.NotNil(t, out.TransferReference)
	require.NotNil(t, in.TransferReference)
	assert.Equal(t, res.TransferReference, *out.TransferReference)
	assert.Equal(t, *out.TransferReference, *in.TransferReference)
	assert.NotEqual(t, out.Reference, in.Reference)

	for _, leg := range []*domain.Transaction{out, in} {
		require.NotNil(t, leg.FromAccountID)
		require.NotNil(t, leg.ToAccountID)
		assert.Equal(t, from.ID, *leg.FromAccountID)
		assert.Equal(t, to.ID, *leg.ToAccountID)
		assert.True(t, leg.Amount.Equal(dec("120.40")))
	}
	assert.True(t, out.BalanceAfter.Equal(f.balance(t, "1111111111")))
	assert.True(t, in.BalanceAfter.Equal(f.balance(t, "2222222222")))

	assert.Len(t, f.history(t, from.ID), 2)
	assert.Len(t, f.history(t, to.ID), 2)
}

func TestTransfer_Preconditions(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	f.account(t, alice, "1111111111", "100", domain.AccountStatusActive)
	f.account(t, bob, "2222222222", "0", domain.AccountStatusActive)
	f.account(t, bob, "3333333333", "0", domain.AccountStatusSuspended)
	f.account(t, alice, "4444444444", "100", domain.AccountStatusClosed)

	tests := []struct {
		name    string
		actor   uuid.UUID
		from    string
		to      string
		amount  string
		kind    domain.ErrorKind
		message string
	}{
		{"sender missing", alice, "9999999999", "2222222222", "10", domain.KindNotFound, "Sender account not found"},
		{"recipient missing", alice, "1111111111", "9999999999", "10", domain.KindNotFound, "Recipient account not found"},
		{"both missing names sender", alice, "9999999998", "9999999999", "10", domain.KindNotFound, "Sender account not found"},
		{"not owner", bob, "1111111111", "2222222222", "10", domain.KindForbidden, "You don't have permission to transfer from this account"},
		{"recipient suspended", alice, "1111111111", "3333333333", "10", domain.KindForbidden, "One of the accounts is not active"},
		{"sender closed", alice, "4444444444", "2222222222", "10", domain.KindForbidden, "One of the accounts is not active"},
		{"invalid amount", alice, "1111111111", "2222222222", "0", domain.KindBadRequest, domain.ErrInvalidAmount.Message},
		{"insufficient", alice, "1111111111", "2222222222", "100.01", domain.KindBadRequest, "Insufficient balance"},
		{"same account", alice, "1111111111", "1111111111", "10", domain.KindBadRequest, "Cannot transfer to the same account"},
		// the balance check runs before the same-account check
		{"same account overdraft", alice, "1111111111", "1111111111", "500", domain.KindBadRequest, "Insufficient balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Transfer(context.Background(), tt.actor, tt.from, tt.to, dec(tt.amount), nil)
			assertDomainError(t, err, tt.kind, tt.message)
		})
	}

	assert.True(t, f.balance(t, "1111111111").Equal(dec("100")))
	assert.True(t, f.balance(t, "2222222222").IsZero())
}

func TestTransfer_OppositeDirectionsDoNotDeadlock(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	a := f.account(t, alice, "1111111111", "1000", domain.AccountStatusActive)
	b := f.account(t, bob, "2222222222", "1000", domain.AccountStatusActive)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Transfer(ctx, alice, "1111111111", "2222222222", dec("3"), nil)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.ledger.Transfer(ctx, bob, "2222222222", "1111111111", dec("2"), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, f.balance(t, "1111111111").Equal(dec("950")))
	assert.True(t, f.balance(t, "2222222222").Equal(dec("1050")))
	assert.Len(t, f.history(t, a.ID), rounds*4)
	assert.Len(t, f.history(t, b.ID), rounds*4)
}

func TestLedgerBalanceMatchesHistory(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	a := f.account(t, alice, "1111111111", "0", domain.AccountStatusActive)
	b := f.account(t, bob, "2222222222", "0", domain.AccountStatusActive)
	ctx := context.Background()

	_, err := f.ledger.Deposit(ctx, alice, "1111111111", dec("500"), nil)
	require.NoError(t, err)
	_, err = f.ledger.Deposit(ctx, bob, "2222222222", dec("20.10"), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = f.ledger.Withdraw(ctx, alice, "1111111111", dec("7.33"), nil)
		}()
		go func() {
			defer wg.Done()
			_, _ = f.ledger.Transfer(ctx, alice, "1111111111", "2222222222", dec("11.5"), nil)
		}()
		go func() {
			defer wg.Done()
			_, _ = f.ledger.Transfer(ctx, bob, "2222222222", "1111111111", dec("4.01"), nil)
		}()
	}
	wg.Wait()

	for _, acc := range []*domain.Account{a, b} {
		sum := decimal.Zero
		for _, tx := range f.history(t, acc.ID) {
			switch {
			case tx.Type == domain.TransactionTypeTransferOut && *tx.FromAccountID == acc.ID:
				sum = sum.Sub(tx.Amount)
			case tx.Type == domain.TransactionTypeTransferIn && *tx.ToAccountID == acc.ID:
				sum = sum.Add(tx.Amount)
			case tx.Type == domain.TransactionTypeDeposit || tx.Type == domain.TransactionTypeWithdrawal:
				sum = sum.Add(tx.SignedAmount())
			}
		}
		got, err := f.store.Accounts().GetByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(sum), "balance %s != ledger sum %s", got.Balance, sum)
		assert.False(t, got.Balance.IsNegative())
	}
}

func TestGetTransactionByID(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	eve := f.customer(t)
	f.account(t, alice, "1111111111", "100", domain.AccountStatusActive)
	f.account(t, bob, "2222222222", "0", domain.AccountStatusActive)
	ctx := context.Background()

	res, err := f.ledger.Transfer(ctx, alice, "1111111111", "2222222222", dec("10"), nil)
	require.NoError(t, err)
	id := res.SenderTransaction.ID.String()

	got, err := f.ledger.GetTransactionByID(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, res.SenderTransaction.Reference, got.Reference)

	// the recipient is a party to both legs
	_, err = f.ledger.GetTransactionByID(ctx, bob, id)
	require.NoError(t, err)

	_, err = f.ledger.GetTransactionByID(ctx, eve, id)
	assertDomainError(t, err, domain.KindNotFound, "transaction with requested id not found")

	_, err = f.ledger.GetTransactionByID(ctx, alice, uuid.NewString())
	assertDomainError(t, err, domain.KindNotFound, "transaction with requested id not found")

	_, err = f.ledger.GetTransactionByID(ctx, alice, "not-a-uuid")
	assertDomainError(t, err, domain.KindNotFound, "transaction with requested id not found")
}

func TestListTransactions(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	f.account(t, alice, "1111111111", "0", domain.AccountStatusActive)
	ctx := context.Background()

	var refs []string
	for i := 1; i <= 5; i++ {
		res, err := f.ledger.Deposit(ctx, alice, "1111111111", decimal.NewFromInt(int64(i)), nil)
		require.NoError(t, err)
		refs = append(refs, res.Transaction.Reference)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := f.ledger.ListTransactions(ctx, alice, "1111111111", domain.NewPageRequest("1", "2"))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, refs[4], page.Items[0].Reference)
	assert.Equal(t, refs[3], page.Items[1].Reference)
	assert.Equal(t, domain.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 5, Limit: 2, HasMore: true}, page.Pagination)

	last, err := f.ledger.ListTransactions(ctx, alice, "1111111111", domain.NewPageRequest("3", "2"))
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, refs[0], last.Items[0].Reference)
	assert.False(t, last.Pagination.HasMore)

	_, err = f.ledger.ListTransactions(ctx, bob, "1111111111", domain.NewPageRequest("", ""))
	assertDomainError(t, err, domain.KindForbidden, "You don't have access to this account")

	_, err = f.ledger.ListTransactions(ctx, alice, "9999999999", domain.NewPageRequest("", ""))
	assertDomainError(t, err, domain.KindNotFound, "Account not found")
}

func TestLedger_PublishesCompletedTransactions(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	bob := f.customer(t)
	f.account(t, alice, "1111111111", "100", domain.AccountStatusActive)
	f.account(t, bob, "2222222222", "0", domain.AccountStatusActive)

	res, err := f.ledger.Transfer(context.Background(), alice, "1111111111", "2222222222", dec("10"), nil)
	require.NoError(t, err)

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case tx := <-f.publisher.events:
			got[tx.Reference] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.True(t, got[res.SenderTransaction.Reference])
	assert.True(t, got[res.ReceiverTransaction.Reference])
}

func TestLedger_PublishFailureDoesNotFailOperation(t *testing.T) {
	store := memory.NewStore()
	logger, hook := test.NewNullLogger()
	ledger := domain.NewLedgerService(store.Accounts(), store.Transactions(), store.Customers(),
		store, money.NewGenerator(), failingPublisher{}, logger)

	f := &ledgerFixture{store: store, ledger: ledger}
	owner := f.customer(t)
	f.account(t, owner, "1234567890", "0", domain.AccountStatusActive)

	_, err := ledger.Deposit(context.Background(), owner, "1234567890", dec("5"), nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestListTransactions_PagePastAddressableRange(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	f.account(t, alice, "1111111111", "0", domain.AccountStatusActive)
	ctx := context.Background()

	_, err := f.ledger.Deposit(ctx, alice, "1111111111", dec("1"), nil)
	require.NoError(t, err)

	page, err := f.ledger.ListTransactions(ctx, alice, "1111111111", domain.NewPageRequest("100000000000000001", "100"))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.TotalItems)
	assert.False(t, page.Pagination.HasMore)
}

func TestLedger_AmountBeyondColumnRange(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.customer(t)
	f.account(t, alice, "1111111111", "0", domain.AccountStatusActive)
	ctx := context.Background()

	_, err := f.ledger.Deposit(ctx, alice, "1111111111", dec("100000000000000000000"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, f.balance(t, "1111111111").IsZero())

	_, err = f.ledger.Deposit(ctx, alice, "1111111111", money.MaxAmount, nil)
	require.NoError(t, err)

	_, err = f.ledger.Deposit(ctx, alice, "1111111111", dec("0.01"), nil)
	assertDomainError(t, err, domain.KindBadRequest, "Amount exceeds the maximum allowed balance")
	assert.True(t, f.balance(t, "1111111111").Equal(money.MaxAmount))
	acc, err := f.store.Accounts().GetByNumber(ctx, "1111111111")
	require.NoError(t, err)
	assert.Len(t, f.history(t, acc.ID), 1)
}

type blockingPublisher struct {
	release chan struct{}
	done    chan struct{}
}

func (p *blockingPublisher) PublishTransactionCompleted(context.Context, *domain.Transaction) error {
	<-p.release
	close(p.done)
	return nil
}

func TestLedger_DrainWaitsForPublishes(t *testing.T) {
	store := memory.NewStore()
	logger, _ := test.NewNullLogger()
	publisher := &blockingPublisher{release: make(chan struct{}), done: make(chan struct{})}
	ledger := domain.NewLedgerService(store.Accounts(), store.Transactions(), store.Customers(),
		store, money.NewGenerator(), publisher, logger)

	f := &ledgerFixture{store: store, ledger: ledger}
	owner := f.customer(t)
	f.account(t, owner, "1234567890", "0", domain.AccountStatusActive)

	_, err := ledger.Deposit(context.Background(), owner, "1234567890", dec("5"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, ledger.Drain(ctx), context.DeadlineExceeded)

	close(publisher.release)
	require.NoError(t, ledger.Drain(context.Background()))
	select {
	case <-publisher.done:
	default:
		t.Fatal("drain returned before the publish finished")
	}
}
