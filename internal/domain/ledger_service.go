package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/thablackcodes/gresh-finance/internal/money"
)

// LedgerService moves money between accounts. Every mutating operation runs
// as one unit-of-work: the account rows are locked, preconditions are checked
// against the locked state, balances are adjusted and the matching ledger
// rows are appended before commit.
type LedgerService struct {
	accounts     AccountRepository
	transactions TransactionRepository
	customers    CustomerRepository
	txManager    TransactionManager
	refs         ReferenceGenerator
	// Optional event publisher to emit transaction completed events
	publisher EventPublisher
	// in-flight publishes, waited on by Drain
	publishing sync.WaitGroup
	log        logrus.FieldLogger
}

// NewLedgerService creates a new instance of LedgerService.
// Pass nil for publisher if no events should be emitted.
func NewLedgerService(
	accounts AccountRepository,
	transactions TransactionRepository,
	customers CustomerRepository,
	txManager TransactionManager,
	refs ReferenceGenerator,
	publisher EventPublisher,
	log logrus.FieldLogger,
) *LedgerService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LedgerService{
		accounts:     accounts,
		transactions: transactions,
		customers:    customers,
		txManager:    txManager,
		refs:         refs,
		publisher:    publisher,
		log:          log.WithField("component", "ledger"),
	}
}

// Deposit credits amount to the actor's account.
//
// Checks, first failure wins:
// 1. account exists
// 2. actor owns the account
// 3. account is ACTIVE
// 4. amount is positive
func (s *LedgerService) Deposit(
	ctx context.Context,
	actorID uuid.UUID,
	accountNumber string,
	amount decimal.Decimal,
	narration *string,
) (*MovementResult, error) {
	var result *MovementResult
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.lockByNumber(txCtx, accountNumber, ErrAccountNotFound)
		if err != nil {
			return err
		}

		if !CanAccess(actorID, account.CustomerID) {
			return Forbiddenf("You don't have permission to deposit to this account")
		}
		if !account.IsActive() {
			return Forbiddenf("Cannot deposit to %s account", account.Status)
		}
		if err := validateMovement(amount, narration); err != nil {
			return err
		}

		before := account.Balance
		updated, err := s.accounts.AdjustBalance(txCtx, account.ID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit account: %w", err)
		}

		tx := newTransaction(TransactionTypeDeposit, s.refs.TransactionReference(),
			amount, updated.Balance, narration, nil, &updated.ID)
		if err := s.transactions.Create(txCtx, tx); err != nil {
			return fmt.Errorf("failed to create transaction record: %w", err)
		}

		owner, err := s.customers.GetByID(txCtx, updated.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load account owner: %w", err)
		}

		result = &MovementResult{
			Account: AccountSnapshot{
				Account:       updated,
				Owner:         owner,
				BalanceBefore: before,
				BalanceAfter:  updated.Balance,
			},
			Transaction: tx,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reference": result.Transaction.Reference,
		"account":   accountNumber,
		"amount":    money.Format(amount),
	}).Info("deposit completed")

	s.publish(result.Transaction)
	return result, nil
}

// Withdraw debits amount from the actor's account. In addition to the
// Deposit checks the locked balance must cover the amount.
func (s *LedgerService) Withdraw(
	ctx context.Context,
	actorID uuid.UUID,
	accountNumber string,
	amount decimal.Decimal,
	narration *string,
) (*MovementResult, error) {
	var result *MovementResult
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.lockByNumber(txCtx, accountNumber, ErrAccountNotFound)
		if err != nil {
			return err
		}

		if !CanAccess(actorID, account.CustomerID) {
			return Forbiddenf("You don't have permission to withdraw from this account")
		}
		if !account.IsActive() {
			return Forbiddenf("Cannot withdraw from %s account", account.Status)
		}
		if err := validateMovement(amount, narration); err != nil {
			return err
		}
		if !account.HasSufficientFunds(amount) {
			return ErrInsufficientBalance
		}

		before := account.Balance
		updated, err := s.accounts.AdjustBalance(txCtx, account.ID, amount.Neg())
		if err != nil {
			return fmt.Errorf("failed to debit account: %w", err)
		}

		tx := newTransaction(TransactionTypeWithdrawal, s.refs.TransactionReference(),
			amount, updated.Balance, narration, &updated.ID, nil)
		if err := s.transactions.Create(txCtx, tx); err != nil {
			return fmt.Errorf("failed to create transaction record: %w", err)
		}

		owner, err := s.customers.GetByID(txCtx, updated.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load account owner: %w", err)
		}

		result = &MovementResult{
			Account: AccountSnapshot{
				Account:       updated,
				Owner:         owner,
				BalanceBefore: before,
				BalanceAfter:  updated.Balance,
			},
			Transaction: tx,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reference": result.Transaction.Reference,
		"account":   accountNumber,
		"amount":    money.Format(amount),
	}).Info("withdrawal completed")

	s.publish(result.Transaction)
	return result, nil
}

// Transfer moves amount from one account to another.
//
// Both rows are locked in ascending id order before any check so that two
// transfers in opposite directions between the same pair cannot deadlock.
// Checks, first failure wins:
// 1. sender exists, then recipient exists
// 2. actor owns the sender account
// 3. both accounts are ACTIVE
// 4. amount is positive and the sender balance covers it
// 5. sender and recipient are different accounts
func (s *LedgerService) Transfer(
	ctx context.Context,
	actorID uuid.UUID,
	fromAccountNumber string,
	toAccountNumber string,
	amount decimal.Decimal,
	narration *string,
) (*TransferResult, error) {
	var result *TransferResult
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		from, err := s.getByNumber(txCtx, fromAccountNumber, ErrSenderNotFound)
		if err != nil {
			return err
		}
		to, err := s.getByNumber(txCtx, toAccountNumber, ErrRecipientNotFound)
		if err != nil {
			return err
		}

		from, to, err = s.lockPair(txCtx, from.ID, to.ID)
		if err != nil {
			return err
		}

		if !CanAccess(actorID, from.CustomerID) {
			return Forbiddenf("You don't have permission to transfer from this account")
		}
		if !from.IsActive() || !to.IsActive() {
			return ErrAccountsNotActive
		}
		if err := validateMovement(amount, narration); err != nil {
			return err
		}
		if !from.HasSufficientFunds(amount) {
			return ErrInsufficientBalance
		}
		if from.AccountNumber == to.AccountNumber {
			return ErrSameAccount
		}

		senderBefore, receiverBefore := from.Balance, to.Balance

		updatedFrom, err := s.accounts.AdjustBalance(txCtx, from.ID, amount.Neg())
		if err != nil {
			return fmt.Errorf("failed to debit sender account: %w", err)
		}
		updatedTo, err := s.accounts.AdjustBalance(txCtx, to.ID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit recipient account: %w", err)
		}

		transferRef := s.refs.TransferReference()
		fromID, toID := updatedFrom.ID, updatedTo.ID

		out := newTransaction(TransactionTypeTransferOut, s.refs.TransactionReference(),
			amount, updatedFrom.Balance, narration, &fromID, &toID)
		out.TransferReference = &transferRef
		if err := s.transactions.Create(txCtx, out); err != nil {
			return fmt.Errorf("failed to create sender transaction record: %w", err)
		}

		in := newTransaction(TransactionTypeTransferIn, s.refs.TransactionReference(),
			amount, updatedTo.Balance, narration, &fromID, &toID)
		in.TransferReference = &transferRef
		if err := s.transactions.Create(txCtx, in); err != nil {
			return fmt.Errorf("failed to create recipient transaction record: %w", err)
		}

		sender, err := s.customers.GetByID(txCtx, updatedFrom.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load sender: %w", err)
		}
		receiver, err := s.customers.GetByID(txCtx, updatedTo.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load recipient: %w", err)
		}

		result = &TransferResult{
			TransferReference: transferRef,
			Amount:            amount,
			Sender: AccountSnapshot{
				Account:       updatedFrom,
				Owner:         sender,
				BalanceBefore: senderBefore,
				BalanceAfter:  updatedFrom.Balance,
			},
			Receiver: AccountSnapshot{
				Account:       updatedTo,
				Owner:         receiver,
				BalanceBefore: receiverBefore,
				BalanceAfter:  updatedTo.Balance,
			},
			SenderTransaction:   out,
			ReceiverTransaction: in,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transfer_ref": result.TransferReference,
		"from":         fromAccountNumber,
		"to":           toAccountNumber,
		"amount":       money.Format(amount),
	}).Info("transfer completed")

	s.publish(result.SenderTransaction)
	s.publish(result.ReceiverTransaction)
	return result, nil
}

// GetTransactionByID returns a transaction the actor is a party to.
// Transactions that are missing, malformed or belong to other customers are
// all reported as ErrTransactionNotFound.
func (s *LedgerService) GetTransactionByID(ctx context.Context, actorID uuid.UUID, rawID string) (*Transaction, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}

	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fromOwner, err := s.ownerOf(ctx, tx.FromAccountID)
	if err != nil {
		return nil, err
	}
	toOwner, err := s.ownerOf(ctx, tx.ToAccountID)
	if err != nil {
		return nil, err
	}
	if !canAccessTransaction(actorID, fromOwner, toOwner) {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// ListTransactions returns a page of the account's transactions, newest first.
func (s *LedgerService) ListTransactions(
	ctx context.Context,
	actorID uuid.UUID,
	accountNumber string,
	req PageRequest,
) (*Page[*Transaction], error) {
	account, err := s.getByNumber(ctx, accountNumber, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actorID, account.CustomerID) {
		return nil, ErrNoAccountAccess
	}

	items, total, err := s.transactions.ListByAccount(ctx, account.ID, req.Limit, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &Page[*Transaction]{
		Items:      items,
		Pagination: NewPagination(req, total),
	}, nil
}

// getByNumber looks up an account and replaces a not-found result with notFound.
func (s *LedgerService) getByNumber(ctx context.Context, accountNumber string, notFound error) (*Account, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *LedgerService) lockByNumber(ctx context.Context, accountNumber string, notFound error) (*Account, error) {
	account, err := s.getByNumber(ctx, accountNumber, notFound)
	if err != nil {
		return nil, err
	}
	locked, err := s.accounts.Lock(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return locked, nil
}

// lockPair locks both accounts in ascending id order and returns them as
// (a, b). The same id is locked once.
func (s *LedgerService) lockPair(ctx context.Context, a, b uuid.UUID) (*Account, *Account, error) {
	if a == b {
		acc, err := s.accounts.Lock(ctx, a)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock account: %w", err)
		}
		return acc, acc, nil
	}

	first, second := a, b
	if bytes.Compare(b[:], a[:]) < 0 {
		first, second = b, a
	}

	firstAcc, err := s.accounts.Lock(ctx, first)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock account %s: %w", first, err)
	}
	secondAcc, err := s.accounts.Lock(ctx, second)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock account %s: %w", second, err)
	}

	if first == a {
		return firstAcc, secondAcc, nil
	}
	return secondAcc, firstAcc, nil
}

// ownerOf resolves the customer owning accountID. A nil id or a deleted
// account yields a nil owner.
func (s *LedgerService) ownerOf(ctx context.Context, accountID *uuid.UUID) (*uuid.UUID, error) {
	if accountID == nil {
		return nil, nil
	}
	account, err := s.accounts.GetByID(ctx, *accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account.CustomerID, nil
}

// publish emits a transaction completed event after commit. Failures are
// logged and never reach the caller.
func (s *LedgerService) publish(tx *Transaction) {
	if s.publisher == nil {
		return
	}
	s.publishing.Add(1)
	go func(t *Transaction) {
		defer s.publishing.Done()
		if err := s.publisher.PublishTransactionCompleted(context.Background(), t); err != nil {
			s.log.WithError(err).WithField("reference", t.Reference).
				Warn("failed to publish transaction completed event")
		}
	}(tx)
}

// Drain waits for in-flight event publishes to finish. Call it after the
// servers have stopped accepting requests and before the publisher is closed.
func (s *LedgerService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.publishing.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to drain event publishes: %w", ctx.Err())
	}
}

func validateMovement(amount decimal.Decimal, narration *string) error {
	if err := money.ValidateAmount(amount); err != nil {
		return ErrInvalidAmount
	}
	if narration != nil && utf8.RuneCountInString(*narration) > MaxNarrationLength {
		return ErrNarrationTooLong
	}
	return nil
}
