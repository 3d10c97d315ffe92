package models

import (
	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/logging"
	"github.com/thablackcodes/gresh-finance/internal/money"
)

// NewTransaction converts a domain transaction.
func NewTransaction(tx *domain.Transaction) Transaction {
	return Transaction{
		ID:                tx.ID,
		Reference:         tx.Reference,
		TransferReference: tx.TransferReference,
		Type:              string(tx.Type),
		Category:          string(tx.Category),
		Amount:            money.NewNumber(tx.Amount),
		BalanceAfter:      money.NewNumber(tx.BalanceAfter),
		Status:            string(tx.Status),
		Narration:         tx.Narration,
		FromAccountID:     tx.FromAccountID,
		ToAccountID:       tx.ToAccountID,
		CreatedAt:         Timestamp(tx.CreatedAt),
		UpdatedAt:         Timestamp(tx.UpdatedAt),
	}
}

// NewTransactions converts a slice of domain transactions. The result is
// never nil so it encodes as [].
func NewTransactions(txs []*domain.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransaction(tx))
	}
	return out
}

// NewDepositResponse builds the deposit response.
func NewDepositResponse(res *domain.MovementResult) DepositResponse {
	tx := res.Transaction
	return DepositResponse{
		Success: true,
		Message: "Deposit successful",
		Account: DepositAccount{
			AccountNumber: res.Account.Account.AccountNumber,
			BalanceBefore: money.NewNumber(res.Account.BalanceBefore),
			BalanceAfter:  money.NewNumber(res.Account.BalanceAfter),
			Currency:      res.Account.Account.Currency,
		},
		Transaction: TransactionSummary{
			Reference: tx.Reference,
			Type:      string(tx.Type),
			Category:  string(tx.Category),
			Amount:    money.NewNumber(tx.Amount),
			Status:    string(tx.Status),
			Narration: tx.Narration,
		},
	}
}

// NewWithdrawResponse builds the withdrawal response.
func NewWithdrawResponse(res *domain.MovementResult) WithdrawResponse {
	account := res.Account.Account
	owner := res.Account.Owner
	return WithdrawResponse{
		Success: true,
		Message: "Withdrawal successful",
		Account: WithdrawAccount{
			ID:            account.ID,
			AccountNumber: account.AccountNumber,
			AccountType:   string(account.AccountType),
			Status:        string(account.Status),
			BalanceBefore: money.NewNumber(res.Account.BalanceBefore),
			BalanceAfter:  money.NewNumber(res.Account.BalanceAfter),
			Currency:      account.Currency,
			Customer: CustomerSummary{
				ID:        owner.ID,
				FirstName: owner.FirstName,
				LastName:  owner.LastName,
				Email:     logging.MaskEmail(owner.Email),
			},
		},
		Transaction: NewTransaction(res.Transaction),
	}
}

// NewTransferResponse builds the transfer response.
func NewTransferResponse(res *domain.TransferResult) TransferResponse {
	return TransferResponse{
		Success: true,
		Message: "Transfer successful",
		Transfer: TransferDetails{
			TransferRef: res.TransferReference,
			Amount:      money.NewNumber(res.Amount),
			Sender:      newTransferParty(res.Sender),
			Receiver:    newTransferParty(res.Receiver),
			Transactions: TransferTransactions{
				Sender:   NewTransaction(res.SenderTransaction),
				Receiver: NewTransaction(res.ReceiverTransaction),
			},
		},
	}
}

func newTransferParty(s domain.AccountSnapshot) TransferParty {
	return TransferParty{
		AccountNumber: s.Account.AccountNumber,
		CustomerName:  s.Owner.FullName(),
		Email:         logging.MaskEmail(s.Owner.Email),
		BalanceBefore: money.NewNumber(s.BalanceBefore),
		BalanceAfter:  money.NewNumber(s.BalanceAfter),
	}
}

// NewTransactionListResponse builds a page of transactions.
func NewTransactionListResponse(page *domain.Page[*domain.Transaction]) TransactionListResponse {
	p := page.Pagination
	return TransactionListResponse{
		Success: true,
		Results: NewTransactions(page.Items),
		Pagination: Pagination{
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			TotalItems:  p.TotalItems,
			Limit:       p.Limit,
			HasMore:     p.HasMore,
		},
	}
}

// NewUser converts a customer into the caller's profile view.
func NewUser(c *domain.Customer) User {
	return User{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		IsActive:   c.IsActive,
		IsVerified: c.IsVerified,
		CreatedAt:  Timestamp(c.CreatedAt),
	}
}

// NewAccount converts a domain account.
func NewAccount(a *domain.Account) Account {
	return Account{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.AccountType),
		Balance:       money.NewNumber(a.Balance),
		Currency:      a.Currency,
		Status:        string(a.Status),
		CreatedAt:     Timestamp(a.CreatedAt),
		UpdatedAt:     Timestamp(a.UpdatedAt),
	}
}
