// Package model defines the core domain types shared across the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType describes the direction of money movement. Amounts are
// always stored as non-negative magnitudes; the type carries direction.
type TransactionType string

const (
	// TypeIncome represents money coming in.
	TypeIncome TransactionType = "income"
	// TypeExpense represents money going out.
	TypeExpense TransactionType = "expense"
	// TypeTransfer represents movement between the user's own accounts.
	TypeTransfer TransactionType = "transfer"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	Name        string          `json:"description"` // Raw descriptor from the bank feed
	AccountID   string          `json:"accountId,omitempty"`
	Hash        string          `json:"-"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Amount      float64         `json:"amount"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
