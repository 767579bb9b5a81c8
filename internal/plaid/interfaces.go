package plaid

import (
	"github.com/centsible/centsible/internal/service"
)

// Ensure Client implements the TransactionFetcher contract.
var _ service.TransactionFetcher = (*Client)(nil)
