// Package simplefin fetches transactions from the SimpleFIN bridge, an
// alternative to Plaid for banks that support it.
package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
)

// Client implements service.TransactionFetcher against a SimpleFIN access URL.
type Client struct {
	accessURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ service.TransactionFetcher = (*Client)(nil)

// SimpleFIN API response types.
type accountSet struct {
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Posted      int64  `json:"posted"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a Client, claiming the setup token on first use and
// persisting the resulting access URL.
func NewClient(token string) (*Client, error) {
	auth, err := LoadOrClaimAuth(token)
	if err != nil {
		return nil, fmt.Errorf("failed to load/claim auth: %w", err)
	}

	return newClientWithAccessURL(auth.AccessURL), nil
}

func newClientWithAccessURL(accessURL string) *Client {
	return &Client{
		accessURL: accessURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default().With("component", "simplefin"),
	}
}

// claimToken exchanges a base64-encoded claim URL for an access URL.
func claimToken(token string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("failed to decode SimpleFIN token: %w", err)
		}
	}

	claimURL := strings.TrimSpace(string(decoded))
	if !strings.HasPrefix(claimURL, "http://") && !strings.HasPrefix(claimURL, "https://") {
		return "", fmt.Errorf("decoded token is not a valid URL: %s", claimURL)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	resp, err := httpClient.Post(claimURL, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to claim access URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to claim SimpleFIN access: %d - %s", resp.StatusCode, string(body))
	}

	accessURLBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}

	accessURL := strings.TrimSpace(string(accessURLBytes))
	if !strings.HasPrefix(accessURL, "http://") && !strings.HasPrefix(accessURL, "https://") {
		return "", fmt.Errorf("invalid access URL received: %s", accessURL)
	}

	return accessURL, nil
}

// GetTransactions fetches posted transactions between startDate and endDate.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	set, err := c.fetchAccounts(ctx, &startDate, &endDate)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			date := time.Unix(tx.Posted, 0).UTC()
			if date.Before(startDate) || date.After(endDate) {
				continue
			}

			txn, err := mapTransaction(acct, tx, date)
			if err != nil {
				return nil, err
			}
			transactions = append(transactions, txn)
		}
	}

	c.logger.Debug("fetched SimpleFIN transactions",
		"count", len(transactions),
		"accounts", len(set.Accounts))

	return transactions, nil
}

// GetAccounts returns the IDs of the connected accounts.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	set, err := c.fetchAccounts(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(set.Accounts))
	for _, acct := range set.Accounts {
		accountIDs = append(accountIDs, acct.ID)
	}
	return accountIDs, nil
}

func (c *Client) fetchAccounts(ctx context.Context, startDate, endDate *time.Time) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	if startDate != nil {
		q.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))
	}
	if endDate != nil {
		// end-date is exclusive
		q.Set("end-date", strconv.FormatInt(endDate.AddDate(0, 0, 1).Unix(), 10))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, string(body))
	}

	var set accountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &set, nil
}

func mapTransaction(acct account, tx transaction, date time.Time) (model.Transaction, error) {
	amount, err := parseAmount(tx.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse amount %s: %w", tx.Amount, err)
	}

	name := tx.Payee
	if name == "" {
		name = tx.Description
	}

	txn := model.Transaction{
		ID:        fmt.Sprintf("%s_%s", acct.ID, tx.ID),
		Date:      date,
		Name:      name,
		Amount:    amount,
		Type:      deriveType(tx.Amount),
		AccountID: acct.ID,
		// SimpleFIN doesn't provide categories
	}
	txn.Hash = txn.GenerateHash()

	return txn, nil
}

// parseAmount converts a SimpleFIN decimal amount string to an absolute
// float64.
func parseAmount(amountStr string) (float64, error) {
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		amount = -amount
	}
	return amount, nil
}

// deriveType maps SimpleFIN sign conventions to a transaction type.
// Negative amounts are debits.
func deriveType(amountStr string) model.TransactionType {
	if strings.HasPrefix(strings.TrimSpace(amountStr), "-") {
		return model.TypeExpense
	}
	return model.TypeIncome
}
