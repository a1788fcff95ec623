package safe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/status-im/keycard-go/hexutils"

	"github.com/exvulsec/safeguard/client"
	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/utils"
)

const (
	fetchAttempts       = 5
	defaultFetchTimeout = 30 * time.Second
	defaultHistoryLimit = 100
)

// ContextFetchError marks a malformed or rejected service payload. It is
// fatal and never retried, retrying a parse error wastes quota and will not
// succeed.
type ContextFetchError struct {
	URL string
	Err error
}

func (e *ContextFetchError) Error() string {
	return fmt.Sprintf("fetch %s is err: %v", e.URL, e.Err)
}

func (e *ContextFetchError) Unwrap() error {
	return utils.ErrNotRetryable
}

// Client reads queued transactions, history and balances from the Safe
// transaction service, and submits confirmations, proposals and messages.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func NewClient() *Client {
	timeout := defaultFetchTimeout
	if config.Conf.SafeAPI.TimeoutSeconds > 0 {
		timeout = time.Duration(config.Conf.SafeAPI.TimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(config.Conf.SafeAPI.BaseURL, "/"),
		apiKey:  config.Conf.SafeAPI.APIKey,
		timeout: timeout,
	}
}

type pagedTransactions struct {
	Count   int                        `json:"count"`
	Next    *string                    `json:"next"`
	Results []model.PendingTransaction `json:"results"`
}

type pagedBalances struct {
	Results []model.Balance `json:"results"`
}

// QueuedTransactions lists the not-yet-executed transactions of a safe,
// lowest nonce first.
func (c *Client) QueuedTransactions(ctx context.Context, safeAddress string) ([]model.PendingTransaction, error) {
	apiURL := fmt.Sprintf("%s/api/v1/safes/%s/multisig-transactions/?executed=false&ordering=nonce", c.baseURL, safeAddress)
	page := pagedTransactions{}
	if err := c.getJSON(ctx, apiURL, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Transaction looks up one transaction with its decoded call and execution
// metadata by safe tx hash.
func (c *Client) Transaction(ctx context.Context, safeTxHash string) (*model.PendingTransaction, error) {
	apiURL := fmt.Sprintf("%s/api/v1/multisig-transactions/%s/", c.baseURL, safeTxHash)
	tx := model.PendingTransaction{}
	if err := c.getJSON(ctx, apiURL, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// HistoricalTransactions lists executed transactions most recent first,
// skipping excludeHashes. The exclusion is used by the evaluation harness so
// a replayed transaction never sees itself in its own history.
func (c *Client) HistoricalTransactions(ctx context.Context, safeAddress string, excludeHashes ...string) ([]model.HistoricalTransaction, error) {
	limit := config.Conf.SafeAPI.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	apiURL := fmt.Sprintf("%s/api/v1/safes/%s/multisig-transactions/?executed=true&ordering=-nonce&limit=%d", c.baseURL, safeAddress, limit)
	page := pagedTransactions{}
	if err := c.getJSON(ctx, apiURL, &page); err != nil {
		return nil, err
	}

	excluded := map[string]bool{}
	for _, hash := range excludeHashes {
		excluded[strings.ToLower(hash)] = true
	}
	history := make([]model.HistoricalTransaction, 0, len(page.Results))
	for _, tx := range page.Results {
		if excluded[strings.ToLower(tx.SafeTxHash)] {
			continue
		}
		history = append(history, tx)
	}
	return history, nil
}

// BalancesUSD lists the safe's token balances with fiat values.
func (c *Client) BalancesUSD(ctx context.Context, safeAddress string) (model.Balances, error) {
	apiURL := fmt.Sprintf("%s/api/v1/safes/%s/balances/usd/", c.baseURL, safeAddress)
	balances := model.Balances{}
	if err := c.getJSON(ctx, apiURL, &balances); err != nil {
		// some service deployments page this endpoint
		page := pagedBalances{}
		if pageErr := c.getJSON(ctx, apiURL, &page); pageErr != nil {
			return nil, err
		}
		balances = page.Results
	}
	return balances, nil
}

// Confirm submits a partial signature for a queued transaction.
func (c *Client) Confirm(ctx context.Context, safeTxHash, signature string) error {
	apiURL := fmt.Sprintf("%s/api/v1/multisig-transactions/%s/confirmations/", c.baseURL, safeTxHash)
	payload := map[string]string{"signature": signature}
	return c.postJSON(ctx, apiURL, payload)
}

// ProposeTransaction submits a new multisig transaction to the queue, used by
// the nonce-burn rejection path.
func (c *Client) ProposeTransaction(ctx context.Context, safeAddress string, st *SafeTx, safeTxHash, sender, signature string) error {
	apiURL := fmt.Sprintf("%s/api/v1/safes/%s/multisig-transactions/", c.baseURL, safeAddress)
	payload := map[string]any{
		"to":                      st.To.Hex(),
		"value":                   st.Value.String(),
		"data":                    nil,
		"operation":               int(st.Operation),
		"safeTxGas":               st.SafeTxGas.String(),
		"baseGas":                 st.BaseGas.String(),
		"gasPrice":                st.GasPrice.String(),
		"gasToken":                st.GasToken.Hex(),
		"refundReceiver":          st.RefundReceiver.Hex(),
		"nonce":                   st.Nonce.Int64(),
		"contractTransactionHash": safeTxHash,
		"sender":                  sender,
		"signature":               signature,
	}
	if len(st.Data) > 0 {
		payload["data"] = "0x" + strings.ToLower(hexutils.BytesToHex(st.Data))
	}
	return c.postJSON(ctx, apiURL, payload)
}

// ProposeMessage publishes a signed off-chain message addressed to the safe.
func (c *Client) ProposeMessage(ctx context.Context, safeAddress, message, signature string) error {
	apiURL := fmt.Sprintf("%s/api/v1/safes/%s/messages/", c.baseURL, safeAddress)
	payload := map[string]string{
		"message":   message,
		"signature": signature,
	}
	return c.postJSON(ctx, apiURL, payload)
}

func (c *Client) getJSON(ctx context.Context, apiURL string, out any) error {
	_, err := utils.Retry(fetchAttempts, func() (any, error) {
		return nil, c.doJSON(ctx, http.MethodGet, apiURL, nil, out)
	})
	return err
}

func (c *Client) postJSON(ctx context.Context, apiURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s is err %v", apiURL, err)
	}
	_, err = utils.Retry(fetchAttempts, func() (any, error) {
		return nil, c.doJSON(ctx, http.MethodPost, apiURL, body, nil)
	})
	return err
}

// doJSON performs one attempt. Transient transport and 5xx failures come back
// as plain errors so the retry loop picks them up, anything malformed or
// rejected comes back as a ContextFetchError and aborts immediately.
func (c *Client) doJSON(ctx context.Context, method, apiURL string, body []byte, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, apiURL, reader)
	if err != nil {
		return &ContextFetchError{URL: apiURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := client.HTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("request %s is err %v", apiURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body from %s is err %v", apiURL, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("request %s got status code %d", apiURL, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return &ContextFetchError{URL: apiURL, Err: fmt.Errorf("status code %d, body %s", resp.StatusCode, string(raw))}
	}

	if out == nil {
		return nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return &ContextFetchError{URL: apiURL, Err: fmt.Errorf("unmarshal body %s is err %v", string(raw), err)}
	}
	return nil
}
