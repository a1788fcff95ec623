package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/client"
	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/datastore"
	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/utils"
)

const (
	requestAttempts = 3
	defaultTimeout  = 20 * time.Second
	defaultCooldown = 30 * time.Second
	defaultCacheTTL = 30 * time.Minute
)

// ErrRateLimited is returned when the oracle keeps rate limiting after the
// cooldown retry. Callers degrade to no signal instead of failing the guard.
var ErrRateLimited = errors.New("reputation oracle is rate limited")

// HardError is any oracle status outside the known success / retry /
// not-applicable set. It is fatal for the guard invocation, never silently
// converted into a pass.
type HardError struct {
	Code    int
	Message string
}

func (e *HardError) Error() string {
	return fmt.Sprintf("reputation oracle got hard error code %d: %s", e.Code, e.Message)
}

// Client queries the reputation oracle for address, token and NFT security
// verdicts. One cooldown retry on rate limiting, then partial data is
// accepted.
type Client struct {
	baseURL     string
	accessToken string
	chainID     int64
	limiter     Limiter
	timeout     time.Duration
	cacheTTL    time.Duration
}

func NewClient(limiter Limiter) *Client {
	timeout := defaultTimeout
	if config.Conf.Oracle.TimeoutSeconds > 0 {
		timeout = time.Duration(config.Conf.Oracle.TimeoutSeconds) * time.Second
	}
	cacheTTL := defaultCacheTTL
	if config.Conf.Oracle.CacheTTLMinutes > 0 {
		cacheTTL = time.Duration(config.Conf.Oracle.CacheTTLMinutes) * time.Minute
	}
	if limiter == nil {
		cooldown := defaultCooldown
		if config.Conf.Oracle.CooldownSeconds > 0 {
			cooldown = time.Duration(config.Conf.Oracle.CooldownSeconds) * time.Second
		}
		limiter = NewFixedCooldownLimiter(cooldown)
	}
	return &Client{
		baseURL:     strings.TrimRight(config.Conf.Oracle.BaseURL, "/"),
		accessToken: config.Conf.Oracle.AccessToken,
		chainID:     config.Conf.Chain.ID,
		limiter:     limiter,
		timeout:     timeout,
		cacheTTL:    cacheTTL,
	}
}

// AddressSecurity returns the oracle's reputation flags for an address, nil
// when the oracle has nothing to say about it.
func (c *Client) AddressSecurity(ctx context.Context, address string) (*model.AddressSecurity, error) {
	apiURL := fmt.Sprintf("%s/api/v1/address_security/%s?chain_id=%d", c.baseURL, strings.ToLower(address), c.chainID)
	return fetchSecurity[model.AddressSecurity](c, ctx, apiURL, c.cacheKey("address_security", address))
}

// TokenSecurity returns the fungible-token security flags for a contract,
// nil when the address is not a token contract.
func (c *Client) TokenSecurity(ctx context.Context, address string) (*model.TokenSecurity, error) {
	apiURL := fmt.Sprintf("%s/api/v1/token_security/%d?contract_addresses=%s", c.baseURL, c.chainID, strings.ToLower(address))
	return fetchSecurity[model.TokenSecurity](c, ctx, apiURL, c.cacheKey("token_security", address))
}

// NFTSecurity returns the NFT-contract security flags, nil when the address
// is not an NFT contract.
func (c *Client) NFTSecurity(ctx context.Context, address string) (*model.NFTSecurity, error) {
	apiURL := fmt.Sprintf("%s/api/v1/nft_security/%d?contract_addresses=%s", c.baseURL, c.chainID, strings.ToLower(address))
	return fetchSecurity[model.NFTSecurity](c, ctx, apiURL, c.cacheKey("nft_security", address))
}

func (c *Client) cacheKey(kind, address string) string {
	return fmt.Sprintf("oracle:%s:%d:%s", kind, c.chainID, strings.ToLower(address))
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  *T     `json:"result"`
}

func fetchSecurity[T any](c *Client, ctx context.Context, apiURL, cacheKey string) (*T, error) {
	if cached := readCache[T](ctx, cacheKey); cached != nil {
		return cached, nil
	}

	result, err := requestSecurity[T](c, ctx, apiURL)
	if errors.Is(err, ErrRateLimited) {
		c.limiter.Cooldown(ctx)
		result, err = requestSecurity[T](c, ctx, apiURL)
		if errors.Is(err, ErrRateLimited) {
			logrus.Infof("oracle is still rate limited for %s, accept no data", apiURL)
			return nil, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if result != nil {
		writeCache(ctx, cacheKey, result, c.cacheTTL)
	}
	return result, nil
}

func requestSecurity[T any](c *Client, ctx context.Context, apiURL string) (*T, error) {
	raw, err := utils.Retry(requestAttempts, func() (any, error) {
		return c.doRequest(ctx, apiURL)
	})
	if err != nil {
		return nil, err
	}

	resp := envelope[T]{}
	if err = json.Unmarshal(raw.([]byte), &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal oracle body is err %v", utils.ErrNotRetryable, err)
	}

	switch resp.Code {
	case model.OracleCodeSuccess:
		return resp.Result, nil
	case model.OracleCodePartialData:
		if resp.Result != nil {
			return resp.Result, nil
		}
		return nil, ErrRateLimited
	case model.OracleCodeTooManyRequests:
		return nil, ErrRateLimited
	case model.OracleCodeNonContract, model.OracleCodeNoData:
		return nil, nil
	default:
		return nil, &HardError{Code: resp.Code, Message: resp.Message}
	}
}

func (c *Client) doRequest(ctx context.Context, apiURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: compose oracle request is err %v", utils.ErrNotRetryable, err)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", c.accessToken)
	}

	resp, err := client.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s is err %v", apiURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read oracle body from %s is err %v", apiURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s got status code %d", apiURL, resp.StatusCode)
	}
	return raw, nil
}

func readCache[T any](ctx context.Context, cacheKey string) *T {
	if !datastore.RedisEnabled() {
		return nil
	}
	raw, err := datastore.Redis().Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil
	}
	result := new(T)
	if err = json.Unmarshal(raw, result); err != nil {
		return nil
	}
	return result
}

func writeCache[T any](ctx context.Context, cacheKey string, result *T, ttl time.Duration) {
	if !datastore.RedisEnabled() {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err = datastore.Redis().Set(ctx, cacheKey, raw, ttl).Err(); err != nil {
		logrus.Errorf("cache oracle result %s is err %v", cacheKey, err)
	}
}
