package custody

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// 网关划转状态常量
const (
	transferStatusConfirmed = 1 // 已确认
	transferStatusDeclined  = 2 // 已拒绝
)

const defaultTimeoutMS = 5000

// Config 托管网关配置
type Config struct {
	GatewayURL  string // 网关地址，如 https://custody.example.com
	AuthToken   string // API Token
	PoolAccount string // 资金池账户
	TimeoutMS   int    // 单次划转超时（毫秒），超时视同拒绝
}

// Client 托管网关 HTTP 适配器
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建托管网关适配器
func NewClient(cfg Config) (*Client, error) {
	cfg.GatewayURL = strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/")
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	cfg.PoolAccount = strings.TrimSpace(cfg.PoolAccount)
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("%w: auth_token is required", ErrConfigInvalid)
	}
	if cfg.PoolAccount == "" {
		return nil, fmt.Errorf("%w: pool_account is required", ErrConfigInvalid)
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = defaultTimeoutMS
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}, nil
}

// Deposit 将资金从指定账户划入资金池
func (c *Client) Deposit(ctx context.Context, account string, amount string, reference string) error {
	return c.transfer(ctx, "/api/v1/transfer/deposit", map[string]interface{}{
		"from_account": account,
		"to_account":   c.cfg.PoolAccount,
		"amount":       amount,
		"reference":    reference,
	})
}

// Payout 从资金池划出到指定账户
func (c *Client) Payout(ctx context.Context, account string, amount string, reference string) error {
	return c.transfer(ctx, "/api/v1/transfer/payout", map[string]interface{}{
		"from_account": c.cfg.PoolAccount,
		"to_account":   account,
		"amount":       amount,
		"reference":    reference,
	})
}

func (c *Client) transfer(ctx context.Context, path string, params map[string]interface{}) error {
	if c == nil || c.httpClient == nil {
		return ErrConfigInvalid
	}
	if amount, _ := params["amount"].(string); amount == "" {
		return fmt.Errorf("%w: empty amount", ErrConfigInvalid)
	} else if f, err := strconv.ParseFloat(amount, 64); err != nil || f <= 0 {
		return fmt.Errorf("%w: invalid amount", ErrConfigInvalid)
	}

	params["signature"] = Sign(params, c.cfg.AuthToken)

	respBytes, err := c.postJSON(ctx, c.cfg.GatewayURL+path, params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		StatusCode int    `json:"status_code"`
		Message    string `json:"message"`
		Data       struct {
			TransferID string `json:"transfer_id"`
			Status     int    `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Message)
	}
	if resp.Data.Status != transferStatusConfirmed {
		return fmt.Errorf("%w: status %d", ErrTransferDeclined, resp.Data.Status)
	}
	return nil
}

// Sign 生成签名
// 签名规则：
// 1. 筛选所有非空且非 signature 的参数
// 2. 按参数名 ASCII 码从小到大排序
// 3. 按 key=value 格式拼接，使用 & 连接
// 4. 在末尾追加 AuthToken（无 & 符号）
// 5. MD5 加密并转小写
func Sign(params map[string]interface{}, authToken string) string {
	var keys []string
	for k, v := range params {
		if k == "signature" {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, params[k]))
	}

	content := strings.Join(pairs, "&") + authToken
	sum := md5.Sum([]byte(content))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}

func (c *Client) postJSON(ctx context.Context, endpoint string, params map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
