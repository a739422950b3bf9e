package homgar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homgar-monitor/internal/devices"
	"homgar-monitor/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIError HomGar API 返回的非零状态码错误
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	s := fmt.Sprintf("HomGar API returned code %d", e.Code)
	if e.Msg != "" {
		s += fmt.Sprintf(" (%q)", e.Msg)
	}
	return s
}

// apiResponse HomGar API 响应包络
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// LoginResult 登录接口返回的数据
type LoginResult struct {
	Token        string `json:"token"`
	TokenExpired int64  `json:"tokenExpired"` // token 有效期（秒）
	RefreshToken string `json:"refreshToken"`
}

// Client HomGar 厂家 API 客户端
// 认证 token 在每次请求时从凭证存储懒读取，
// 周期中途重新登录后立即生效
type Client struct {
	httpClient *resty.Client
	creds      *CredentialStore
	logger     *zap.Logger
}

// NewClient 创建 HomGar 客户端
func NewClient(baseURL string, creds *CredentialStore, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("lang", "en").
		SetHeader("appCode", "1")

	return &Client{
		httpClient: client,
		creds:      creds,
		logger:     logger,
	}
}

// Login 执行登录交换，返回新凭证数据（不写入凭证存储，由 Session 负责）
// 厂家协议要求密码的 md5 十六进制摘要与每次请求随机的设备标识
func (c *Client) Login(ctx context.Context, email, password, areaCode string) (*LoginResult, error) {
	digest := md5.Sum([]byte(password))
	body := map[string]string{
		"areaCode":     areaCode,
		"phoneOrEmail": email,
		"password":     hex.EncodeToString(digest[:]),
		"deviceId":     strings.ReplaceAll(uuid.NewString(), "-", ""),
	}

	c.logger.Info("Calling HomGar API: login",
		zap.String("email", email),
	)

	var response apiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&response).
		Post("/auth/basic/app/login")

	if err != nil {
		return nil, fmt.Errorf("failed to call HomGar login API: %w", err)
	}

	if response.Code != 0 {
		c.logger.Error("HomGar login returned error",
			zap.Int("code", response.Code),
			zap.String("msg", response.Msg),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, &APIError{Code: response.Code, Msg: response.Msg}
	}

	var result LoginResult
	if err := json.Unmarshal(response.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login response carries no token")
	}

	return &result, nil
}

// ListHomes 获取账号下的所有家庭
func (c *Client) ListHomes(ctx context.Context) ([]models.Home, error) {
	var homes []models.Home
	if err := c.getJSON(ctx, "/app/member/appHome/list", nil, &homes); err != nil {
		return nil, fmt.Errorf("failed to list homes: %w", err)
	}
	return homes, nil
}

// ListDevices 获取家庭下的设备树（hub 及其子设备）
func (c *Client) ListDevices(ctx context.Context, hid int64) ([]devices.DeviceListing, error) {
	params := map[string]string{"hid": strconv.FormatInt(hid, 10)}

	var listing []devices.DeviceListing
	if err := c.getJSON(ctx, "/app/device/getDeviceByHid", params, &listing); err != nil {
		return nil, fmt.Errorf("failed to list devices for home %d: %w", hid, err)
	}
	return listing, nil
}

// GetDeviceStatus 按 mid 获取一个 hub 及其子设备的实时状态
func (c *Client) GetDeviceStatus(ctx context.Context, mid int64) (*devices.StatusPayload, error) {
	params := map[string]string{"mid": strconv.FormatInt(mid, 10)}

	var payload devices.StatusPayload
	if err := c.getJSON(ctx, "/app/device/getDeviceStatus", params, &payload); err != nil {
		return nil, fmt.Errorf("failed to get status for module %d: %w", mid, err)
	}
	return &payload, nil
}

// getJSON 发起带认证的 GET 请求并解析 data 字段
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, dest interface{}) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}

	c.logger.Debug("Calling HomGar API",
		zap.String("path", path),
	)

	var response apiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("auth", token).
		SetQueryParams(params).
		SetResult(&response).
		Get(path)

	if err != nil {
		return fmt.Errorf("failed to call HomGar API %s: %w", path, err)
	}

	if response.Code != 0 {
		c.logger.Error("HomGar API returned error",
			zap.String("path", path),
			zap.Int("code", response.Code),
			zap.String("msg", response.Msg),
			zap.Int("status_code", resp.StatusCode()),
		)
		return &APIError{Code: response.Code, Msg: response.Msg}
	}

	if dest != nil && len(response.Data) > 0 {
		if err := json.Unmarshal(response.Data, dest); err != nil {
			return fmt.Errorf("failed to unmarshal HomGar API response for %s: %w", path, err)
		}
	}

	return nil
}
