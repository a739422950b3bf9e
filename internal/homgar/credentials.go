package homgar

import (
	"context"
	"fmt"
	"time"

	"homgar-monitor/internal/cache"

	"github.com/go-redis/redis/v8"
)

// credentialsKey 凭证在 Redis 中的键
const credentialsKey = "homgar:auth:credentials"

// Credentials 进程级厂家 API 凭证，整体原子替换
type Credentials struct {
	Email          string    `json:"email"`
	Token          string    `json:"token"`
	TokenExpiresAt time.Time `json:"token_expires_at"` // 绝对时间（UTC）
	RefreshToken   string    `json:"refresh_token"`
}

// CredentialStore Redis 凭证存储
type CredentialStore struct {
	client *redis.Client
}

// NewCredentialStore 创建凭证存储
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

// Load 读取当前凭证；无缓存凭证时返回 (nil, nil)
func (s *CredentialStore) Load(ctx context.Context) (*Credentials, error) {
	var creds Credentials
	if err := cache.GetJSON(ctx, s.client, credentialsKey, &creds); err != nil {
		if err == cache.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return &creds, nil
}

// Store 原子替换凭证（单键写入）
func (s *CredentialStore) Store(ctx context.Context, creds *Credentials) error {
	if err := cache.SetJSON(ctx, s.client, credentialsKey, creds, 0); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

// Token 返回当前缓存的 token；无凭证时报错，调用方必须先登录
func (s *CredentialStore) Token(ctx context.Context) (string, error) {
	creds, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if creds == nil || creds.Token == "" {
		return "", fmt.Errorf("no cached auth token, login required")
	}
	return creds.Token, nil
}
