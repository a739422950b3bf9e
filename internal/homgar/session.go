package homgar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// tokenRefreshWindow 剩余有效期低于该窗口时提前重新登录，
// 保证一个轮询周期内 token 不会过期
const tokenRefreshWindow = 60 * time.Minute

// Session 会话管理器：在任何带认证调用前保证凭证有效
type Session struct {
	client *Client
	creds  *CredentialStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSession 创建会话管理器
func NewSession(client *Client, creds *CredentialStore, logger *zap.Logger) *Session {
	return &Session{
		client: client,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureLoggedIn 确保存在有效凭证
// 以下情况触发重新登录：无缓存凭证、缓存账号与当前账号不一致、
// 剩余有效期不足 tokenRefreshWindow。失败时返回认证错误，
// 调用方不得继续使用过期凭证发起请求。
func (s *Session) EnsureLoggedIn(ctx context.Context, email, password, areaCode string) error {
	current, err := s.creds.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load cached credentials, performing fresh login",
			zap.Error(err),
		)
	}

	if current != nil && current.Email == email &&
		current.TokenExpiresAt.Sub(s.now()) >= tokenRefreshWindow {
		return nil
	}

	result, err := s.client.Login(ctx, email, password, areaCode)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	expiresAt := s.now().Add(time.Duration(result.TokenExpired) * time.Second).UTC()
	if err := s.creds.Store(ctx, &Credentials{
		Email:          email,
		Token:          result.Token,
		TokenExpiresAt: expiresAt,
		RefreshToken:   result.RefreshToken,
	}); err != nil {
		return fmt.Errorf("failed to store credentials after login: %w", err)
	}

	s.logger.Info("Logged in to HomGar API",
		zap.String("email", email),
		zap.Time("token_expires_at", expiresAt),
	)

	return nil
}
