package ports

import (
	"context"

	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

type TokenIssuer interface {
	Issue(claims domain.TokenClaims) (string, error)
	Parse(token string) (*domain.TokenClaims, error)
}

type CodeSender interface {
	Send(ctx context.Context, identifier domain.Identifier, code string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type AuthService interface {
	RequestCode(ctx context.Context, identifier domain.Identifier) error
	VerifyCode(ctx context.Context, identifier domain.Identifier, code string) (string, error)
	AdminLogin(ctx context.Context, username, password string) (string, error)
	AuthenticateUser(ctx context.Context, token string) (*domain.User, error)
	AuthenticateAdmin(ctx context.Context, token string) (*domain.Admin, error)
	CreateAdmin(ctx context.Context, username, password string) (*domain.Admin, error)
}
