package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type AuthOptions struct {
	CodeExpiry time.Duration
	CodeLength int
}

type AuthService struct {
	userRepo  ports.UserRepository
	adminRepo ports.AdminRepository
	codeRepo  ports.CodeRepository
	tokens    ports.TokenIssuer
	sender    ports.CodeSender
	limiter   ports.RateLimiter
	opts      AuthOptions
	now       func() time.Time
}

func NewAuthService(
	userRepo ports.UserRepository,
	adminRepo ports.AdminRepository,
	codeRepo ports.CodeRepository,
	tokens ports.TokenIssuer,
	sender ports.CodeSender,
	limiter ports.RateLimiter,
	opts AuthOptions,
) *AuthService {
	if opts.CodeExpiry <= 0 {
		opts.CodeExpiry = 5 * time.Minute
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = 6
	}
	return &AuthService{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		codeRepo:  codeRepo,
		tokens:    tokens,
		sender:    sender,
		limiter:   limiter,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *AuthService) RequestCode(ctx context.Context, identifier domain.Identifier) error {
	if identifier.IsZero() {
		return fmt.Errorf("%w: either mobile_number or email must be provided", domain.ErrValidation)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "otp:"+identifier.String())
		if err != nil {
			// A broken limiter must not lock everyone out.
			utils.Logger.WithError(err).Warn("Rate limiter unavailable, allowing code request")
		} else if !allowed {
			return fmt.Errorf("%w: wait before requesting another code", domain.ErrRateLimited)
		}
	}

	code, err := utils.RandomNumericString(s.opts.CodeLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &domain.OneTimeCode{
		ID:        uuid.New(),
		Code:      code,
		ExpiresAt: s.now().Add(s.opts.CodeExpiry),
	}
	if identifier.IsMobile() {
		otp.MobileNumber = &identifier.MobileNumber
	} else {
		otp.Email = &identifier.Email
	}

	if err := s.codeRepo.Create(ctx, otp); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.sender.Send(ctx, identifier, code); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}

// VerifyCode consumes a one-time code and returns a user session token. Users are
// created on their first successful verification.
func (s *AuthService) VerifyCode(ctx context.Context, identifier domain.Identifier, code string) (string, error) {
	if identifier.IsZero() || code == "" {
		return "", fmt.Errorf("%w: identifier and code are required", domain.ErrValidation)
	}

	otp, err := s.codeRepo.Consume(ctx, identifier, code, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to verify code: %w", err)
	}
	if otp == nil {
		return "", fmt.Errorf("%w: invalid or expired code", domain.ErrAuthentication)
	}

	user, err := s.findOrCreateUser(ctx, identifier)
	if err != nil {
		return "", err
	}

	return s.tokens.Issue(domain.TokenClaims{Subject: user.ID.String(), Type: domain.TokenTypeUser})
}

func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (string, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil || !utils.CheckPasswordHash(password, admin.HashedPassword) {
		return "", fmt.Errorf("%w: incorrect username or password", domain.ErrAuthentication)
	}

	return s.tokens.Issue(domain.TokenClaims{Subject: admin.Username, Type: domain.TokenTypeAdmin})
}

func (s *AuthService) AuthenticateUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token, domain.TokenTypeUser)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", domain.ErrAuthentication)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", domain.ErrAuthentication)
	}
	return user, nil
}

func (s *AuthService) AuthenticateAdmin(ctx context.Context, token string) (*domain.Admin, error) {
	claims, err := s.parse(token, domain.TokenTypeAdmin)
	if err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, fmt.Errorf("%w: unknown admin", domain.ErrAuthentication)
	}
	return admin, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*domain.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password cannot be empty", domain.ErrValidation)
	}

	existing, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: admin with username %q", domain.ErrConflict, username)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.Admin{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hash,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) parse(token string, expected domain.TokenType) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrAuthentication)
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != expected || claims.Subject == "" {
		return nil, fmt.Errorf("%w: could not validate credentials", domain.ErrAuthentication)
	}
	return claims, nil
}

func (s *AuthService) findOrCreateUser(ctx context.Context, identifier domain.Identifier) (*domain.User, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// Only the identifier the code was delivered to is proven, so it is the only
	// one stored.
	user = &domain.User{ID: uuid.New()}
	if identifier.IsMobile() {
		user.MobileNumber = &identifier.MobileNumber
	} else {
		user.Email = &identifier.Email
	}

	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent first login.
		user, err = s.userRepo.GetByIdentifier(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("%w: %s is registered to another user", domain.ErrConflict, identifier)
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	utils.Logger.WithField("user_id", user.ID).Info("User created on first login")
	return user, nil
}
