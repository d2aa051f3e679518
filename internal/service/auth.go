package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/notedesk/notedesk/internal/auth"
	"github.com/notedesk/notedesk/internal/cache"
	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/repository"
	"github.com/notedesk/notedesk/internal/tenancy"
)

const lastUsedTimeout = 2 * time.Second

// AuthService handles login, registration and bearer token checks inside
// the tenant bound to the request context.
type AuthService struct {
	users    UserStore
	tokens   TokenStore
	cache    AuthCache
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewAuthService creates an AuthService. A zero tokenTTL issues tokens
// that never expire.
func NewAuthService(users UserStore, tokens TokenStore, authCache AuthCache, tokenTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		cache:    authCache,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "service.auth"),
		metrics:  recorder,
		now:      storedNow,
	}
}

// LoginInput defines login credentials. Abilities optionally narrows the
// issued token; empty means AbilityAll.
type LoginInput struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	Abilities []string `json:"abilities"`
}

// RegisterUserInput defines input for self sign-up inside a tenant.
type RegisterUserInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AuthResult is a user with a freshly issued plaintext token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login verifies credentials within the current tenant and issues a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	abilities, err := requestedAbilities(input.Abilities)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, t.ID, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnPasswordCheck(input.Password)
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user, "login", abilities)
	if err != nil {
		return nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return &AuthResult{User: user, Token: token}, nil
}

// Register creates a user in the current tenant and logs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterUserInput) (*AuthResult, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, t.ID, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, taken("email")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           ulid.Make().String(),
		TenantID:     t.ID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, taken("email")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, user, "register", []string{model.AbilityAll})
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to its principal. The token's user
// must belong to the tenant of ctx; a token minted under another tenant is
// rejected even though it is otherwise valid.
func (s *AuthService) Authenticate(ctx context.Context, plaintext string) (*model.AuthContext, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := auth.ParseToken(plaintext)
	if err != nil {
		return nil, ErrUnauthorized
	}

	cacheKey := auth.QuickHash(plaintext)
	if cached, _ := s.cache.GetAuthContext(ctx, cacheKey); cached != nil {
		if cached.TenantID != t.ID {
			s.logger.Warn("token presented under foreign tenant",
				"token_prefix", cached.TokenPrefix,
				"tenant_id", t.ID,
			)
			return nil, ErrUnauthorized
		}
		return cached, nil
	}

	candidates, err := s.tokens.GetAccessTokensByPrefix(ctx, parsed.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	now := s.now()
	var match *model.AccessToken
	for _, tok := range candidates {
		if tok.IsRevoked() || tok.IsExpired(now) {
			continue
		}
		ok, err := auth.VerifyPassword(plaintext, tok.TokenHash)
		if err == nil && ok {
			match = tok
			break
		}
	}
	if match == nil {
		return nil, ErrUnauthorized
	}

	if match.OwnerTenantID != t.ID {
		s.logger.Warn("token presented under foreign tenant",
			"token_prefix", match.TokenPrefix,
			"tenant_id", t.ID,
		)
		return nil, ErrUnauthorized
	}

	if _, err := s.users.GetUserByID(ctx, t.ID, match.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}

	principal := &model.AuthContext{
		TokenID:     match.ID,
		TokenPrefix: match.TokenPrefix,
		UserID:      match.UserID,
		TenantID:    t.ID,
		Abilities:   match.Abilities,
	}

	ttl := cache.AuthCacheTTL
	if match.ExpiresAt != nil {
		if left := match.ExpiresAt.Sub(now); left < ttl {
			ttl = left
		}
	}
	if err := s.cache.SetAuthContext(ctx, cacheKey, principal, ttl); err != nil {
		if errors.Is(err, cache.ErrAuthRevoked) {
			return nil, ErrUnauthorized
		}
		s.logger.Warn("failed to cache auth context", "error", err)
	}

	s.touchLastUsed(match.ID, now)
	return principal, nil
}

// CurrentUser loads the authenticated user from the current tenant.
func (s *AuthService) CurrentUser(ctx context.Context, principal *model.AuthContext) (*model.User, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, t.ID, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Logout revokes the presented token and evicts it from the cache. The cache
// keeps a revocation marker so an authentication already in flight cannot
// re-cache the token. Other tokens of the user stay valid.
func (s *AuthService) Logout(ctx context.Context, plaintext string, principal *model.AuthContext) error {
	if principal == nil {
		return ErrUnauthorized
	}

	err := s.tokens.RevokeAccessToken(ctx, principal.TokenID, s.now())
	if err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := s.cache.RevokeAuthContext(ctx, auth.QuickHash(plaintext)); err != nil {
		s.logger.Warn("failed to evict auth context", "error", err)
	}
	return nil
}

func (s *AuthService) issueToken(ctx context.Context, user *model.User, name string, abilities []string) (string, error) {
	issued, err := auth.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	token := &model.AccessToken{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		Name:        name,
		TokenHash:   issued.Hash,
		TokenPrefix: issued.Prefix,
		Abilities:   abilities,
		CreatedAt:   now,
	}
	if s.tokenTTL > 0 {
		expires := now.Add(s.tokenTTL)
		token.ExpiresAt = &expires
	}

	if err := s.tokens.CreateAccessToken(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return issued.Plaintext, nil
}

func (s *AuthService) touchLastUsed(tokenID string, at time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), lastUsedTimeout)
		defer cancel()
		if err := s.tokens.UpdateAccessTokenLastUsed(ctx, tokenID, at); err != nil {
			s.logger.Debug("failed to update token last used", "error", err)
		}
	}()
}

// requestedAbilities defaults to AbilityAll and rejects unknown values.
func requestedAbilities(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return []string{model.AbilityAll}, nil
	}

	ve := NewValidationError()
	abilities := make([]string, 0, len(requested))
	for _, a := range requested {
		if !slices.Contains(model.ValidAbilities, a) {
			ve.Add("abilities", fmt.Sprintf("The ability %q is invalid.", a))
			continue
		}
		if !slices.Contains(abilities, a) {
			abilities = append(abilities, a)
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}
	return abilities, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
