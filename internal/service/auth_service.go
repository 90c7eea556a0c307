package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	pw "github.com/Gagan3036/compliance-platform-api/internal/password"
	"github.com/Gagan3036/compliance-platform-api/internal/repository"
	"github.com/Gagan3036/compliance-platform-api/internal/token"
)

// AuthService encapsulates registration, login, token rotation, and profile
// management for login identities.
type AuthService struct {
	users     repository.UserRepository
	issuer    *token.Issuer
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, issuer *token.Issuer, node *snowflake.Node, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		issuer:    issuer,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/Gagan3036/compliance-platform-api/internal/service"),
	}
}

// Register creates a new AuthUser and issues its first token pair. The
// company name is stored only for company accounts; userType defaults to
// "user" when unspecified.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, domain.ErrDuplicateEmail
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := pw.Hash(in.Password)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	userType := strings.TrimSpace(in.UserType)
	if userType == "" {
		userType = domain.UserTypeUser
	}

	companyName := ""
	if userType == domain.UserTypeCompany {
		companyName = strings.TrimSpace(in.CompanyName)
	}

	user := domain.AuthUser{
		ID:           s.snowflake.Generate().Int64(),
		Email:        email,
		PasswordHash: hashed,
		UserType:     userType,
		Profile: domain.Profile{
			Name:        strings.TrimSpace(in.Name),
			Phone:       strings.TrimSpace(in.Phone),
			CompanyName: companyName,
			Department:  strings.TrimSpace(in.Department),
			IsActive:    true,
		},
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueAndPersist(ctx, &created)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, err
	}

	s.audit("auth.register.success", "user_id", created.ID, "user_type", created.UserType)
	return AuthResult{User: newUserView(created), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same error; the deactivation check happens after the
// existence check but before the password comparison.
func (s *AuthService) Login(ctx context.Context, email, passwd string) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	if !user.Profile.IsActive {
		return AuthResult{}, domain.ErrAccountDeactivated
	}

	valid, err := pw.Verify(passwd, user.PasswordHash)
	if err != nil || !valid {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLogin = &now

	pair, err := s.issueAndPersist(ctx, &user)
	if err != nil {
		span.RecordError(err)
		return AuthResult{}, err
	}

	s.audit("auth.login.success", "user_id", user.ID)
	return AuthResult{User: newUserView(user), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh rotates the token pair. The presented token must verify, its user
// must exist, and it must equal the refresh token stored on that user; a
// still-valid-but-superseded token fails the equality check.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPairResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Refresh")
	defer span.End()

	if refreshToken == "" {
		return TokenPairResult{}, domain.ErrRefreshTokenMissing
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPairResult{}, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TokenPairResult{}, domain.ErrInvalidRefreshToken
		}
		span.RecordError(err)
		return TokenPairResult{}, fmt.Errorf("load user: %w", err)
	}
	if user.RefreshToken != refreshToken {
		return TokenPairResult{}, domain.ErrInvalidRefreshToken
	}

	pair, err := s.issueAndPersist(ctx, &user)
	if err != nil {
		span.RecordError(err)
		return TokenPairResult{}, err
	}

	s.audit("auth.refresh.success", "user_id", user.ID)
	return TokenPairResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout clears the stored refresh token for whichever user holds the
// presented one. Unknown or empty tokens are a no-op: logout never fails
// for bad input.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := s.startSpan(ctx, "AuthService.Logout")
	defer span.End()

	if refreshToken == "" {
		return nil
	}

	user, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("lookup refresh token: %w", err)
	}

	user.RefreshToken = ""
	if err := s.users.Update(ctx, user); err != nil {
		span.RecordError(err)
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.audit("auth.logout.success", "user_id", user.ID)
	return nil
}

// GetProfile returns the public view of the user identified by an already
// verified access token.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.GetProfile")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserView{}, domain.ErrUserNotFound
		}
		span.RecordError(err)
		return UserView{}, fmt.Errorf("load user: %w", err)
	}
	return newUserView(user), nil
}

// UpdateProfile merges the provided fields into the stored profile. Each
// field is applied only when non-empty, so an empty string cannot clear a
// stored value.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.UpdateProfile")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return UserView{}, domain.ErrUserNotFound
		}
		span.RecordError(err)
		return UserView{}, fmt.Errorf("load user: %w", err)
	}

	if update.Name != "" {
		user.Profile.Name = update.Name
	}
	if update.Phone != "" {
		user.Profile.Phone = update.Phone
	}
	if update.CompanyName != "" {
		user.Profile.CompanyName = update.CompanyName
	}
	if update.Department != "" {
		user.Profile.Department = update.Department
	}

	if err := s.users.Update(ctx, user); err != nil {
		span.RecordError(err)
		return UserView{}, fmt.Errorf("update profile: %w", err)
	}

	s.audit("auth.profile.updated", "user_id", user.ID)
	return newUserView(user), nil
}

// ListUsers returns all login identities for callers holding the
// canViewAllUsers permission.
func (s *AuthService) ListUsers(ctx context.Context, callerID int64) ([]UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ListUsers")
	defer span.End()

	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrForbidden
		}
		span.RecordError(err)
		return nil, fmt.Errorf("load caller: %w", err)
	}
	if !caller.Permissions.CanViewAllUsers {
		return nil, domain.ErrForbidden
	}

	users, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views, nil
}

// issueAndPersist mints a fresh pair and stores the refresh token on the
// user document, invalidating whatever token was active before.
func (s *AuthService) issueAndPersist(ctx context.Context, user *domain.AuthUser) (token.Pair, error) {
	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return token.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}

	user.RefreshToken = pair.RefreshToken
	if err := s.users.Update(ctx, *user); err != nil {
		return token.Pair{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return pair, nil
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.logger
	if logger == nil {
		logger = zap.L()
	}
	fields := make([]zap.Field, 0, len(attrs)/2+1)
	fields = append(fields, zap.String("event", event))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
