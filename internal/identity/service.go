package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/roadtrack-backend/pkg/auth"
	"github.com/angelmondragon/roadtrack-backend/pkg/auth/session"
	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
	"github.com/angelmondragon/roadtrack-backend/pkg/security"
	"github.com/google/uuid"
)

const invalidCredentialsMessage = "invalid credentials"

// Service is the identity provider: accounts, credentials and bearer tokens.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	Logout(ctx context.Context, accessToken string) error
	VerifyToken(ctx context.Context, accessToken string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error)
}

// Verifier is the slice of Service the auth middleware needs.
type Verifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*User, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID, userID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, userID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id string) (*record, error)
	FindByEmail(ctx context.Context, email string) (*record, error)
	Save(ctx context.Context, rec *record) error
}

// ServiceParams bundles the dependencies required to build the identity service.
type ServiceParams struct {
	Store          kv.Store
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

type service struct {
	users       userRepository
	sessions    sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	dummyHash   string
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       NewRepository(params.Store),
		sessions:    params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		dummyHash:   security.DummyHash(params.PasswordConfig),
		now:         now,
	}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" || req.Role == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required fields")
	}
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now().UTC()
	rec := &record{
		User: User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}
	if err := s.users.Save(ctx, rec); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return &rec.User, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	rec, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = security.VerifyPassword(req.Password, s.dummyHash)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := security.VerifyPassword(req.Password, rec.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	accessID := session.NewAccessID()
	refreshToken, err := s.sessions.Generate(ctx, accessID, rec.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return s.issue(rec.User, accessID, refreshToken)
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	userID := claims.UserID.String()
	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, userID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return s.issue(rec.User, newAccessID, newRefresh)
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// VerifyToken validates the bearer token, checks the session was not revoked and
// loads the stored user; the role always comes from the stored record.
func (s *service) VerifyToken(ctx context.Context, accessToken string) (*User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	active, err := s.sessions.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}

	rec, err := s.users.FindByID(ctx, claims.UserID.String())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return &rec.User, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	rec, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	rec.Name = name
	rec.UpdatedAt = s.now().UTC()
	if err := s.users.Save(ctx, rec); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return &rec.User, nil
}

func (s *service) issue(user User, accessID, refreshToken string) (*Session, error) {
	uid, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid user id")
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID: uid,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &Session{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
		User:         user.DTO(),
	}, nil
}
