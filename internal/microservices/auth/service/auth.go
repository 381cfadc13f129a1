package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
)

var (
	ErrAccountNotFound = fmt.Errorf("%w: account not found, please check your email", domain.ErrNotFound)
	ErrWrongPassword   = fmt.Errorf("%w: incorrect password", domain.ErrUnauthorized)
	ErrRoleMismatch    = fmt.Errorf("%w: access denied", domain.ErrForbidden)
	ErrMissingField    = fmt.Errorf("%w: name, email, password and phone are required", domain.ErrInvalid)
	ErrInvalidToken    = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
)

type Store interface {
	FindUserByEmail(email string) (domain.User, bool)
	AddUser(ctx context.Context, u domain.User) (domain.User, error)
}

type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string, role domain.Role) (Session, error)
	Signup(ctx context.Context, name, email, password, phone string) (Session, error)
	Lookup(email string) (domain.User, error)
	ParseToken(token string) (domain.User, error)
}

type Options struct {
	SharedPassword string
	Secret         []byte
	TTL            time.Duration
	Clock          func() time.Time
}

type AuthService struct {
	store Store
	opts  Options
	lg    *logger.Logger
}

func NewAuthService(store Store, opts Options) AuthServiceInterface {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &AuthService{store: store, opts: opts, lg: logger.New("auth-service")}
}

// Login checks the account, the shared demo password and the portal the
// user picked, in that order.
func (s *AuthService) Login(_ context.Context, email, password string, role domain.Role) (Session, error) {
	u, ok := s.store.FindUserByEmail(email)
	if !ok {
		return Session{}, ErrAccountNotFound
	}
	if password != s.opts.SharedPassword {
		return Session{}, ErrWrongPassword
	}
	if u.Role != role {
		return Session{}, fmt.Errorf("%w: this account is for %s", ErrRoleMismatch, strings.ToUpper(string(u.Role)))
	}
	s.lg.Info("user_logged_in", map[string]any{"user_id": u.ID, "role": u.Role})
	return s.issue(u)
}

// Signup always creates a student. The password is not stored; every
// account signs in with the shared password.
func (s *AuthService) Signup(ctx context.Context, name, email, password, phone string) (Session, error) {
	name, email, phone = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone)
	if name == "" || email == "" || password == "" || phone == "" {
		return Session{}, ErrMissingField
	}
	u, err := s.store.AddUser(ctx, domain.User{Name: name, Email: email, Role: domain.RoleStudent, Phone: phone})
	if err != nil {
		return Session{}, err
	}
	s.lg.Info("user_signed_up", map[string]any{"user_id": u.ID})
	return s.issue(u)
}

func (s *AuthService) Lookup(email string) (domain.User, error) {
	u, ok := s.store.FindUserByEmail(email)
	if !ok {
		return domain.User{}, ErrAccountNotFound
	}
	return u, nil
}

type claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) issue(u domain.User) (Session, error) {
	now := s.opts.Clock()
	exp := now.Add(s.opts.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.opts.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	u.Password = ""
	return Session{User: u, Token: signed, ExpiresAt: exp}, nil
}

func (s *AuthService) ParseToken(raw string) (domain.User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.opts.Clock),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.Atoi(c.Subject)
	if err != nil || !c.Role.Valid() {
		return domain.User{}, ErrInvalidToken
	}
	return domain.User{ID: id, Name: c.Name, Email: c.Email, Role: c.Role}, nil
}
