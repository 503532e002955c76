package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"eshop-backend/internal/model"
	"eshop-backend/internal/store"
)

// Claims is the payload of an access token.
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.StandardClaims
}

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

type AuthConfig struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

type AuthService interface {
	// Register hashes password and stores u. The returned user carries no hash.
	Register(ctx context.Context, u model.User, password string) (model.User, error)
	// Login returns the user and a signed token. An unknown email and a wrong
	// password fail with the same model.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (model.User, string, error)
	IssueToken(u model.User) (string, error)
	ParseToken(token string) (*Claims, error)
}

// authService compares unknown emails against dummyHash so both login
// failures pay the bcrypt cost.
type authService struct {
	users     store.UserStore
	cfg       AuthConfig
	dummyHash []byte
}

func NewAuthService(users store.UserStore, cfg AuthConfig) AuthService {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	if err != nil {
		log.Printf("auth: dummy hash: %v", err)
	}
	return &authService{users: users, cfg: cfg, dummyHash: dummy}
}

func (a *authService) Register(ctx context.Context, u model.User, password string) (model.User, error) {
	if password == "" {
		return model.User{}, model.Invalid("password is required")
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return model.User{}, model.Invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	created, err := a.users.Create(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	created.PasswordHash = ""
	return created, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	u, err := a.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, model.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return model.User{}, "", model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, "", model.ErrInvalidCredentials
	}
	u.PasswordHash = ""
	tok, err := a.IssueToken(u)
	if err != nil {
		return model.User{}, "", err
	}
	return u, tok, nil
}

func (a *authService) IssueToken(u model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  u.ID.Hex(),
		IsAdmin: u.IsAdmin,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(a.cfg.TokenTTL).Unix(),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

func (a *authService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", model.ErrUnauthorized)
	}
	if _, err := model.ParseID(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", model.ErrUnauthorized)
	}
	return claims, nil
}
