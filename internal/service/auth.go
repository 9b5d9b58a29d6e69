package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/store"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; the two cases are deliberately indistinguishable so the
	// login endpoint cannot be used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is returned when a required input field is empty.
	ErrValidation = errors.New("missing required field")
)

// AdminPrincipal is the verified identity carried by an admin credential.
type AdminPrincipal struct {
	AdminID int64
	Email   string
}

// AuthService registers and authenticates administrators and issues the
// signed, time-limited bearer credentials that gate the protected reads.
type AuthService struct {
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates an AuthService. A non-positive tokenTTL falls back
// to one hour.
func NewAuthService(st *store.Store, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// TokenTTL returns the lifetime of issued credentials.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a new administrator with a bcrypt-hashed password.
// Returns store.ErrDuplicate when the email is already registered.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.Admin, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Login verifies the password against the stored bcrypt hash and issues a
// signed session credential on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(admin.ID, admin.Email)
}

// VerifyToken checks the credential's signature and expiry and returns the
// admin identity it encodes.
func (s *AuthService) VerifyToken(tokenStr string) (*AdminPrincipal, error) {
	claims := &adminClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	return &AdminPrincipal{
		AdminID: claims.AdminID,
		Email:   claims.Email,
	}, nil
}

func (s *AuthService) issueToken(adminID int64, email string) (string, error) {
	now := time.Now()
	claims := adminClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "keygate",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

type adminClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}
