package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenTypeAccess = "access"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// ActorKind is the caller's role in the staffing workflow.
type ActorKind string

const (
	ActorEmployee ActorKind = "EMPLOYEE"
	ActorManager  ActorKind = "MANAGER"
	ActorAdmin    ActorKind = "ADMIN"
)

func (k ActorKind) Valid() bool {
	switch k {
	case ActorEmployee, ActorManager, ActorAdmin:
		return true
	}
	return false
}

func ParseActorKind(raw string) (ActorKind, bool) {
	k := ActorKind(strings.ToUpper(strings.TrimSpace(raw)))
	return k, k.Valid()
}

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Kind      ActorKind `json:"kind"`
	TokenType string    `json:"token_type"`

	jwtlib.RegisteredClaims
}

// Service validates access tokens issued by the identity provider.
// GenerateAccessToken exists for local tooling and tests.
type Service interface {
	GenerateAccessToken(userID uuid.UUID, kind ActorKind) (string, error)
	ValidateToken(tokenString string) (Claims, error)
}

type HMACService struct {
	accessSecret    []byte
	accessExpiresIn time.Duration

	now func() time.Time
}

func NewHMACService(accessSecret string, accessExpiresIn time.Duration) *HMACService {
	return &HMACService{
		accessSecret:    []byte(accessSecret),
		accessExpiresIn: accessExpiresIn,
		now:             time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, kind ActorKind) (string, error) {
	if len(s.accessSecret) == 0 || s.accessExpiresIn <= 0 || !kind.Valid() {
		return "", ErrTokenInvalid
	}

	now := s.now().UTC()
	c := Claims{
		UserID:    userID,
		Kind:      kind,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessExpiresIn)),
			Subject:   userID.String(),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	return t.SignedString(s.accessSecret)
}

func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithExpirationRequired(),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return s.accessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if c.TokenType != TokenTypeAccess || c.UserID == uuid.Nil || !c.Kind.Valid() {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}
