package middleware

import (
	"errors"
	"strings"

	"staffing-hub/internal/pkg/jwt"
	"staffing-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	CtxUserIDKey    = "user_id"
	CtxActorKindKey = "actor_kind"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized", nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, response.CodeUnauthorized, "Token expired", err)
			}
			return NewAppError(fiber.StatusUnauthorized, response.CodeUnauthorized, "Invalid token", err)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxActorKindKey, claims.Kind)

		return c.Next()
	}
}

// RequireKind rejects callers whose token carries none of kinds.
func RequireKind(kinds ...jwt.ActorKind) fiber.Handler {
	return func(c fiber.Ctx) error {
		kind, _ := c.Locals(CtxActorKindKey).(jwt.ActorKind)
		for _, k := range kinds {
			if kind == k {
				return c.Next()
			}
		}
		return NewAppError(fiber.StatusForbidden, response.CodeForbidden, "Forbidden", nil)
	}
}

// Actor returns the authenticated caller.
func Actor(c fiber.Ctx) (uuid.UUID, jwt.ActorKind, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, "", false
	}
	kind, ok := c.Locals(CtxActorKindKey).(jwt.ActorKind)
	if !ok {
		return uuid.Nil, "", false
	}
	return id, kind, true
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
