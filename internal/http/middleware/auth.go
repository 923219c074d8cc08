package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"filingapi/internal/config"
)

// Context locals keys populated by Auth for downstream handlers.
const (
	UserIDLocalKey   = "user_id"
	EmailLocalKey    = "user_email"
	FullNameLocalKey = "user_full_name"
	AdminLocalKey    = "user_admin"
)

// Claims carries the authenticated identity inside the JWT.
type Claims struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

// GenerateToken signs a new HS256 token for the given user. The service does
// not issue tokens over HTTP; identity comes from an external issuer sharing
// the same secret. This exists for that issuer's tooling and for tests.
func GenerateToken(userID, email, fullName string, admin bool, cfg config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		Email:    email,
		FullName: fullName,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Auth validates the Bearer token and stores the caller's identity in context
// locals. Requests without a valid token are rejected with 401.
func Auth(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header format")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UserIDLocalKey, claims.Subject)
		c.Locals(EmailLocalKey, claims.Email)
		c.Locals(FullNameLocalKey, claims.FullName)
		c.Locals(AdminLocalKey, claims.Admin)

		return c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin claim.
// Must run after Auth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if admin, _ := c.Locals(AdminLocalKey).(bool); !admin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user's id from context locals.
func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

// CallerEmail returns the authenticated user's email from context locals.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(EmailLocalKey).(string)
	return email
}

// CallerFullName returns the authenticated user's full name from context locals.
func CallerFullName(c *fiber.Ctx) string {
	name, _ := c.Locals(FullNameLocalKey).(string)
	return name
}
