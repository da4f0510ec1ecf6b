package middleware

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/agendafacil/agenda-api/auth"
	"github.com/agendafacil/agenda-api/models"
)

// ClaimsKey is where Protected stores the verified claim set in the
// request locals.
const ClaimsKey = "claims"

// TokenDenylist answers whether a token has been revoked by logout.
type TokenDenylist interface {
	Revoked(ctx context.Context, token string) (bool, error)
}

// Protected verifies the Bearer token and loads its typed claims into the
// request locals. Tokens revoked through the denylist are rejected even
// while still within their expiry window. A nil denylist skips that
// check.
func Protected(tokens *auth.TokenService, denylist TokenDenylist) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   tokens.Secret(),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, auth.ErrInvalidToken.Error())
			}

			if denylist != nil {
				revoked, err := denylist.Revoked(c.Context(), token.Raw)
				if err != nil {
					// Fail open: a denylist outage must not lock every
					// account out, so the token is only rejected when the
					// lookup positively confirms revocation.
					log.Printf("Denylist lookup failed: %v", err)
				} else if revoked {
					return unauthorized(c, auth.ErrInvalidToken.Error())
				}
			}

			mapClaims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, auth.ErrInvalidToken.Error())
			}
			claims, err := auth.ClaimsFromMap(mapClaims)
			if err != nil {
				return unauthorized(c, auth.ErrInvalidToken.Error())
			}

			c.Locals(ClaimsKey, claims)
			return c.Next()
		},
	})
}

// RequireRoles applies the role gate to the claims left by Protected.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(ClaimsKey).(auth.Claims)
		if !ok {
			return unauthorized(c, auth.ErrMissingToken.Error())
		}
		if err := claims.Allowed(roles...); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the claim set stored by Protected.
func ClaimsFromCtx(c *fiber.Ctx) (auth.Claims, bool) {
	claims, ok := c.Locals(ClaimsKey).(auth.Claims)
	return claims, ok
}

func jwtError(c *fiber.Ctx, err error) error {
	// jwtware exports no sentinel for the missing-token case; its own
	// default handler compares the message the same way.
	if err.Error() == "Missing or malformed JWT" {
		return unauthorized(c, auth.ErrMissingToken.Error())
	}
	return unauthorized(c, auth.ErrInvalidToken.Error())
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
	})
}
