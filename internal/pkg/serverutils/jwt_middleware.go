package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtSecret resolves the session signing key. The fallback keeps local
// development working without an env file; production must set JWT_SECRET.
func JwtSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return "devmate-dev-secret"
}

// JwtMiddleware authenticates the request from the session cookie, falling
// back to a Bearer header for non-browser clients, and stores the caller's id
// in ctx.Locals("user_id").
func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := ctx.Cookies("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	claims, err := ParseToken(tokenStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	ctx.Locals("user_id", claims["user_id"])
	if firstName, ok := claims["first_name"]; ok {
		ctx.Locals("first_name", firstName)
	}
	return ctx.Next()
}

// ParseToken validates a signed session token and returns its claims. It is
// shared with the websocket upgrade path, which cannot run fiber middleware
// after hijacking the connection.
func ParseToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(JwtSecret()), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
