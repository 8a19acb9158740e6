package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// Principal is the authenticated caller as established by the JWT
// middleware. The core trusts it; credentials are never re-verified here.
type Principal struct {
	ID   int
	Role string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// FromCtx extracts the user_id and role claims from the JWT token the
// jwtware middleware stored in c.Locals("user").
func FromCtx(c *fiber.Ctx) (Principal, error) {
	u := c.Locals("user")
	if u == nil {
		return Principal{}, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return Principal{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fiber.ErrUnauthorized
	}

	id, err := intClaim(claims, "user_id")
	if err != nil {
		return Principal{}, err
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleCustomer
	}

	return Principal{ID: id, Role: role}, nil
}

func intClaim(claims jwt.MapClaims, key string) (int, error) {
	raw, ok := claims[key]
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}
