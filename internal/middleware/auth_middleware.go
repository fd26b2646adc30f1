package middleware

import (
	"strings"

	"go-salon-ws/internal/license"
	"go-salon-ws/internal/model"
	"go-salon-ws/internal/repository"
	"go-salon-ws/internal/session"
	"go-salon-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		tokenString := parts[1]

		// Validate token
		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}

		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "Account is deactivated"})
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", claims.Role)
		c.Locals("store_id", claims.StoreID)
		c.Locals("user_permissions", claims.Permissions)

		return c.Next()
	}
}

// RequirePermission checks that the authenticated user holds the given
// permission tag. The live session set is preferred over the token claims so
// a mid-session permission change takes effect without re-login. Admins carry
// the "all" sentinel and pass every check.
func RequirePermission(sessions *session.Registry, tag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID != "" {
			if store := sessions.Get(c.Context(), userID); store != nil && store.IsAuthenticated() {
				if store.HasPermission(tag) {
					return c.Next()
				}
				return c.Status(403).JSON(fiber.Map{
					"error": "Forbidden: requires '" + tag + "' permission",
				})
			}
		}

		// No live session, fall back to the set baked into the token
		permissions, ok := c.Locals("user_permissions").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No permissions found"})
		}

		for _, p := range permissions {
			if p == model.PermissionAll || p == tag {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + tag + "' permission",
		})
	}
}

// RequireLicense blocks license-gated routes when the store's license is not
// active. Requests with no store attached are let through.
func RequireLicense(gate *license.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, _ := c.Locals("store_id").(string)

		status := gate.Check(c.Context(), storeID)
		if !status.Active {
			return c.Status(403).JSON(fiber.Map{
				"error":  "License restricted",
				"reason": status.Reason,
			})
		}

		return c.Next()
	}
}
