package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/anchor_vault/internal/vault"
)

// RegisterVaultRoutes wires vault endpoints.
func RegisterVaultRoutes(r fiber.Router, h *vault.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/vaults")
	if rateLimiter != nil {
		group.Post("/", rateLimiter, h.Initialize)
	} else {
		group.Post("/", h.Initialize)
	}
	group.Get("/:owner/address", h.Address)
	group.Get("/:owner", h.Get)
}
