package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// maxAirdropLamports caps a single faucet request at 1000 SOL.
const maxAirdropLamports = 1_000_000_000_000

// RegisterAccountRoutes exposes raw ledger accounts and, in local environments, a faucet.
func RegisterAccountRoutes(r fiber.Router, l ledger.Ledger, airdropEnabled bool, logger *slog.Logger) {
	r.Get("/accounts/:address", func(c *fiber.Ctx) error {
		addr, err := pubkey.Parse(c.Params("address"))
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acct, err := l.Account(c.UserContext(), addr)
		if err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return fiber.NewError(http.StatusNotFound, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"address":     acct.Address.String(),
			"owner":       acct.Owner.String(),
			"lamports":    acct.Lamports,
			"data_length": len(acct.Data),
		})
	})

	if !airdropEnabled {
		return
	}

	r.Post("/airdrop", func(c *fiber.Ctx) error {
		var req struct {
			Address  pubkey.PublicKey `json:"address"`
			Lamports uint64           `json:"lamports"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.Lamports == 0 || req.Lamports > maxAirdropLamports {
			return fiber.NewError(http.StatusBadRequest, "lamports must be between 1 and 1000000000000")
		}
		balance, err := l.Airdrop(c.UserContext(), req.Address, req.Lamports)
		if err != nil {
			if errors.Is(err, ledger.ErrIllegalOwner) || errors.Is(err, ledger.ErrLamportsOverflow) {
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if logger != nil {
			logger.Info("airdrop completed",
				slog.String("address", req.Address.String()),
				slog.Uint64("lamports", req.Lamports),
				slog.Uint64("balance", balance),
			)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"address":  req.Address.String(),
			"lamports": balance,
		})
	})
}
