package vault

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/anchor_vault/internal/chain"
	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// Handler exposes vault HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a vault HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addressResponse struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	ProgramID string `json:"program_id"`
}

type vaultResponse struct {
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	Owner     string `json:"owner"`
	CreatedAt int64  `json:"created_at"`
	Value     uint64 `json:"value"`
}

type initializeResponse struct {
	TransactionID string        `json:"transaction_id"`
	Vault         vaultResponse `json:"vault"`
}

// Address returns the derived vault address for an owner.
func (h *Handler) Address(c *fiber.Ctx) error {
	owner, err := pubkey.Parse(c.Params("owner"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	derived, err := h.service.Address(owner)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(addressResponse{
		Owner:     owner.String(),
		Address:   derived.Address.String(),
		Bump:      derived.Bump,
		ProgramID: h.service.ProgramID().String(),
	})
}

// Get returns the vault record for an owner.
func (h *Handler) Get(c *fiber.Ctx) error {
	owner, err := pubkey.Parse(c.Params("owner"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	v, err := h.service.Get(c.UserContext(), owner)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(v))
}

// Initialize submits a signed initialize_vault transaction.
func (h *Handler) Initialize(c *fiber.Ctx) error {
	var tx chain.Transaction
	if err := c.BodyParser(&tx); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Initialize(c.UserContext(), &tx)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(initializeResponse{
		TransactionID: res.TransactionID,
		Vault:         toResponse(res.Vault),
	})
}

func toResponse(v Vault) vaultResponse {
	return vaultResponse{
		Address:   v.Address.String(),
		Bump:      v.Bump,
		Owner:     v.Owner.String(),
		CreatedAt: v.CreatedAt,
		Value:     v.Value,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidVaultAddress),
		errors.Is(err, ErrNotEnoughAccountKeys),
		errors.Is(err, ErrInvalidProgramID),
		errors.Is(err, ErrInstructionFallbackNotFound),
		errors.Is(err, ErrAccountNotWritable),
		errors.Is(err, chain.ErrMissingInstruction),
		errors.Is(err, chain.ErrInstructionTooLarge),
		errors.Is(err, chain.ErrUnknownProgram),
		errors.Is(err, pubkey.ErrMaxSeedLengthExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingSignerAuthorization),
		errors.Is(err, chain.ErrSignatureVerificationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyInitialized),
		errors.Is(err, ledger.ErrAddressAlreadyInUse):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrClockUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrAccountOwnedByWrongProgram),
		errors.Is(err, ErrConstraintSeeds),
		errors.Is(err, ErrAccountDiscriminatorMismatch),
		errors.Is(err, ErrAccountDidNotDeserialize):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
