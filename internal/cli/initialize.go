package cli

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/congo-pay/anchor_vault/internal/chain"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
	"github.com/congo-pay/anchor_vault/internal/vault"
)

type initOutput struct {
	TransactionID string      `json:"transaction_id,omitempty"`
	Existing      bool        `json:"existing"`
	Vault         vaultRecord `json:"vault"`
}

// NewInitCommand creates the init command, which signs initialize_vault locally and submits it.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	var (
		keypairPath  string
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the vault of the keypair's owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKeypair(keypairPath)
			if err != nil {
				return err
			}
			programID, err := opts.programID()
			if err != nil {
				return err
			}
			out, err := initializeVault(opts.client(), programID, key, skipExisting)
			if err != nil {
				return err
			}
			fields := out.Vault.fields()
			if out.Existing {
				fields = append([]field{{"status", "already initialized"}}, fields...)
			} else {
				fields = append([]field{{"transaction", out.TransactionID}}, fields...)
			}
			return render(cmd.OutOrStdout(), opts.Format, out, fields)
		},
	}

	cmd.Flags().StringVar(&keypairPath, "keypair", "", "path to the owner keypair (JSON array of 64 bytes)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "print the existing vault instead of failing when it is already initialized")
	_ = cmd.MarkFlagRequired("keypair")

	return cmd
}

func initializeVault(c *apiClient, programID pubkey.PublicKey, key ed25519.PrivateKey, skipExisting bool) (initOutput, error) {
	owner, err := pubkey.FromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return initOutput{}, err
	}
	ix, _, err := vault.NewInitializeInstruction(programID, owner)
	if err != nil {
		return initOutput{}, err
	}
	tx := chain.NewTransaction(ix)
	if err := tx.Sign(key); err != nil {
		return initOutput{}, err
	}

	var res struct {
		TransactionID string      `json:"transaction_id"`
		Vault         vaultRecord `json:"vault"`
	}
	err = c.post("/api/v1/vaults", tx, &res)
	if err == nil {
		return initOutput{TransactionID: res.TransactionID, Vault: res.Vault}, nil
	}

	var apiErr *APIError
	if !skipExisting || !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		return initOutput{}, err
	}

	rec, ferr := fetchVault(c, owner)
	if ferr != nil {
		return initOutput{}, fmt.Errorf("%w (fetch existing: %v)", err, ferr)
	}
	if rec.Owner != owner.String() {
		return initOutput{}, fmt.Errorf("vault %s is owned by %s, not %s", rec.Address, rec.Owner, owner)
	}
	return initOutput{Existing: true, Vault: rec}, nil
}
