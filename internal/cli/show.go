package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// vaultRecord mirrors the API's vault representation.
type vaultRecord struct {
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	Owner     string `json:"owner"`
	CreatedAt int64  `json:"created_at"`
	Value     uint64 `json:"value"`
}

func (v vaultRecord) fields() []field {
	return []field{
		{"address", v.Address},
		{"bump", v.Bump},
		{"owner", v.Owner},
		{"created_at", time.Unix(v.CreatedAt, 0).UTC().Format(time.RFC3339)},
		{"value", v.Value},
	}
}

func fetchVault(c *apiClient, owner pubkey.PublicKey) (vaultRecord, error) {
	var rec vaultRecord
	err := c.get("/api/v1/vaults/"+owner.String(), &rec)
	return rec, err
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show OWNER",
		Short: "Fetch the vault record of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := pubkey.Parse(args[0])
			if err != nil {
				return err
			}
			rec, err := fetchVault(opts.client(), owner)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.Format, rec, rec.fields())
		},
	}
}
