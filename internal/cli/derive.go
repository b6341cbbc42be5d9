package cli

import (
	"github.com/spf13/cobra"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
	"github.com/congo-pay/anchor_vault/internal/vault"
)

type deriveOutput struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	ProgramID string `json:"program_id"`
}

// NewDeriveCommand creates the derive command. Derivation runs locally; no server is contacted.
func NewDeriveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "derive OWNER",
		Short: "Print the vault address for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := pubkey.Parse(args[0])
			if err != nil {
				return err
			}
			programID, err := opts.programID()
			if err != nil {
				return err
			}
			d, err := vault.NewDeriver(programID).Derive(owner)
			if err != nil {
				return err
			}
			out := deriveOutput{
				Owner:     owner.String(),
				Address:   d.Address.String(),
				Bump:      d.Bump,
				ProgramID: programID.String(),
			}
			return render(cmd.OutOrStdout(), opts.Format, out, []field{
				{"owner", out.Owner},
				{"address", out.Address},
				{"bump", out.Bump},
				{"program", out.ProgramID},
			})
		},
	}
}
