package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

type airdropOutput struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

// NewAirdropCommand creates the airdrop command. Only servers with the faucet enabled accept it.
func NewAirdropCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop ADDRESS LAMPORTS",
		Short: "Credit lamports to an address on a local ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := pubkey.Parse(args[0])
			if err != nil {
				return err
			}
			lamports, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lamports %q: %w", args[1], err)
			}

			req := struct {
				Address  pubkey.PublicKey `json:"address"`
				Lamports uint64           `json:"lamports"`
			}{Address: addr, Lamports: lamports}

			var out airdropOutput
			if err := opts.client().post("/api/v1/airdrop", req, &out); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.Format, out, []field{
				{"address", out.Address},
				{"balance", out.Lamports},
			})
		},
	}
}
