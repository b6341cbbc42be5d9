package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

const (
	defaultServer    = "http://localhost:8080"
	defaultProgramID = "C1Hj34Yrhc2R4vnFbRtABeoRLozAnx9VhgpScg3hHuHp"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server    string
	ProgramID string
	Format    string // "json" | "text"
	Timeout   time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for vaultctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "vaultctl",
		Short:        "Manage owner-bound vaults",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := opts.programID(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", defaultServer, "vault API base URL")
	cmd.PersistentFlags().StringVar(&opts.ProgramID, "program-id", defaultProgramID, "vault program id (base58)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")

	cmd.AddCommand(NewDeriveCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))

	return cmd
}

func (o *RootOptions) programID() (pubkey.PublicKey, error) {
	id, err := pubkey.Parse(o.ProgramID)
	if err != nil {
		return pubkey.PublicKey{}, fmt.Errorf("invalid --program-id: %w", err)
	}
	return id, nil
}

func (o *RootOptions) client() *apiClient {
	return &apiClient{baseURL: o.Server, timeout: o.Timeout}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
