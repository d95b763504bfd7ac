// Package cli implements electionctl, the operator tool for the election
// service database.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the backend factory shared by every
// command.
type RootOptions struct {
	Format  string
	Connect ConnectFunc
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates electionctl backed by the configured database.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(Connect)
}

// NewRootCommandWith lets tests swap the backend.
func NewRootCommandWith(connect ConnectFunc) *cobra.Command {
	opts := &RootOptions{Connect: connect}

	cmd := &cobra.Command{
		Use:   "electionctl",
		Short: "Operate the campus election service",
		Long: `electionctl runs maintenance tasks against the election database:
schema migration, bootstrapping administrators, reopening a voter's ballot
and printing results.

Configuration is read the same way as the server (configs/config.<ENV>.yaml
plus environment overrides).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewResetVoterCommand(opts))
	cmd.AddCommand(NewTallyCommand(opts))

	return cmd
}

// withBackend opens the backend for one command run and closes it after.
func (o *RootOptions) withBackend(ctx context.Context, fn func(b *Backend) error) error {
	b, err := o.Connect(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
