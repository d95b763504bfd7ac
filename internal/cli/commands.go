package cli

import (
	"fmt"
	"os"
	"strconv"

	"election-service/internal/admin"
	"election-service/internal/validation"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables, constraints and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withBackend(cmd.Context(), func(b *Backend) error {
				if err := b.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}

type CreateAdminOptions struct {
	*RootOptions
	Username string
	Email    string
	Password string
	Role     string
}

func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateAdminOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Create an administrator account. Use it once to bootstrap the first
superadmin; further admins can be managed over the API.

The password may be given with --password or the ELECTIONCTL_PASSWORD
environment variable.

Examples:
  electionctl create-admin --username registrar --role superadmin
  electionctl create-admin --username clerk --email clerk@uni.edu --password s3cretpass`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Password == "" {
				opts.Password = os.Getenv("ELECTIONCTL_PASSWORD")
			}
			req := admin.CreateAdminRequest{
				Username: opts.Username,
				Email:    opts.Email,
				Password: opts.Password,
				Role:     opts.Role,
			}
			if err := validation.New().Struct(&req); err != nil {
				return fmt.Errorf("invalid admin: %w", err)
			}

			return opts.withBackend(cmd.Context(), func(b *Backend) error {
				created, err := b.Admins.CreateAdmin(cmd.Context(), req)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", created.Role, created.Username, created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&opts.Role, "role", admin.RoleSuperAdmin, "admin or superadmin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

type ResetVoterOptions struct {
	*RootOptions
	ElectionID int
}

func NewResetVoterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetVoterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset-voter <voter-id>",
		Short: "Delete a voter's votes and reopen their ballot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			voterID, err := strconv.Atoi(args[0])
			if err != nil || voterID <= 0 {
				return fmt.Errorf("invalid voter id %q", args[0])
			}

			return opts.withBackend(cmd.Context(), func(b *Backend) error {
				removed, err := b.Votes.ResetVoter(cmd.Context(), voterID, opts.ElectionID)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), map[string]int{"voterId": voterID, "votesRemoved": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "voter %d reset, %d vote(s) removed\n", voterID, removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&opts.ElectionID, "election", 0, "election id (default: the active election)")
	return cmd
}

type TallyOptions struct {
	*RootOptions
	ElectionID int
}

func NewTallyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TallyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Print the results of an election",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBackend(cmd.Context(), func(b *Backend) error {
				results, err := b.Votes.Results(cmd.Context(), opts.ElectionID)
				if err != nil {
					return err
				}
				return writeResults(cmd.OutOrStdout(), opts.Format, results)
			})
		},
	}

	cmd.Flags().IntVar(&opts.ElectionID, "election", 0, "election id (default: the active election)")
	return cmd
}
