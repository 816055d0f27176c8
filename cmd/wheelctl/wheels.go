package main

import (
	"fmt"
	"strconv"
	"time"

	"axon-backend/domain/core/aggregates"
	"axon-backend/pkg/auth"

	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the caller's wheels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wheels, err := a.client().ListWheels(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), wheels)
			}
			if len(wheels) == 0 {
				warn.Fprintln(cmd.OutOrStdout(), "No wheels")
				return nil
			}
			table(cmd.OutOrStdout(), []string{"ID", "TITLE", "NODES", "VISIBILITY", "MODIFIED"}, wheelRows(wheels))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw documents")
	return cmd
}

func wheelRows(wheels []aggregates.WheelDocument) [][]string {
	rows := make([][]string, 0, len(wheels))
	for _, w := range wheels {
		modified := "-"
		if w.LastModified > 0 {
			modified = time.UnixMilli(w.LastModified).Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{w.ID, w.Title, strconv.Itoa(len(w.Nodes)), string(w.Visibility), modified})
	}
	return rows
}

func (a *app) voteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote WHEEL_ID NODE_ID VALUE",
		Short: "Cast a probability vote (1-5) on a consequence",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("vote must be a whole number: %w", err)
			}
			if err := a.client().CastVote(cmd.Context(), args[0], args[1], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s voted %d on %s\n", good.Sprint("✓"), value, args[1])
			return nil
		},
	}
}

func (a *app) tokenCmd() *cobra.Command {
	var (
		email  string
		roles  []string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token USER_ID",
		Short: "Mint a development token signed with the configured JWT secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.IsProduction() {
				return fmt.Errorf("refusing to mint tokens in production")
			}
			gen, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{
				SecretKey:  a.cfg.JWTSecret,
				Issuer:     a.cfg.JWTIssuer,
				ExpiryTime: expiry,
			})
			if err != nil {
				return err
			}
			token, err := gen.GenerateToken(args[0], email, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role claim, repeatable")
	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "token lifetime")
	return cmd
}
