package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"axon-backend/application/session"
	"axon-backend/domain/config"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/layout"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) layoutCmd() *cobra.Command {
	var strategy, output string

	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Recompute node positions of a wheel document",
		Long: "Reads a wheel document (JSON, \"-\" for stdin), lays it out with the chosen\n" +
			"strategy and writes the result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.cfg.Strategy()
			if strategy != "" {
				parsed, err := layout.ParseStrategy(strategy)
				if err != nil {
					return err
				}
				s = parsed
			}

			doc, err := readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			laid, err := layoutDocument(doc, s, a.cfg.DomainConfig(), a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := writeJSON(out, laid); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s laid out %d nodes (%s) into %s\n",
					good.Sprint("✓"), len(laid.Nodes), s, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "layout strategy: tree or radial (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// layoutDocument loads doc into a throwaway session, which validates it and
// lays it out from scratch
func layoutDocument(doc aggregates.WheelDocument, strategy layout.Strategy, cfg *config.DomainConfig, logger *zap.Logger) (aggregates.WheelDocument, error) {
	s := session.New(doc.OwnerID,
		session.WithConfig(cfg),
		session.WithStrategy(strategy),
		session.WithLogger(logger),
	)
	if err := s.Load(doc); err != nil {
		return aggregates.WheelDocument{}, err
	}

	g := s.Graph()
	doc.Nodes = g.Nodes
	doc.Edges = g.Edges
	return doc, nil
}

func readDocument(path string, stdin io.Reader) (aggregates.WheelDocument, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return aggregates.WheelDocument{}, err
		}
		defer f.Close()
		r = f
	}

	var doc aggregates.WheelDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return aggregates.WheelDocument{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
