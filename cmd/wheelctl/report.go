package main

import (
	"fmt"
	"io"

	"axon-backend/application/report"

	"github.com/spf13/cobra"
)

func (a *app) reportCmd() *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   "report [WHEEL_ID]",
		Short: "Summarise the key outcomes of a wheel",
		Long: "Builds the outcome report of a wheel, either fetched from the API by ID or\n" +
			"read from a local document with --file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rep *report.Report
				err error
			)
			switch {
			case file != "":
				doc, readErr := readDocument(file, cmd.InOrStdin())
				if readErr != nil {
					return readErr
				}
				rep, err = report.NewAnalyzer(a.cfg.DomainConfig()).Analyze(doc.Title, doc.Graph())
			case len(args) == 1:
				rep, err = a.client().Report(cmd.Context(), args[0])
			default:
				return fmt.Errorf("a wheel ID or --file is required")
			}
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), rep, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "analyse a local wheel document instead of fetching one")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, markdown or json")
	return cmd
}

func printReport(w io.Writer, rep *report.Report, format string) error {
	switch format {
	case "json":
		return writeJSON(w, rep)
	case "markdown", "md":
		_, err := io.WriteString(w, rep.Markdown())
		return err
	case "text", "":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	brand.Fprintln(w, rep.Title)
	subtle.Fprintln(w, rep.Summary)
	fmt.Fprintln(w)

	if len(rep.KeyOutcomes) == 0 {
		warn.Fprintln(w, "No key outcomes yet")
		return nil
	}

	rows := make([][]string, 0, len(rep.KeyOutcomes))
	for _, o := range rep.KeyOutcomes {
		rows = append(rows, []string{o.Label, fmt.Sprintf("%d", o.Tier), rating(o.Probability)})
	}
	table(w, []string{"OUTCOME", "TIER", "PROBABILITY"}, rows)

	for _, s := range rep.Scenarios {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", good.Sprint("→"), s.Narrative)
	}
	return nil
}
