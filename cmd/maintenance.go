package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"go-patrol/db"
	"go-patrol/importer"
	"go-patrol/types"
)

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Import incidents from an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			proc, err := newProcessor(cmd.Context(), cfg, newPipeline(cfg), nil, log)
			if err != nil {
				return err
			}
			defer db.CloseFirestore()

			res, saved, err := proc.Import(cmd.Context(), f)
			printImport(cmd.OutOrStdout(), res, saved)
			return err
		},
	}
}

func printImport(w io.Writer, res importer.Result, saved int) {
	fmt.Fprintf(w, "Imported %d of %d rows\n", saved, len(res.Records)+len(res.Errors))
	if len(res.Errors) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Row", "Rejected because"})
	for _, e := range res.Errors {
		t.AppendRow(table.Row{e.Row, e.Reason})
	}
	t.Render()
}

func cleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete duplicate incidents without generating a report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			proc, err := newProcessor(cmd.Context(), cfg, newPipeline(cfg), nil, log)
			if err != nil {
				return err
			}
			defer db.CloseFirestore()

			res, err := proc.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			printCleanup(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func printCleanup(w io.Writer, res types.CleanupResult) {
	fmt.Fprintf(w, "Scanned %d incidents, deleted %d duplicates, %d failed\n", res.Scanned, res.Deleted, res.Failed)
	if len(res.Removed) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Document", "Kept", "Reason"})
	for _, r := range res.Removed {
		t.AppendRow(table.Row{r.DocID, r.KeptDocID, strings.ReplaceAll(r.Reason, "_", " ")})
	}
	t.Render()
}

func classifyCommand() *cobra.Command {
	var loc string
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify an incident description and resolve its location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			pl := newPipeline(cfg)
			rec, _ := pl.generator.Enrich(types.IncidentRecord{
				Description: strings.Join(args, " "),
				Location:    loc,
			})

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Incident type", "Municipality", "District"})
			t.AppendRow(table.Row{rec.IncidentType, rec.Municipality, rec.District})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&loc, "location", "", "free-text location to resolve")
	return cmd
}
