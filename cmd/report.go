package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"go-patrol/db"
	"go-patrol/layout"
	"go-patrol/layout/pdf"
	"go-patrol/layout/text"
	"go-patrol/report"
	"go-patrol/types"
)

// Section flag names, in report order.
var sectionNames = []string{"data-cleaning", "municipality", "trends", "root-cause", "recommendations", "risk"}

type reportOptions struct {
	month    string
	year     string
	format   string
	out      string
	notes    string
	subject  string
	sections []string
}

func reportCommand() *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a crime analysis report from the incident store",
		Long: `Generate fetches every incident, removes duplicates from the store and
writes the report as a PDF or a plain text preview.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.month, "month", types.AllPeriods, "month number or name, or \"all\"")
	cmd.Flags().StringVar(&opts.year, "year", types.AllPeriods, "four-digit year, or \"all\"")
	cmd.Flags().StringVar(&opts.format, "format", "pdf", "output format: pdf or text")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output path (default: report filename for pdf, stdout for text)")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "custom notes appended to the report")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "memorandum subject line")
	cmd.Flags().StringSliceVar(&opts.sections, "sections", sectionNames, "sections to include: "+strings.Join(sectionNames, ", "))
	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	toggles, err := parseSections(opts.sections)
	if err != nil {
		return err
	}
	if opts.format != "pdf" && opts.format != "text" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

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

	res, err := proc.Report(cmd.Context(), types.ReportConfig{
		SelectedMonth:   opts.month,
		SelectedYear:    opts.year,
		IncludeSections: toggles,
		CustomNotes:     opts.notes,
		Memo:            cfg.Report.ApplyMemoDefaults(types.Memo{Subject: opts.subject}),
	})
	if err != nil {
		return err
	}

	path, err := writeReport(res.Document, opts.format, opts.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	printStats(cmd.ErrOrStderr(), res, path)
	return nil
}

// parseSections turns section flag names into toggles.
func parseSections(names []string) (types.SectionToggles, error) {
	var t types.SectionToggles
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			t = types.AllSections()
		case "data-cleaning":
			t.DataCleaning = true
		case "municipality":
			t.MunicipalityBreakdown = true
		case "trends":
			t.TrendAnalysis = true
		case "root-cause":
			t.RootCause = true
		case "recommendations":
			t.Recommendations = true
		case "risk":
			t.RiskForecast = true
		case "", "none":
		default:
			return t, fmt.Errorf("unknown section %q (want one of %s)", name, strings.Join(sectionNames, ", "))
		}
	}
	return t, nil
}

// writeReport renders doc and returns where it went. Text with no path goes to stdout.
func writeReport(doc layout.Document, format, path string, stdout io.Writer) (string, error) {
	if format == "text" {
		b := text.New(doc.Config)
		if err := layout.Render(doc, b); err != nil {
			return "", err
		}
		if path == "" {
			_, err := b.WriteTo(stdout)
			return "stdout", err
		}
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := b.WriteTo(f); err != nil {
			f.Close()
			return "", err
		}
		return path, f.Close()
	}

	if path == "" {
		path = doc.Filename
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := pdf.Write(doc, f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func printStats(w io.Writer, res *report.Result, path string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Report", "Value"})
	t.AppendRow(table.Row{"Written to", path})
	t.AppendRow(table.Row{"Pages", len(res.Document.Pages)})
	t.AppendRow(table.Row{"Records received", res.Stats.Received})
	t.AppendRow(table.Row{"Placeholders dropped", res.Stats.Placeholders})
	t.AppendRow(table.Row{"Reclassified", res.Stats.Reclassified})
	t.AppendRow(table.Row{"Duplicates removed", len(res.Removed)})
	t.AppendRow(table.Row{"Incidents in period", res.Aggregation.TotalCount})
	t.AppendRow(table.Row{"Hotspot", res.Aggregation.Hotspot})
	t.Render()
}
