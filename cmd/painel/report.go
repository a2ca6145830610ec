package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"painel/internal/cli"
	"painel/internal/config"
	"painel/internal/dataset"
	"painel/internal/log"
	"painel/internal/views"
)

var reportData string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard views for the extract",
	Long: `Load the extract and print the three dashboard views with the default
filters as text tables. Handy for checking an extract before serving it.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportData, "data", "", "extract path (default DATA_PATH)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg := config.Load()
	path := cfg.DataPath
	if reportData != "" {
		path = reportData
	}

	// Logs go to stderr so the report can be piped.
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	})

	snap, err := dataset.NewLoader(logger, 1).Snapshot(cmd.Context(), path)
	if err != nil {
		return err
	}

	dash := views.Render(views.State{
		Full:    snap.Table,
		Notices: snap.Notices,
	})
	return writeReport(cmd.OutOrStdout(), snap.Path, dash)
}

// writeReport prints dash as aligned text tables.
func writeReport(out io.Writer, path string, dash views.Dashboard) error {
	p := message.NewPrinter(language.BrazilianPortuguese)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	p.Fprintf(tw, "Arquivo:\t%s\n", path)
	p.Fprintf(tw, "Registros:\t%d (filtrados: %d)\n", dash.TotalRows, dash.FilteredRows)
	for _, n := range dash.Notices {
		fmt.Fprintf(tw, "Aviso:\t%s\n", n.Message)
	}

	fmt.Fprintln(tw, "\nVisão geral")
	for _, n := range dash.Overview.Notices {
		fmt.Fprintf(tw, "Aviso:\t%s\n", n.Message)
	}
	if dash.Overview.HasPeriod {
		fmt.Fprintf(tw, "Período:\t%s a %s\n", dash.Overview.Period.From.Label(), dash.Overview.Period.To.Label())
	}
	for _, m := range dash.Overview.Metrics {
		p.Fprintf(tw, "%s\t%d\n", m.Label, m.Value)
	}

	writeGroups(tw, p, "Por tipo de documento", dash.Documentos)
	writeGroups(tw, p, "Por município", dash.Municipios)
	return tw.Flush()
}

func writeGroups(w io.Writer, p *message.Printer, title string, g views.GroupResult) {
	fmt.Fprintf(w, "\n%s\n", title)
	for _, n := range g.Notices {
		fmt.Fprintf(w, "Aviso:\t%s\n", n.Message)
	}
	for _, m := range g.Metrics {
		p.Fprintf(w, "%s\t%d\n", m.Label, m.Value)
	}
	for _, grp := range g.Groups {
		key := grp.Key
		if key == "" {
			key = "(vazio)"
		}
		p.Fprintf(w, "  %s\t%d\n", key, grp.Count)
	}
}
