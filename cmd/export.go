package cmd

import (
	"context"
	"fmt"
	"slices"
	"time"

	"billing/internal/analytics"
	"billing/internal/logger"
	"billing/internal/report"
	"billing/internal/sheets"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analytics report as CSV or text",
	Long: `Render the analytics report for a date range as a CSV file or a plain
text report. "pdf" is accepted as a name for the text format.

With --sheet-url (or GOOGLE_SHEET_URL and --sheet) the CSV row set is also
written to a Google Sheets worksheet, replacing its content.

Google Sheets export requires:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # CSV for October to stdout
  billing export --from 2026-10-01 --to 2026-10-31

  # Text report saved under its default file name
  billing export --format text --save

  # Push the current month to the configured spreadsheet
  billing export --sheet`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("from", "", "First day of the range (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "Last day of the range (YYYY-MM-DD)")
	exportCmd.Flags().StringP("format", "f", "csv", "Export format (csv, text, pdf)")
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().Bool("save", false, "Write to analytics-<from>-<to>.<ext> in the current directory")
	exportCmd.Flags().Bool("sheet", false, "Also write the rows to GOOGLE_SHEET_URL")
	exportCmd.Flags().String("sheet-url", "", "Also write the rows to this Google Sheet")
	exportCmd.Flags().String("worksheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")
	exportCmd.Flags().Int("timeout", 120, "Timeout in seconds")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	sheetURL, _ := cmd.Flags().GetString("sheet-url")
	worksheet, _ := cmd.Flags().GetString("worksheet")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if _, err := report.ParseFormat(format); err != nil {
		return err
	}

	now := time.Now().In(cfg.Location())
	window, err := resolveWindow(from, to, now, cfg.Location())
	if err != nil {
		return err
	}
	startDate := window.Start.Format(analytics.DateLayout)
	endDate := window.End.Format(analytics.DateLayout)

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := createCommandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	snap, err := st.Snapshot(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	data := engine.Analytics(snap, now)

	doc, err := report.Render(report.ExportRequest{
		Format:    format,
		StartDate: startDate,
		EndDate:   endDate,
		Data:      data,
	}, cfg.AgencyName, now)
	if err != nil {
		return err
	}

	if save && outputPath == "" {
		outputPath = doc.Filename
	}
	if err := writeOutput(doc.Body, outputPath, log); err != nil {
		return err
	}

	if sheetURL == "" && toSheet {
		if err := cfg.RequireSheets(); err != nil {
			return err
		}
		sheetURL = cfg.GoogleSheetURL
	}
	if sheetURL == "" {
		return nil
	}
	if worksheet == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}
	return pushToSheet(ctx, sheetURL, worksheet, report.Rows(data, startDate, endDate))
}

func pushToSheet(ctx context.Context, sheetURL, worksheet string, rows [][]string) error {
	svc, err := sheets.NewSheetsService(ctx, sheetURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}
	if err := svc.WriteRows(ctx, worksheet, rows); err != nil {
		return fmt.Errorf("failed to write Google Sheet: %w", err)
	}

	header, err := svc.Header(ctx, worksheet)
	if err != nil {
		return fmt.Errorf("failed to read back Google Sheet: %w", err)
	}
	if len(rows) > 0 && !slices.Equal(header, rows[0]) {
		return fmt.Errorf("worksheet %s header reads %v after writing %v", worksheet, header, rows[0])
	}
	logger.WithContext(ctx).Info().
		Str("worksheet", worksheet).
		Int("rows", len(rows)).
		Msg("Report written to Google Sheets")
	return nil
}
