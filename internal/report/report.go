// Package report renders run output in the supported output modes.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rentfold/propsnap/schema"
	"golang.org/x/term"
)

// ErrUnsupportedMode indicates an output mode this report cannot render.
// Parquet is only produced by the export path.
var ErrUnsupportedMode = errors.New("output mode not supported for this report")

// Color functions for console output.
var (
	savedColor   = color.New(color.FgGreen)
	dupColor     = color.New(color.FgYellow)
	failureColor = color.New(color.FgRed, color.Bold)
)

// TerminalWidth returns the detected terminal width, or a conservative
// default for pipes and CI.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// maxLabelWidth caps a table's free-text column so the table fits the
// terminal, given the space the fixed columns reserve.
func maxLabelWidth(reserved int) int {
	available := TerminalWidth() - reserved
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// truncateCell shortens a cell value to maxWidth runes with an ellipsis.
func truncateCell(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// WriteRunSummary renders a batch fetch summary.
func WriteRunSummary(w io.Writer, s *schema.RunSummary, mode schema.OutputMode, useColors bool) error {
	switch mode {
	case schema.JSONOut:
		return writeJSON(w, s)
	case schema.CSVOut:
		cw := csv.NewWriter(w)
		defer cw.Flush()
		if err := cw.Write([]string{"endpoint", "fetched", "saved", "duplicates", "failures"}); err != nil {
			return err
		}
		for _, ep := range schema.AllEndpoints {
			tally, ok := s.ByEndpoint[ep]
			if !ok {
				continue
			}
			row := []string{
				string(ep),
				strconv.Itoa(tally.Fetched),
				strconv.Itoa(tally.Saved),
				strconv.Itoa(tally.Duplicates),
				strconv.Itoa(tally.Failures),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	case schema.ParquetOut:
		return fmt.Errorf("%w: run summary", ErrUnsupportedMode)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Endpoint", "Fetched", "Saved", "Duplicates", "Failures"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, ep := range schema.AllEndpoints {
		tally, ok := s.ByEndpoint[ep]
		if !ok {
			continue
		}
		data = append(data, []string{
			string(ep),
			strconv.Itoa(tally.Fetched),
			colorCount(tally.Saved, savedColor, useColors),
			colorCount(tally.Duplicates, dupColor, useColors),
			colorCount(tally.Failures, failureColor, useColors),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	totals := s.Totals()
	_, err := fmt.Fprintf(w, "Run %s: %d fetched, %d new, %d duplicates, %d failed (%v)\n",
		s.RunID, totals.Fetched, totals.Saved, totals.Duplicates, totals.Failures,
		s.FinishedAt.Sub(s.StartedAt).Round(timeRounding))
	return err
}

// WriteIngestSummary renders a file replay summary.
func WriteIngestSummary(w io.Writer, s *schema.IngestSummary, mode schema.OutputMode, useColors bool) error {
	switch mode {
	case schema.JSONOut:
		return writeJSON(w, s)
	case schema.CSVOut:
		cw := csv.NewWriter(w)
		defer cw.Flush()
		if err := cw.Write([]string{"processed", "saved", "duplicates", "archived", "failed"}); err != nil {
			return err
		}
		return cw.Write([]string{
			strconv.Itoa(s.Processed),
			strconv.Itoa(s.Saved),
			strconv.Itoa(s.Duplicates),
			strconv.Itoa(s.Archived),
			strconv.Itoa(len(s.Failures)),
		})
	case schema.ParquetOut:
		return fmt.Errorf("%w: ingest summary", ErrUnsupportedMode)
	}

	_, err := fmt.Fprintf(w, "Processed %d files: %s new, %s duplicates, %d archived, %s failed\n",
		s.Processed,
		colorCount(s.Saved, savedColor, useColors),
		colorCount(s.Duplicates, dupColor, useColors),
		s.Archived,
		colorCount(len(s.Failures), failureColor, useColors))
	if err != nil {
		return err
	}
	for _, f := range s.Failures {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", f.File, f.Reason); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatus renders store diagnostics.
func WriteStatus(w io.Writer, status *schema.StoreStatus, mode schema.OutputMode) error {
	switch mode {
	case schema.JSONOut:
		return writeJSON(w, status)
	case schema.CSVOut:
		cw := csv.NewWriter(w)
		defer cw.Flush()
		if err := cw.Write([]string{"endpoint", "rows"}); err != nil {
			return err
		}
		for _, ep := range schema.AllEndpoints {
			if n, ok := status.RowsByEndpoint[ep]; ok {
				if err := cw.Write([]string{string(ep), strconv.FormatInt(n, 10)}); err != nil {
					return err
				}
			}
		}
		return nil
	case schema.ParquetOut:
		return fmt.Errorf("%w: status", ErrUnsupportedMode)
	}

	if _, err := fmt.Fprintf(w, "Database: %s (%d bytes)\n", status.Path, status.SizeBytes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Responses: %d  Cohorts: %d  Members: %d\n",
		status.ResponseRows, status.CohortRows, status.MemberRows); err != nil {
		return err
	}
	if status.LastSnapshot != nil {
		if _, err := fmt.Fprintf(w, "Last snapshot: %s\n", status.LastSnapshot); err != nil {
			return err
		}
	}

	if len(status.RowsByEndpoint) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Endpoint", "Rows"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, ep := range schema.AllEndpoints {
		if n, ok := status.RowsByEndpoint[ep]; ok {
			data = append(data, []string{string(ep), strconv.FormatInt(n, 10)})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteCohorts renders the stored cohort inventory.
func WriteCohorts(w io.Writer, cohorts []schema.CohortInfo, mode schema.OutputMode) error {
	switch mode {
	case schema.JSONOut:
		return writeJSON(w, cohorts)
	case schema.CSVOut:
		cw := csv.NewWriter(w)
		defer cw.Flush()
		if err := cw.Write([]string{"cohort_id", "name", "members", "updated_at"}); err != nil {
			return err
		}
		for _, c := range cohorts {
			row := []string{c.ID, c.Name, strconv.Itoa(c.MemberCount), c.UpdatedAt.Format(timestampFormat)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	case schema.ParquetOut:
		return fmt.Errorf("%w: cohort list", ErrUnsupportedMode)
	}

	// Cohort ids are fixed-ish; the name column absorbs whatever terminal
	// width is left after ids, counts and timestamps.
	nameWidth := maxLabelWidth(45)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Cohort", "Name", "Members", "Updated"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, c := range cohorts {
		data = append(data, []string{
			c.ID,
			truncateCell(c.Name, nameWidth),
			strconv.Itoa(c.MemberCount),
			c.UpdatedAt.Format(timestampFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteViewRows renders view query results. headlineColumn names the
// view's metric column in the header.
func WriteViewRows(w io.Writer, headlineColumn string, rows []schema.ViewRow, mode schema.OutputMode) error {
	switch mode {
	case schema.JSONOut:
		return writeJSON(w, rows)
	case schema.CSVOut:
		return writeViewCSV(w, headlineColumn, rows)
	case schema.ParquetOut:
		return fmt.Errorf("%w: view rows", ErrUnsupportedMode)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Timestamp", "Postcode", headlineColumn, "Bytes", "Points", "Quality"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, row := range rows {
		data = append(data, viewRowStrings(row))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d rows\n", len(rows))
	return err
}

// writeViewCSV writes view rows with a stable CSV header.
func writeViewCSV(w io.Writer, headlineColumn string, rows []schema.ViewRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"timestamp", "postcode", headlineColumn, "response_bytes", "data_points", "quality_flag"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(viewRowStrings(row)); err != nil {
			return err
		}
	}
	return nil
}

func viewRowStrings(row schema.ViewRow) []string {
	headline := ""
	if row.Headline != nil {
		headline = strconv.FormatFloat(*row.Headline, 'f', -1, 64)
	}
	bytesCol := ""
	if row.ResponseBytes != nil {
		bytesCol = strconv.FormatInt(*row.ResponseBytes, 10)
	}
	points := ""
	if row.DataPoints != nil {
		points = strconv.FormatInt(*row.DataPoints, 10)
	}
	return []string{
		row.Timestamp.Format(timestampFormat),
		row.Postcode,
		headline,
		bytesCol,
		points,
		row.QualityFlag,
	}
}

// colorCount renders a count, colored only when nonzero and colors are enabled.
func colorCount(n int, c *color.Color, useColors bool) string {
	s := strconv.Itoa(n)
	if !useColors || n == 0 {
		return s
	}
	return c.Sprint(s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
