package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func validOutputFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

// outputFormat returns the requested output format, table when unset.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString(keyOutput))
	if format == "" {
		return constants.FormatTable, nil
	}

	if !validOutputFormat(format) {
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}

	return format, nil
}

func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(v)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// columnLabel turns a column key such as INTERNAL_REFERENCE or firm_no into a
// table header like "Internal Reference".
func columnLabel(name string) string {
	words := strings.ReplaceAll(strings.ToLower(name), "_", " ")

	return cases.Title(language.English).String(words)
}

func renderTable(w io.Writer, columns []string, rows [][]string) error {
	headers := make([]any, len(columns))
	for i, column := range columns {
		headers[i] = columnLabel(column)
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrNA(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format(time.RFC3339)
}
