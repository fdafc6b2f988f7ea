package commands

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/spf13/cobra"
)

// queryFlags are the list options shared by "query encode" and the entity
// list commands.
type queryFlags struct {
	limit      int
	offset     int
	sort       []string
	desc       bool
	fields     []string
	where      []string
	filterFile string
	q          string
	count      bool
	expand     bool
}

func (f *queryFlags) registerFilter(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.where, "where", "w", nil,
		"condition as key=value, key!=value, key>=value, key<=value, key>value, key<value or key~pattern; "+
			"a comma-separated value matches any of its parts; quote text in single quotes to keep it a string")
	cmd.Flags().StringVarP(&f.filterFile, "filter", "f", "", "criteria document (JSON or YAML), - for stdin")
	cmd.Flags().StringVar(&f.q, "q", "", "raw filter expression, joined with --where and --filter by 'and'")
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "number of records to skip")
	cmd.Flags().StringSliceVar(&f.sort, "sort", nil, "fields to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "fields to return")
	cmd.Flags().BoolVar(&f.count, "count", false, "ask the service for the total count")
	cmd.Flags().BoolVar(&f.expand, "expand", false, "expand nested collections")
	f.registerFilter(cmd)
}

// criteria merges the --filter document and the --where conditions, in that order.
func (f *queryFlags) criteria(in io.Reader) (*logo.Criteria, error) {
	criteria := logo.NewCriteria()

	if f.filterFile != "" {
		data, err := readInput(f.filterFile, in)
		if err != nil {
			return nil, err
		}

		criteria, err = parseCriteriaDocument(f.filterFile, data)
		if err != nil {
			return nil, err
		}
	}

	for _, entry := range f.where {
		err := addWhere(criteria, entry)
		if err != nil {
			return nil, err
		}
	}

	return criteria, nil
}

// filter returns the q expression built from --filter, --where and --q. A raw
// --q joined with compiled criteria is parenthesized so its own "or" terms
// stay grouped.
func (f *queryFlags) filter(in io.Reader) (string, error) {
	criteria, err := f.criteria(in)
	if err != nil {
		return "", err
	}

	compiled, ok := logo.Compile(criteria)
	if !ok {
		return f.q, nil
	}

	if f.q == "" {
		return compiled, nil
	}

	q, _ := logo.JoinConditions([]string{"(" + f.q + ")", compiled})

	return q, nil
}

func (f *queryFlags) options(cmd *cobra.Command) (*logo.QueryOptions, error) {
	opts := logo.NewQueryOptions()

	if cmd.Flags().Changed("limit") {
		opts.WithLimit(f.limit)
	}

	if cmd.Flags().Changed("offset") {
		opts.WithOffset(f.offset)
	}

	if len(f.sort) > 0 {
		direction := logo.Ascending
		if f.desc {
			direction = logo.Descending
		}

		opts.WithSort(logo.SortByDirection(direction, logo.FieldNames(f.sort...)...))
	}

	if len(f.fields) > 0 {
		opts.WithFields(logo.FieldNames(f.fields...)...)
	}

	q, err := f.filter(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	opts.WithQ(q)

	if f.count {
		opts.WithCount(true)
	}

	if f.expand {
		opts.WithExpandLevel(logo.ExpandFull)
	}

	err = opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// whereOperators maps --where tokens to conditions, longest tokens first.
var whereOperators = []struct {
	token string
	build func(logo.Value) logo.Condition
}{
	{"!=", logo.Ne},
	{">=", logo.Gte},
	{"<=", logo.Lte},
	{">", logo.Gt},
	{"<", logo.Lt},
	{"~", logo.Like},
	{"=", nil},
}

// addWhere adds one --where condition. Entries on a key that already has a
// value are conjoined with it, so "price>=100" and "price<=500" select a range.
func addWhere(criteria *logo.Criteria, entry string) error {
	i := strings.IndexAny(entry, "=!<>~")
	if i <= 0 {
		return fmt.Errorf("%w: %q", constants.ErrInvalidWhereFlag, entry)
	}

	key, rest := strings.TrimSpace(entry[:i]), entry[i:]

	for _, op := range whereOperators {
		if !strings.HasPrefix(rest, op.token) {
			continue
		}

		raw := rest[len(op.token):]

		var value logo.FieldValue
		if op.build == nil {
			value = equalityValue(raw)
		} else {
			value = op.build(parseScalar(raw))
		}

		existing, ok := criteria.Get(key)
		if !ok {
			criteria.Set(key, value)

			return nil
		}

		criteria.Set(key, logo.All(append(conditionsOf(existing), conditionsOf(value)...)...))

		return nil
	}

	return fmt.Errorf("%w: %q", constants.ErrInvalidWhereFlag, entry)
}

// conditionsOf flattens a criteria value into the conditions it stands for.
func conditionsOf(value logo.FieldValue) []logo.Condition {
	switch v := value.(type) {
	case logo.Value:
		return []logo.Condition{logo.Eq(v)}
	case logo.Condition:
		return []logo.Condition{v}
	case logo.Expression:
		return append([]logo.Condition(nil), v...)
	case logo.AnyOf:
		return []logo.Condition{logo.In(v...)}
	default:
		return nil
	}
}

func equalityValue(raw string) logo.FieldValue {
	if isQuoted(raw) || !strings.Contains(raw, ",") {
		return parseScalar(raw)
	}

	parts := strings.Split(raw, ",")
	values := make(logo.AnyOf, 0, len(parts))

	for _, part := range parts {
		values = append(values, parseScalar(strings.TrimSpace(part)))
	}

	return values
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

// parseScalar reads a --where value: integers, decimals and true/false keep
// their type, text in single quotes and everything else is a string.
func parseScalar(raw string) logo.Value {
	if isQuoted(raw) {
		return logo.String(raw[1 : len(raw)-1])
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return logo.Int64(n)
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return logo.Float(f)
	}

	if raw == "true" || raw == "false" {
		return logo.Bool(raw == "true")
	}

	return logo.String(raw)
}

func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return data, nil
	}

	// #nosec G304 -- the path is supplied by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

// parseCriteriaDocument picks the parser from the file extension, falling back
// to JSON for documents that start with "{" and YAML otherwise.
func parseCriteriaDocument(path string, data []byte) (*logo.Criteria, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return logo.ParseCriteriaJSON(data)
	case ".yml", ".yaml":
		return logo.ParseCriteriaYAML(data)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return logo.ParseCriteriaJSON(data)
	}

	return logo.ParseCriteriaYAML(data)
}
