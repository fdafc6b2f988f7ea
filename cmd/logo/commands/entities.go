package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/spf13/cobra"
)

const (
	searchByCode = "code"
	searchByName = "name"
)

// entityView describes how one resource is reached and printed.
type entityView[T any] struct {
	use     string
	aliases []string
	short   string
	client  func(logo.Client) logo.EntityClient[T]
	columns []string
	row     func(*T) []string
}

func (v entityView[T]) print(w io.Writer, format string, records []T) error {
	if format != constants.FormatTable {
		if records == nil {
			records = []T{}
		}

		return writeStructured(w, format, records)
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, v.row(&records[i]))
	}

	return renderTable(w, v.columns, rows)
}

func newEntityCommand[T any](view entityView[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     view.use,
		Aliases: view.aliases,
		Short:   view.short,
		Long:    fmt.Sprintf("List, get, search and count %s", view.use),
	}

	cmd.AddCommand(newEntityListCommand(view))
	cmd.AddCommand(newEntityGetCommand(view))
	cmd.AddCommand(newEntitySearchCommand(view))
	cmd.AddCommand(newEntityCountCommand(view))

	return cmd
}

func newEntityListCommand[T any](view entityView[T]) *cobra.Command {
	var all bool

	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + view.use,
		Long:  fmt.Sprintf("List %s, optionally filtered, sorted and paged", view.use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			c, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			entities := view.client(c)

			if all {
				records, err := logo.FetchAll[T](cmd.Context(), entities, opts, nil)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", view.use, err)
				}

				return view.print(cmd.OutOrStdout(), format, records)
			}

			page, err := entities.GetAll(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", view.use, err)
			}

			return view.print(cmd.OutOrStdout(), format, page.Items)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "follow every page")

	return cmd
}

func newEntityGetCommand[T any](view entityView[T]) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "get REF [REF...]",
		Short: "Get records by internal reference",
		Long:  fmt.Sprintf("Display %s by INTERNAL_REFERENCE. Several references are fetched concurrently.", view.use),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			refs := make([]int, len(args))
			for i, arg := range args {
				refs[i], err = parseReference(arg)
				if err != nil {
					return err
				}
			}

			c, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			if len(refs) == 1 {
				record, err := view.client(c).Get(cmd.Context(), refs[0])
				if err != nil {
					return fmt.Errorf("failed to get %d: %w", refs[0], err)
				}

				if format != constants.FormatTable {
					return writeStructured(cmd.OutOrStdout(), format, record)
				}

				return view.print(cmd.OutOrStdout(), format, []T{*record})
			}

			return getMany(cmd, view, c, refs, concurrency, format)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultBatchConcurrency, "requests in flight when several references are given")

	return cmd
}

// getMany fetches refs through a batch executor, prints the records found in
// argument order and reports the failures.
func getMany[T any](cmd *cobra.Command, view entityView[T], c logo.Client, refs []int, concurrency int, format string) error {
	builder := logo.NewBatchBuilder[T]()
	for _, ref := range refs {
		builder.AddGet(itoa(ref), ref)
	}

	results, err := logo.NewBatchExecutor(view.client(c), concurrency).Execute(cmd.Context(), builder.Build())
	if err != nil {
		return err
	}

	records := make([]T, 0, len(results))

	var failed []string

	for _, result := range results {
		if !result.Success {
			failed = append(failed, result.ID)
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to get %s: %v\n", result.ID, result.Error)

			continue
		}

		records = append(records, *result.Data)
	}

	err = view.print(cmd.OutOrStdout(), format, records)
	if err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", constants.ErrPartialFailure, strings.Join(failed, ", "))
	}

	return nil
}

func newEntitySearchCommand[T any](view entityView[T]) *cobra.Command {
	var by string

	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Search by code or name prefix",
		Long:  fmt.Sprintf("List %s whose code (or name, with --by name) starts with TERM", view.use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			if by != searchByCode && by != searchByName {
				return fmt.Errorf("%w: --by must be %s or %s", logo.ErrInvalidQueryOption, searchByCode, searchByName)
			}

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			c, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			entities := view.client(c)

			var page *logo.ListResponse[T]
			if by == searchByName {
				page, err = entities.SearchByName(cmd.Context(), args[0], opts)
			} else {
				page, err = entities.SearchByCode(cmd.Context(), args[0], opts)
			}

			if err != nil {
				return fmt.Errorf("failed to search %s: %w", view.use, err)
			}

			return view.print(cmd.OutOrStdout(), format, page.Items)
		},
	}

	cmd.Flags().StringVar(&by, "by", searchByCode, "field to search, code or name")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "number of records to skip")
	cmd.Flags().StringSliceVar(&flags.sort, "sort", nil, "fields to sort by")
	cmd.Flags().BoolVar(&flags.desc, "desc", false, "sort descending")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")

	return cmd
}

func newEntityCountCommand[T any](view entityView[T]) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count matching records",
		Long:  fmt.Sprintf("Print the number of %s matching --where and --filter", view.use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := flags.criteria(cmd.InOrStdin())
			if err != nil {
				return err
			}

			c, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			count, err := view.client(c).Count(cmd.Context(), criteria)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", view.use, err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), count)

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&flags.where, "where", "w", nil, "condition as key=value (see 'list --help')")
	cmd.Flags().StringVarP(&flags.filterFile, "filter", "f", "", "criteria document (JSON or YAML), - for stdin")

	return cmd
}

func parseReference(s string) (int, error) {
	ref, err := strconv.Atoi(s)
	if err != nil || ref <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidReference, s)
	}

	return ref, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
