package commands

import (
	"fmt"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/spf13/cobra"
)

// NewFilterCommand creates the filter command group.
func NewFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Work with filter criteria offline",
		Long:  "Compile criteria documents into the filter expressions sent as the q parameter",
	}

	cmd.AddCommand(newFilterCompileCommand())

	return cmd
}

func newFilterCompileCommand() *cobra.Command {
	var escapeQuotes bool

	cmd := &cobra.Command{
		Use:   "compile [FILE]",
		Short: "Compile criteria into a filter expression",
		Long: `Compile a JSON or YAML criteria document into a filter expression.

Keys are camelCase field names; values are scalars, lists (any of) or operator
objects such as {"gte": 100, "lte": 500}. Reads stdin when FILE is omitted or "-".`,
		Example: `  echo '{"code": "ABC", "status": [1, 2]}' | logo filter compile
  logo filter compile criteria.yml --escape-quotes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			data, err := readInput(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			criteria, err := parseCriteriaDocument(path, data)
			if err != nil {
				return err
			}

			q, ok := logo.Compiler{EscapeQuotes: escapeQuotes}.Compile(criteria)

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, struct {
					Q     string `json:"q"     yaml:"q"`
					Empty bool   `json:"empty" yaml:"empty"`
				}{Q: q, Empty: !ok})
			}

			if !ok {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "criteria has no usable field, no filter would be sent")

				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), q)

			return nil
		},
	}

	cmd.Flags().BoolVar(&escapeQuotes, "escape-quotes", false, "double single quotes inside text values")

	return cmd
}

// NewQueryCommand creates the query command group.
func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Work with list query strings offline",
		Long:  "Build the query strings the list commands send to the service",
	}

	cmd.AddCommand(newQueryEncodeCommand())

	return cmd
}

func newQueryEncodeCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the encoded query string for the given options",
		Long:  "Print the query string, without the leading '?', for the given list options",
		Example: `  logo query encode --limit 10 --offset 0 --sort itemref
  logo query encode --where code~AB* --where cardType=1,2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), opts.Encode())

			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
