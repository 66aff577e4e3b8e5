package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peterlsmith/FormAlly/internal/expr"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <expr>...",
		Short: "Parse an expression and print its tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := expr.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			switch format {
			case "tree":
				fmt.Fprint(cmd.OutOrStdout(), expr.Dump(n))
			case "source":
				fmt.Fprintln(cmd.OutOrStdout(), expr.Format(n))
			default:
				return fmt.Errorf("invalid format %q: must be one of [tree source]", format)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format (tree|source)")

	return cmd
}
