package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/deckreport/internal/ranges"
)

var rangesCmd = &cobra.Command{
	Use:   "ranges SPEC",
	Short: "Show which slides a slide specification selects",
	Long: `Ranges expands a specification such as "1-3,5,7" into ascending, unique
slide numbers. Tokens that are neither a number nor a range are reported
and otherwise ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := ranges.Tokenize(args[0])
		indices := ranges.Expand(tokens)
		ignored := ranges.Ignored(tokens)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"slides":  indices,
				"ignored": ignored,
			})
		}

		parts := make([]string, len(indices))
		for i, n := range indices {
			parts[i] = strconv.Itoa(n)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
		for _, raw := range ignored {
			fmt.Fprintf(cmd.ErrOrStderr(), "ignored token %q\n", raw)
		}
		return nil
	},
}

func init() {
	rangesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(rangesCmd)
}
