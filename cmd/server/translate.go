package main

import (
	"encoding/json"
	"strings"

	"github.com/jrsteele09/go-photos-proxy/search"
	"github.com/spf13/cobra"
)

// newTranslateCmd prints how a search query maps onto the upstream filters.
func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "translate <query...>",
		Short:   "Show the search plan for a query",
		Example: `  photos-proxy translate vacation video`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := search.Translate(strings.Join(args, " "))
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(plan)
		},
	}
}
