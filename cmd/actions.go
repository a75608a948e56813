package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lector/core/internal/action"
	"lector/core/internal/prompt"
)

var actionsJSON bool

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List and validate action definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := LoadRegistry()
		if err != nil {
			return err
		}

		if actionsJSON {
			return printJSON(registry.All())
		}

		for _, d := range registry.All() {
			origin := "user"
			if d.Builtin {
				origin = "builtin"
			}
			fmt.Printf("  %-14s %-24s context=%-10s cache_as=%s\n", d.ID, origin, d.Context, orDash(string(d.CacheAs)))
		}
		return nil
	},
}

var actionsValidateCmd = &cobra.Command{
	Use:   "validate <file.yaml>",
	Short: "Validate a user action file, including its placeholders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := action.LoadFile(args[0])
		if err != nil {
			return err
		}
		for _, d := range defs {
			if err := prompt.ValidateTemplate(d); err != nil {
				return err
			}
		}
		fmt.Printf("ok: %d action(s)\n", len(defs))
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	actionsCmd.Flags().BoolVar(&actionsJSON, "json", false, "Output as JSON")
	actionsCmd.AddCommand(actionsValidateCmd)
	rootCmd.AddCommand(actionsCmd)
}
