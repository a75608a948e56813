package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lector/core/internal/privacy"
)

var (
	gateAction   string
	gateProvider string
	gateJSON     bool
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Show the permission verdict for an action under a privacy config",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := LoadRegistry()
		if err != nil {
			return err
		}
		def := registry.Get(gateAction)
		if def == nil {
			return fmt.Errorf("unknown action %q", gateAction)
		}
		cfg, err := LoadPrivacyConfig()
		if err != nil {
			return err
		}

		v := privacy.Resolve(def, cfg, gateProvider)

		if gateJSON {
			out := map[string]any{
				"action":   v.ActionID,
				"provider": v.ProviderID,
				"trusted":  v.Trusted,
				"states":   map[string]string{},
			}
			for _, c := range privacy.Categories() {
				out["states"].(map[string]string)[c.String()] = v.State(c).String()
			}
			if v.HardBlock {
				out["hard_block"] = v.HardBlockReason
				out["suggested_action"] = v.SuggestedActionID
			}
			return printJSON(out)
		}

		fmt.Printf("  action=%s provider=%s trusted=%v\n\n", v.ActionID, v.ProviderID, v.Trusted)
		for _, c := range privacy.Categories() {
			fmt.Printf("  %-20s %s\n", c, v.State(c))
		}
		if v.HardBlock {
			fmt.Printf("\n  BLOCKED: %s\n", v.HardBlockReason)
			if v.SuggestedActionID != "" {
				fmt.Printf("  try instead: %s\n", v.SuggestedActionID)
			}
		}
		return nil
	},
}

func init() {
	gateCmd.Flags().StringVar(&gateAction, "action", "", "Action ID to resolve")
	gateCmd.Flags().StringVar(&gateProvider, "provider", "default", "Provider ID")
	gateCmd.Flags().BoolVar(&gateJSON, "json", false, "Output as JSON")
	gateCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(gateCmd)
}
