package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lector/core/internal/privacy"
	"lector/core/internal/prompt"
)

var (
	renderAction   string
	renderProvider string
	renderContext  string
	renderJSON     bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Dry-run a prompt render without calling any provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := LoadRegistry()
		if err != nil {
			return err
		}
		def := registry.Get(renderAction)
		if def == nil {
			return fmt.Errorf("unknown action %q", renderAction)
		}
		cfg, err := LoadPrivacyConfig()
		if err != nil {
			return err
		}

		ctx := &prompt.Context{}
		if renderContext != "" {
			data, err := os.ReadFile(renderContext)
			if err != nil {
				return fmt.Errorf("reading context file: %w", err)
			}
			if err := json.Unmarshal(data, ctx); err != nil {
				return fmt.Errorf("parsing context file: %w", err)
			}
		}

		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		r := &prompt.Renderer{Store: store, Logger: newLogger()}
		v := privacy.Resolve(def, cfg, renderProvider)
		res, err := r.Render(def, ctx, cfg, v)

		var hb *privacy.HardBlockError
		if errors.As(err, &hb) {
			fmt.Printf("  BLOCKED: %s\n", hb.Reason)
			if hb.SuggestedActionID != "" {
				fmt.Printf("  try instead: %s\n", hb.SuggestedActionID)
			}
			return nil
		}
		if err != nil {
			return err
		}

		if renderJSON {
			return printJSON(map[string]any{
				"system":     prompt.SystemMessage(def, ctx.Language),
				"prompt":     res.Prompt,
				"used":       categoryNames(res.Used),
				"omitted":    categoryNames(res.Omitted),
				"cache_used": res.CacheUsed,
			})
		}

		if sys := prompt.SystemMessage(def, ctx.Language); sys != "" {
			fmt.Printf("--- system ---\n%s\n\n", sys)
		}
		fmt.Printf("--- prompt ---\n%s\n", res.Prompt)
		if len(res.Omitted) > 0 {
			fmt.Printf("\nResponse would be generated without: %s\n",
				strings.Join(categoryNames(res.Omitted), ", "))
		}
		return nil
	},
}

func categoryNames(cats []privacy.Category) []string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return names
}

func init() {
	renderCmd.Flags().StringVar(&renderAction, "action", "", "Action ID to render")
	renderCmd.Flags().StringVar(&renderProvider, "provider", "default", "Provider ID")
	renderCmd.Flags().StringVar(&renderContext, "context", "", "Path to a context JSON file")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Output as JSON")
	renderCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(renderCmd)
}
