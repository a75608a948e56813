package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lector/core/internal/cache"
	"lector/core/internal/xray"
)

var (
	xrayDoc      string
	xrayDelta    string
	xrayCoverage float64
	xrayTrack    string
	xrayModel    string
	xrayWithHL   bool
	xrayJSON     bool
	xrayCategory string
)

var xrayCmd = &cobra.Command{
	Use:   "xray",
	Short: "Work with the incremental X-Ray graph of a document",
}

var xrayMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge an extraction delta (provider output) into the stored graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(xrayDelta)
		if err != nil {
			return fmt.Errorf("reading delta file: %w", err)
		}
		delta, err := xray.ParseDelta(string(data))
		if err != nil {
			return err
		}

		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		existing := xray.NewGraph(delta.Track)
		rec, err := store.Get(xrayDoc, cache.ArtifactXRay)
		if err != nil {
			return err
		}
		if rec != nil {
			existing, err = xray.Decode(rec.Content)
			if err != nil {
				return err
			}
		}

		m := &xray.Merger{Logger: newLogger()}
		merged, err := m.Merge(existing, delta)
		if err != nil {
			return err
		}
		content, err := merged.Encode()
		if err != nil {
			return err
		}

		newRec := &cache.Record{
			DocumentID:   xrayDoc,
			Type:         cache.ArtifactXRay,
			Track:        string(merged.Track),
			Content:      content,
			Coverage:     xrayCoverage,
			Complete:     merged.Track == xray.TrackComplete,
			WithText:     true,
			ModelID:      xrayModel,
			GenerationID: uuid.NewString(),
			GeneratedAt:  time.Now().UnixMilli(),
		}
		if rec != nil {
			newRec.WithHighlights = rec.WithHighlights
		}
		if xrayWithHL {
			newRec.WithHighlights = true
		}

		if err := store.Put(newRec); err != nil {
			if errors.Is(err, cache.ErrStaleCoverage) {
				return fmt.Errorf("position changed since this delta was generated, retry: %w", err)
			}
			return err
		}

		fmt.Printf("merged: %d entities, coverage %.0f%%\n", merged.EntityCount(), xrayCoverage*100)
		return nil
	},
}

var xrayShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored graph, with lazily resolved connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(xrayDoc, cache.ArtifactXRay)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no X-Ray stored for document %q", xrayDoc)
		}
		g, err := xray.Decode(rec.Content)
		if err != nil {
			return err
		}

		if xrayJSON {
			return printJSON(g)
		}

		fmt.Printf("  track=%s coverage=%.0f%% model=%s\n", rec.Track, rec.Coverage*100, orDash(rec.ModelID))
		for _, c := range xray.EntityCategories() {
			if xrayCategory != "" && string(c) != xrayCategory {
				continue
			}
			entities := g.Entities(c)
			if len(entities) == 0 {
				continue
			}
			fmt.Printf("\n  %s:\n", c)
			for _, e := range entities {
				fmt.Printf("    %s", e.Name)
				if len(e.Aliases) > 0 {
					fmt.Printf(" (%v)", e.Aliases)
				}
				fmt.Println()
				if e.Description != "" {
					fmt.Printf("      %s\n", e.Description)
				}
				for _, ref := range g.ResolveConnections(e) {
					if ref.Entity != nil {
						fmt.Printf("      -> %s [%s]\n", ref.Entity.Name, ref.Category)
					} else {
						fmt.Printf("      -> %s [unresolved]\n", ref.Name)
					}
				}
			}
		}
		if len(g.Timeline) > 0 && xrayCategory == "" {
			fmt.Printf("\n  timeline:\n")
			for _, ev := range g.Timeline {
				fmt.Printf("    %3.0f%%  %s\n", ev.Position*100, ev.Description)
			}
		}
		if g.CurrentState != "" {
			fmt.Printf("\n  current state: %s\n", g.CurrentState)
		}
		if g.Conclusion != "" {
			fmt.Printf("\n  conclusion: %s\n", g.Conclusion)
		}
		return nil
	},
}

var xrayDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored graph (required before switching tracks)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Delete(xrayDoc, cache.ArtifactXRay); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	xrayCmd.PersistentFlags().StringVar(&xrayDoc, "doc", "", "Document ID")
	xrayCmd.MarkPersistentFlagRequired("doc")

	xrayMergeCmd.Flags().StringVar(&xrayDelta, "delta", "", "File with provider output containing the delta JSON")
	xrayMergeCmd.Flags().Float64Var(&xrayCoverage, "coverage", 0, "Progress the delta covers up to (0.0-1.0)")
	xrayMergeCmd.Flags().StringVar(&xrayModel, "model", "", "Model ID for provenance")
	xrayMergeCmd.Flags().BoolVar(&xrayWithHL, "with-highlights", false, "Record that highlights were attached")
	xrayMergeCmd.MarkFlagRequired("delta")

	xrayShowCmd.Flags().BoolVar(&xrayJSON, "json", false, "Output as JSON")
	xrayShowCmd.Flags().StringVar(&xrayCategory, "category", "", "Limit to one category")

	xrayCmd.AddCommand(xrayMergeCmd, xrayShowCmd, xrayDeleteCmd)
	rootCmd.AddCommand(xrayCmd)
}
