package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lector/core/internal/cache"
	"lector/core/internal/mention"
	"lector/core/internal/xray"
)

var (
	mentionsDoc      string
	mentionsText     string
	mentionsChapters string
	mentionsOffset   int
	mentionsReveal   bool
	mentionsJSON     bool
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Scan document text for mentions of known entities",
	Long: `Scans the supplied text for word-boundary mentions of every entity in the
document's stored X-Ray graph, bucketed by chapter. Chapters past the gate
offset report presence only; pass --reveal-all to include their spans.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(mentionsText)
		if err != nil {
			return fmt.Errorf("reading text file: %w", err)
		}
		var chapters []mention.Chapter
		if mentionsChapters != "" {
			data, err := os.ReadFile(mentionsChapters)
			if err != nil {
				return fmt.Errorf("reading chapters file: %w", err)
			}
			if err := json.Unmarshal(data, &chapters); err != nil {
				return fmt.Errorf("parsing chapters file: %w", err)
			}
		} else {
			chapters = []mention.Chapter{{ID: "document", Start: 0, End: len(text)}}
		}

		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(mentionsDoc, cache.ArtifactXRay)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no X-Ray stored for document %q", mentionsDoc)
		}
		g, err := xray.Decode(rec.Content)
		if err != nil {
			return err
		}

		results := mention.FindMentions(g, chapters, string(text), mention.Options{
			GateOffset: mentionsOffset,
			RevealAll:  mentionsReveal,
		})

		if mentionsJSON {
			return printJSON(results)
		}
		if len(results) == 0 {
			fmt.Println("no mentions found")
			return nil
		}
		for _, em := range results {
			fmt.Printf("%s [%s]\n", em.Name, em.Category)
			for _, ch := range em.Chapters {
				if ch.Gated {
					fmt.Printf("  %s: appears (spans withheld)\n", ch.ChapterID)
					continue
				}
				fmt.Printf("  %s: %d\n", ch.ChapterID, ch.Count)
			}
		}
		return nil
	},
}

func init() {
	mentionsCmd.Flags().StringVar(&mentionsDoc, "doc", "", "Document ID")
	mentionsCmd.Flags().StringVar(&mentionsText, "text", "", "File with the document text to scan")
	mentionsCmd.Flags().StringVar(&mentionsChapters, "chapters", "", "JSON file with chapter boundaries")
	mentionsCmd.Flags().IntVar(&mentionsOffset, "gate-offset", 0, "Byte offset past which chapters are spoiler-gated")
	mentionsCmd.Flags().BoolVar(&mentionsReveal, "reveal-all", false, "Include spans for gated chapters")
	mentionsCmd.Flags().BoolVar(&mentionsJSON, "json", false, "Output as JSON")
	mentionsCmd.MarkFlagRequired("doc")
	mentionsCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(mentionsCmd)
}
