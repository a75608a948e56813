package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lector/core/internal/cache"
)

var (
	cacheDoc  string
	cacheType string
	cacheJSON bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune stored artifacts for a document",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored artifacts and their provenance",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cacheDoc)
		if err != nil {
			return err
		}
		if cacheJSON {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("no artifacts stored")
			return nil
		}
		for _, rec := range records {
			when := time.UnixMilli(rec.GeneratedAt).Format("2006-01-02 15:04")
			fmt.Printf("%-12s coverage=%3.0f%% complete=%-5v text=%-5v highlights=%-5v model=%-20s %s\n",
				rec.Type, rec.Coverage*100, rec.Complete, rec.WithText, rec.WithHighlights,
				orDash(rec.ModelID), when)
		}
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one artifact, or all artifacts for a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := OpenStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if cacheType != "" {
			t := cache.ArtifactType(cacheType)
			if !t.Valid() {
				return fmt.Errorf("unknown artifact type %q", cacheType)
			}
			if err := store.Delete(cacheDoc, t); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", t)
			return nil
		}

		records, err := store.List(cacheDoc)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := store.Delete(cacheDoc, rec.Type); err != nil {
				return err
			}
		}
		fmt.Printf("deleted %d artifacts\n", len(records))
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheDoc, "doc", "", "Document ID")
	cacheCmd.MarkPersistentFlagRequired("doc")
	cacheListCmd.Flags().BoolVar(&cacheJSON, "json", false, "Output as JSON")
	cacheDeleteCmd.Flags().StringVar(&cacheType, "type", "", "Artifact type to delete (all when omitted)")
	cacheCmd.AddCommand(cacheListCmd, cacheDeleteCmd)
	rootCmd.AddCommand(cacheCmd)
}
