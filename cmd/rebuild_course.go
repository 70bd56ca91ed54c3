/*
Copyright © 2025 silicus-edu
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/silicus-edu/ta-backend/config"
	"github.com/spf13/cobra"
)

// rebuildCourseCmd represents the rebuildCourse command
var rebuildCourseCmd = &cobra.Command{
	Use:   "rebuild-course",
	Short: "Re-ingest a course's PDFs",
	Long: `Re-extracts and re-embeds every page of every PDF in the course and
publishes the rebuilt page table, locally and to the remote store.`,
	Run: func(cmd *cobra.Command, args []string) {
		slug, _ := cmd.Flags().GetString("slug")
		if slug == "" {
			log.Fatal("--slug is required")
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		be, err := buildBackend(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		pages, err := be.course.Rebuild(context.Background(), slug)
		if err != nil {
			log.Fatalf("Failed to rebuild course: %v", err)
		}
		fmt.Printf("Rebuilt course %s: %d pages\n", slug, pages)
	},
}

func init() {
	rootCmd.AddCommand(rebuildCourseCmd)

	rebuildCourseCmd.Flags().StringP("slug", "s", "", "Course slug")
}
