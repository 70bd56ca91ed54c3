/*
Copyright © 2025 silicus-edu
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/silicus-edu/ta-backend/config"
	"github.com/silicus-edu/ta-backend/types"
	"github.com/spf13/cobra"
)

// createCourseCmd represents the createCourse command
var createCourseCmd = &cobra.Command{
	Use:   "create-course",
	Short: "Create a course from a directory of PDFs",
	Long: `Creates a new course, ingests every PDF in the given directory and
commits the result to the remote store. Fails if the slug is taken.`,
	Run: func(cmd *cobra.Command, args []string) {
		slug, _ := cmd.Flags().GetString("slug")
		title, _ := cmd.Flags().GetString("title")
		dir, _ := cmd.Flags().GetString("dir")
		if slug == "" || dir == "" {
			log.Fatal("--slug and --dir are required")
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		be, err := buildBackend(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
		if err != nil || len(paths) == 0 {
			log.Fatalf("No PDFs found in %s", dir)
		}
		files := make([]types.UploadFile, 0, len(paths))
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", p, err)
			}
			files = append(files, types.UploadFile{Name: filepath.Base(p), Data: data})
		}

		if err := be.course.Create(context.Background(), slug, title, files); err != nil {
			log.Fatalf("Failed to create course: %v", err)
		}
		fmt.Printf("Created course %s with %d PDFs\n", slug, len(files))
	},
}

func init() {
	rootCmd.AddCommand(createCourseCmd)

	createCourseCmd.Flags().StringP("slug", "s", "", "Course slug")
	createCourseCmd.Flags().StringP("title", "t", "", "Course title (defaults to upper-cased slug)")
	createCourseCmd.Flags().StringP("dir", "d", "", "Directory containing the course PDFs")
}
