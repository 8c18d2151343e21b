package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/services"
)

var listPreviewDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored resumes and their scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := services.LoadConfig()
		if err != nil {
			return err
		}
		deps, err := services.NewDependencies(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer deps.Close()

		lister := services.NewListerWith(deps.Records, deps.Artifacts)
		res, err := lister.List(ctx)
		if err != nil {
			return err
		}
		printResumes(cmd.OutOrStdout(), res.Resumes)

		if listPreviewDir == "" {
			return nil
		}
		previews, err := lister.FetchPreviews(ctx, res.Resumes, 8)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(listPreviewDir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", listPreviewDir, err)
		}
		for id, data := range previews {
			if err := os.WriteFile(filepath.Join(listPreviewDir, id+".png"), data, 0o644); err != nil {
				return fmt.Errorf("failed to write preview %s: %w", id, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d previews to %s\n", len(previews), listPreviewDir)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listPreviewDir, "previews", "", "Directory to download preview images into")
}

func printResumes(out io.Writer, resumes []models.Resume) {
	if len(resumes) == 0 {
		fmt.Fprintln(out, "No resumes found. Upload your first resume to get feedback.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tJOB TITLE\tSCORE")
	for _, r := range resumes {
		score := "pending"
		if r.Analyzed() {
			score = fmt.Sprintf("%d", r.Feedback.Value.OverallScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.CompanyName, r.JobTitle, score)
	}
	tw.Flush()
}
