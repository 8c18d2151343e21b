package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/resumind/internal/models"
	"github.com/Lllllllleong/resumind/internal/pipeline"
	"github.com/Lllllllleong/resumind/internal/services"
	"github.com/Lllllllleong/resumind/internal/upload"
)

var (
	analyzeCompany         string
	analyzeTitle           string
	analyzeDescription     string
	analyzeDescriptionFile string
	analyzeParallel        int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf> [more.pdf...]",
	Short: "Run the ingestion pipeline for one or more resumes",
	Long: `Runs the full pipeline for each file: upload, preview rendering, record
persistence and analysis. Files are processed as independent runs, several at
a time, and each gets its own resume id.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCompany, "company", "c", "", "Company name (required)")
	analyzeCmd.Flags().StringVarP(&analyzeTitle, "title", "t", "", "Job title (required)")
	analyzeCmd.Flags().StringVarP(&analyzeDescription, "description", "d", "", "Job description text")
	analyzeCmd.Flags().StringVar(&analyzeDescriptionFile, "description-file", "", "Path to a file holding the job description")
	analyzeCmd.Flags().IntVarP(&analyzeParallel, "parallel", "p", 4, "Maximum concurrent runs")

	_ = analyzeCmd.MarkFlagRequired("company")
	_ = analyzeCmd.MarkFlagRequired("title")
	analyzeCmd.MarkFlagsMutuallyExclusive("description", "description-file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	description := analyzeDescription
	if analyzeDescriptionFile != "" {
		data, err := os.ReadFile(analyzeDescriptionFile)
		if err != nil {
			return fmt.Errorf("failed to read description file: %w", err)
		}
		description = string(data)
	}
	req := models.AnalyzeRequest{
		CompanyName:    analyzeCompany,
		JobTitle:       analyzeTitle,
		JobDescription: description,
	}

	cfg, err := services.LoadConfig()
	if err != nil {
		return err
	}
	deps, err := services.NewDependencies(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	orch := pipeline.New(deps.Artifacts, deps.Records, deps.Vertex, pipeline.WithLogger(slog.Default()))
	analyzer := services.NewAnalyzerWith(orch, upload.NewFilter(cfg.MaxUploadBytes))

	failed, err := analyzeFiles(ctx, analyzer, req, args, analyzeParallel, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(args))
	}
	return nil
}

// analyzeFiles runs one pipeline per path. A failed run does not stop the
// others; the number of failed runs is returned.
func analyzeFiles(ctx context.Context, analyzer *services.AnalyzerFunction, req models.AnalyzeRequest, paths []string, parallel int, out io.Writer) (int, error) {
	if parallel < 1 {
		parallel = 1
	}
	// Runs are independent: an unreadable path is reported after the others
	// finish and never cancels a run in progress.
	runCtx := context.WithoutCancel(ctx)
	var eg errgroup.Group
	eg.SetLimit(parallel)

	var mu sync.Mutex
	failed := 0
	printf := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, a...)
	}

	for _, path := range paths {
		eg.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			name := filepath.Base(path)
			files := []upload.File{{Name: name, Data: data}}
			runReq := req

			resume, err := analyzer.Process(runCtx, &runReq, files, func(s pipeline.Status) {
				printf("[%s] %s\n", name, s.Label())
			})
			if err != nil {
				if !isRunFailure(err) {
					printf("[%s] %v\n", name, err)
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			printf("[%s] resume %s scored %d/100\n", name, resume.ID, resume.Feedback.Value.OverallScore)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return failed, err
	}
	return failed, nil
}

// isRunFailure reports whether err was already shown as a Failed status.
func isRunFailure(err error) bool {
	var failure *pipeline.FailureError
	return errors.As(err, &failure)
}
