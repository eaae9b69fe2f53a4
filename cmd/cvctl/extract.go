package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/extraction"
	"talent-hub-backend/internal/reconcile"
	"talent-hub-backend/internal/report"
	"talent-hub-backend/internal/repository/postgres"
	"talent-hub-backend/internal/usecase"
	"talent-hub-backend/pkg/security"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract structured data from a CV file",
	Long:  "Extract a CV (pdf, docx or txt) with Gemini and print the JSON. With --talent the extraction is compared against that talent's profile; --xlsx writes the comparison workbook.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractAPIKey   string
	extractTalentID int64
	extractXLSX     string
)

func init() {
	extractCmd.Flags().StringVar(&extractAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	extractCmd.Flags().Int64Var(&extractTalentID, "talent", 0, "Compare the extraction with this talent's profile")
	extractCmd.Flags().StringVar(&extractXLSX, "xlsx", "", "Write the comparison workbook to this path (requires --talent)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractXLSX != "" && extractTalentID == 0 {
		return fmt.Errorf("--xlsx requires --talent")
	}
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read CV file: %w", err)
	}
	name := filepath.Base(args[0])
	info, err := security.ValidateCVFile(name, data, appConfig.MaxCVUploadBytes)
	if err != nil {
		return err
	}

	apiKey := extractAPIKey
	if apiKey == "" {
		apiKey = appConfig.GeminiAPIKey
	}
	gen, err := extraction.NewGeminiGenerator(ctx, apiKey, appConfig.GeminiModel)
	if err != nil {
		return err
	}
	extracted, err := extraction.NewService(gen).Extract(ctx, domain.CVFile{Name: name, ContentType: info.ContentType, Data: data})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if extractTalentID == 0 {
		return enc.Encode(extracted)
	}

	pool, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	detector := reconcile.NewDetector(reconcile.Options{
		DateToleranceDays:     appConfig.DuplicateDateToleranceDays,
		MinSharedTechnologies: appConfig.DuplicateMinSharedTech,
	})
	compareUC := usecase.NewComparisonUsecase(postgres.NewTalentRepository(pool), postgres.NewCatalogRepository(pool), detector)
	result, err := compareUC.Compare(ctx, extractTalentID, extracted)
	if err != nil {
		return err
	}

	if extractXLSX != "" {
		workbook, err := report.ComparisonWorkbook(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(extractXLSX, workbook, 0o644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Comparison written to %s\n", extractXLSX)
	}
	return enc.Encode(result)
}
