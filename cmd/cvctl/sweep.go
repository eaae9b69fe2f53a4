package main

import (
	"encoding/json"
	"fmt"
	"os"

	"talent-hub-backend/internal/repository/postgres"
	"talent-hub-backend/internal/usecase"
	"talent-hub-backend/pkg/storage"
	"talent-hub-backend/pkg/validation"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Repair active CV flags",
	Long:  "Ensure every talent has exactly one active job role level family. Use --talent to limit the sweep to one talent.",
	RunE:  runSweep,
}

var sweepTalentID int64

func init() {
	sweepCmd.Flags().Int64Var(&sweepTalentID, "talent", 0, "Only sweep this talent")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	pool, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Sweeps never remove files, so a local store rooted in the upload dir is enough.
	store, err := storage.NewLocalStore(appConfig.UploadDir, appConfig.PublicBaseURL)
	if err != nil {
		return err
	}
	cvUC := usecase.NewTalentCVUsecase(postgres.NewTalentCVRepository(pool), store, validation.New(), auditLog)

	var talentID *int64
	if sweepTalentID > 0 {
		talentID = &sweepTalentID
	}
	report, err := cvUC.Sweep(ctx, talentID)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
