package main

import (
	"fmt"

	"talent-hub-backend/internal/repository/postgres"
	"talent-hub-backend/internal/usecase"
	"talent-hub-backend/pkg/storage"
	"talent-hub-backend/pkg/validation"

	"github.com/spf13/cobra"
)

var nextVersionCmd = &cobra.Command{
	Use:   "next-version",
	Short: "Print the suggested next CV version",
	RunE:  runNextVersion,
}

var (
	nextTalentID       int64
	nextJobRoleLevelID int64
)

func init() {
	nextVersionCmd.Flags().Int64Var(&nextTalentID, "talent", 0, "Talent ID (required)")
	nextVersionCmd.Flags().Int64Var(&nextJobRoleLevelID, "job-role-level", 0, "Job role level ID (required)")
	_ = nextVersionCmd.MarkFlagRequired("talent")
	_ = nextVersionCmd.MarkFlagRequired("job-role-level")
	rootCmd.AddCommand(nextVersionCmd)
}

func runNextVersion(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	pool, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := storage.NewLocalStore(appConfig.UploadDir, appConfig.PublicBaseURL)
	if err != nil {
		return err
	}
	cvUC := usecase.NewTalentCVUsecase(postgres.NewTalentCVRepository(pool), store, validation.New(), auditLog)

	version, err := cvUC.SuggestNextVersion(ctx, nextTalentID, nextJobRoleLevelID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
