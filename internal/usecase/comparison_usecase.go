package usecase

import (
	"context"
	"fmt"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/reconcile"
	"talent-hub-backend/pkg/apperror"

	"golang.org/x/sync/errgroup"
)

type comparisonUsecase struct {
	talentRepo  domain.TalentRepository
	catalogRepo domain.CatalogRepository
	detector    *reconcile.Detector
}

func NewComparisonUsecase(talentRepo domain.TalentRepository, catalogRepo domain.CatalogRepository, detector *reconcile.Detector) domain.ComparisonUsecase {
	if detector == nil {
		detector = reconcile.NewDetector(reconcile.DefaultOptions())
	}
	return &comparisonUsecase{talentRepo: talentRepo, catalogRepo: catalogRepo, detector: detector}
}

// loadCatalog fetches the three reference lists concurrently.
func loadCatalog(ctx context.Context, repo domain.CatalogRepository) (domain.Catalog, error) {
	var catalog domain.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		skills, err := repo.ListSkills(gctx)
		catalog.Skills = skills
		return err
	})
	g.Go(func() error {
		jrls, err := repo.ListJobRoleLevels(gctx)
		catalog.JobRoleLevels = jrls
		return err
	})
	g.Go(func() error {
		types, err := repo.ListCertificateTypes(gctx)
		catalog.CertificateTypes = types
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Catalog{}, apperror.Upstream("Failed to load reference catalogs, please retry", fmt.Errorf("%w: %w", domain.ErrExternalService, err))
	}
	return catalog, nil
}

func loadTalent(ctx context.Context, repo domain.TalentRepository, talentID int64) (*domain.Talent, error) {
	if talentID <= 0 {
		return nil, apperror.BadRequest("Invalid talent ID").WithField("talentId")
	}
	talent, err := repo.GetByID(ctx, talentID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load talent %d: %w", talentID, err))
	}
	if talent == nil {
		return nil, apperror.NotFound("Talent not found")
	}
	return talent, nil
}

func (u *comparisonUsecase) Compare(ctx context.Context, talentID int64, extraction *domain.CVExtraction) (*domain.ComparisonResult, error) {
	if extraction == nil {
		return nil, apperror.BadRequest("Extraction is required")
	}

	var (
		talent  *domain.Talent
		catalog domain.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		talent, err = loadTalent(gctx, u.talentRepo, talentID)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = loadCatalog(gctx, u.catalogRepo)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := reconcile.Compare(extraction, talent, catalog, u.detector)
	return &result, nil
}
