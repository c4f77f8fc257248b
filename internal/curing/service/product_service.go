package service

import (
	"context"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
)

// ProductService manages the product catalog.
type ProductService struct {
	repo *repository.ProductRepository
}

func NewProductService(repo *repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

type ProductInput struct {
	Code                   string  `json:"code" binding:"required"`
	Name                   string  `json:"name" binding:"required"`
	TargetDurationDays     int     `json:"targetDurationDays"`
	StandardLossPercentage float64 `json:"standardLossPercentage"`
	DefaultTrolleyWeight   float64 `json:"defaultTrolleyWeight"`
	DefaultStickCount      int     `json:"defaultStickCount"`
	DefaultPieceCount      int     `json:"defaultPieceCount"`
}

func (s *ProductService) Create(ctx context.Context, in *ProductInput) (*entity.Product, error) {
	weight := in.DefaultTrolleyWeight
	if weight == 0 {
		weight = 40
	}
	p := &entity.Product{
		ID:                     newID(),
		Code:                   in.Code,
		Name:                   in.Name,
		TargetDurationDays:     in.TargetDurationDays,
		StandardLossPercentage: in.StandardLossPercentage,
		DefaultTrolleyWeight:   weight,
		DefaultStickCount:      in.DefaultStickCount,
		DefaultPieceCount:      in.DefaultPieceCount,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, wrapRepoErr(err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]entity.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in *ProductInput) (*entity.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	p.Code = in.Code
	p.Name = in.Name
	p.TargetDurationDays = in.TargetDurationDays
	p.StandardLossPercentage = in.StandardLossPercentage
	if in.DefaultTrolleyWeight != 0 {
		p.DefaultTrolleyWeight = in.DefaultTrolleyWeight
	}
	p.DefaultStickCount = in.DefaultStickCount
	p.DefaultPieceCount = in.DefaultPieceCount
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, wrapRepoErr(err)
	}
	return p, nil
}

// Delete removes a product. The foreign key from batches restricts the
// delete, so a product with recorded batches comes back as a conflict.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return wrapRepoErr(s.repo.Delete(ctx, id))
}
