package service

import (
	"context"

	"github.com/billflow/billflow/internal/api/dto"
	"github.com/billflow/billflow/internal/domain/costentry"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/types"
)

// CostEntryService tracks operating costs alongside invoicing
type CostEntryService interface {
	CreateCostEntry(ctx context.Context, req *dto.CreateCostEntryRequest) (*dto.CostEntryResponse, error)
	UpdateCostEntry(ctx context.Context, id string, req *dto.UpdateCostEntryRequest) (*dto.CostEntryResponse, error)
	DeleteCostEntry(ctx context.Context, id string) error
	GetCostEntry(ctx context.Context, id string) (*dto.CostEntryResponse, error)
	ListCostEntries(ctx context.Context) (*dto.ListCostEntriesResponse, error)
}

type costEntryService struct {
	ServiceParams
}

func NewCostEntryService(params ServiceParams) CostEntryService {
	return &costEntryService{ServiceParams: params}
}

func (s *costEntryService) CreateCostEntry(ctx context.Context, req *dto.CreateCostEntryRequest) (*dto.CostEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	date := now
	if req.Date != nil {
		date = *req.Date
	}

	entry := &costentry.CostEntry{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COST_ENTRY),
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.CostEntryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.Logger.Infow("created cost entry",
		"cost_entry_id", entry.ID,
		"category", entry.Category,
		"amount", entry.Amount.String())
	return &dto.CostEntryResponse{CostEntry: entry}, nil
}

func (s *costEntryService) UpdateCostEntry(ctx context.Context, id string, req *dto.UpdateCostEntryRequest) (*dto.CostEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.CostEntryRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		entry.Category = *req.Category
	}
	if req.Amount != nil {
		entry.Amount = *req.Amount
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	entry.UpdatedAt = s.Clock.Now()

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.CostEntryRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return &dto.CostEntryResponse{CostEntry: entry}, nil
}

func (s *costEntryService) DeleteCostEntry(ctx context.Context, id string) error {
	removed, err := s.CostEntryRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ierr.NewError("cost entry not found").
			WithHintf("Cost entry %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *costEntryService) GetCostEntry(ctx context.Context, id string) (*dto.CostEntryResponse, error) {
	entry, err := s.CostEntryRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CostEntryResponse{CostEntry: entry}, nil
}

func (s *costEntryService) ListCostEntries(ctx context.Context) (*dto.ListCostEntriesResponse, error) {
	entries, err := s.CostEntryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListCostEntriesResponse{
		Items: make([]*dto.CostEntryResponse, 0, len(entries)),
		Total: len(entries),
	}
	for _, entry := range entries {
		resp.Items = append(resp.Items, &dto.CostEntryResponse{CostEntry: entry})
	}
	return resp, nil
}
