package service

import (
	"context"

	"github.com/billflow/billflow/internal/api/dto"
	"github.com/billflow/billflow/internal/cache"
)

// TaxService exposes the region-aware tax engine: single and itemized
// computations plus rate table lookups and upserts.
type TaxService interface {
	ComputeTax(ctx context.Context, req *dto.ComputeTaxRequest) (*dto.TaxCalculationResponse, error)
	ComputeItemizedTax(ctx context.Context, req *dto.ComputeItemizedTaxRequest) (*dto.ItemizedTaxResponse, error)
	GetTaxRates(ctx context.Context, region string) (*dto.TaxRatesResponse, error)
	UpdateTaxRate(ctx context.Context, req *dto.UpdateTaxRateRequest) (*dto.TaxRatesResponse, error)
}

type taxService struct {
	ServiceParams
}

func NewTaxService(params ServiceParams) TaxService {
	return &taxService{ServiceParams: params}
}

func (s *taxService) ComputeTax(ctx context.Context, req *dto.ComputeTaxRequest) (*dto.TaxCalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	input, err := req.TaxInput()
	if err != nil {
		return nil, err
	}

	calc, err := s.RateTable.Compute(req.Amount, input, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	return &dto.TaxCalculationResponse{Calculation: calc}, nil
}

func (s *taxService) ComputeItemizedTax(ctx context.Context, req *dto.ComputeItemizedTaxRequest) (*dto.ItemizedTaxResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	input, err := req.TaxInput()
	if err != nil {
		return nil, err
	}

	calc, err := s.RateTable.ComputeItemized(req.ToItems(), input, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	return &dto.ItemizedTaxResponse{ItemizedCalculation: calc}, nil
}

func (s *taxService) GetTaxRates(ctx context.Context, region string) (*dto.TaxRatesResponse, error) {
	cacheKey := cache.GenerateKey(cache.PrefixTaxRate, region)
	if cached, found := s.Cache.Get(ctx, cacheKey); found {
		if resp, ok := cached.(*dto.TaxRatesResponse); ok {
			return resp, nil
		}
	}

	rates, err := s.RateTable.Rates(region)
	if err != nil {
		return nil, err
	}

	resp := &dto.TaxRatesResponse{Region: region, Rates: rates}
	s.Cache.Set(ctx, cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

func (s *taxService) UpdateTaxRate(ctx context.Context, req *dto.UpdateTaxRateRequest) (*dto.TaxRatesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	region := s.RateTable.SetRate(req.Region, req.Rate)
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixTaxRate, region))

	s.Logger.Infow("updated tax rate",
		"region", req.Region,
		"rate", req.Rate.String())

	rates, err := s.RateTable.Rates(region)
	if err != nil {
		return nil, err
	}
	return &dto.TaxRatesResponse{Region: region, Rates: rates}, nil
}
