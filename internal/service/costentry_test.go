package service

import (
	"testing"
	"time"

	"github.com/billflow/billflow/internal/api/dto"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type CostEntryServiceSuite struct {
	testutil.BaseServiceTestSuite
	costSvc CostEntryService
}

func TestCostEntryService(t *testing.T) {
	suite.Run(t, new(CostEntryServiceSuite))
}

func (s *CostEntryServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.costSvc = NewCostEntryService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *CostEntryServiceSuite) TestCreateCostEntry() {
	resp, err := s.costSvc.CreateCostEntry(s.Ctx, &dto.CreateCostEntryRequest{
		Category:    "hosting",
		Amount:      dec("49.99"),
		Description: "march server bill",
	})
	s.Require().NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("hosting", resp.Category)
	s.Equal(s.Clock.Now(), resp.Date, "date defaults to now when omitted")
}

func (s *CostEntryServiceSuite) TestCreateCostEntryValidation() {
	_, err := s.costSvc.CreateCostEntry(s.Ctx, &dto.CreateCostEntryRequest{
		Category: "hosting",
		Amount:   dec("0"),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.costSvc.CreateCostEntry(s.Ctx, &dto.CreateCostEntryRequest{
		Amount: dec("10"),
	})
	s.True(ierr.IsValidation(err))
}

func (s *CostEntryServiceSuite) TestUpdateCostEntry() {
	created, err := s.costSvc.CreateCostEntry(s.Ctx, &dto.CreateCostEntryRequest{
		Category: "hosting",
		Amount:   dec("49.99"),
	})
	s.Require().NoError(err)

	s.Clock.Advance(time.Hour)
	resp, err := s.costSvc.UpdateCostEntry(s.Ctx, created.ID, &dto.UpdateCostEntryRequest{
		Amount:      lo.ToPtr(dec("59.99")),
		Description: lo.ToPtr("price increase"),
	})
	s.Require().NoError(err)
	s.True(resp.Amount.Equal(dec("59.99")))
	s.Equal("price increase", resp.Description)
	s.Equal("hosting", resp.Category)
	s.True(resp.UpdatedAt.After(resp.CreatedAt))
}

func (s *CostEntryServiceSuite) TestDeleteCostEntry() {
	created, err := s.costSvc.CreateCostEntry(s.Ctx, &dto.CreateCostEntryRequest{
		Category: "hosting",
		Amount:   dec("49.99"),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.costSvc.DeleteCostEntry(s.Ctx, created.ID))

	_, err = s.costSvc.GetCostEntry(s.Ctx, created.ID)
	s.True(ierr.IsNotFound(err))

	err = s.costSvc.DeleteCostEntry(s.Ctx, created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *CostEntryServiceSuite) TestListCostEntries() {
	for _, category := range []string{"hosting", "licences", "travel"} {
		_, err := s.costSvc.CreateCostEntry(s.Ctx, &dto.CreateCostEntryRequest{
			Category: category,
			Amount:   dec("10"),
		})
		s.Require().NoError(err)
	}

	list, err := s.costSvc.ListCostEntries(s.Ctx)
	s.Require().NoError(err)
	s.Equal(3, list.Total)
	s.Equal("hosting", list.Items[0].Category)
	s.Equal("travel", list.Items[2].Category)
}
