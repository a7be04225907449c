package service

import (
	"testing"
	"time"

	"github.com/billflow/billflow/internal/api/dto"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/kv"
	"github.com/billflow/billflow/internal/testutil"
	"github.com/billflow/billflow/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	invoiceSvc  InvoiceService
	reminderSvc ReminderService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.reminderSvc = NewReminderService(params)
	s.invoiceSvc = NewInvoiceService(params, s.reminderSvc)
}

func (s *InvoiceServiceSuite) createRequest() *dto.CreateInvoiceRequest {
	due := s.Clock.Now().AddDate(0, 0, 14)
	return &dto.CreateInvoiceRequest{
		CustomerID: "cust_1",
		LineItems: []dto.CreateLineItemRequest{
			{DisplayName: "consulting", Quantity: dec("2"), UnitPrice: dec("50")},
		},
		TaxRegion: lo.ToPtr("US-CA"),
		DueDate:   &due,
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	resp, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	s.Equal("INV-20240315-0001", resp.InvoiceNumber)
	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.True(resp.Subtotal.Equal(dec("100")), "subtotal %s", resp.Subtotal)
	s.True(resp.TaxRate.Equal(dec("0.0725")))
	s.True(resp.TaxAmount.Equal(dec("7.25")))
	s.True(resp.Total.Equal(dec("107.25")))
	s.Equal("US-CA", resp.Region)
	s.Len(resp.LineItems, 1)
	s.True(resp.LineItems[0].Amount.Equal(dec("100")))

	// a due date installs the reminder schedule in the same operation
	schedule, err := s.reminderSvc.GetSchedule(s.Ctx, resp.ID)
	s.Require().NoError(err)
	s.Len(schedule.Entries, 6)
	s.Equal(*resp.DueDate, schedule.DueDate)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWithoutDueDate() {
	req := s.createRequest()
	req.DueDate = nil

	resp, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
	s.Require().NoError(err)

	_, err = s.reminderSvc.GetSchedule(s.Ctx, resp.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWithDiscount() {
	req := s.createRequest()
	req.TaxRegion = nil
	req.TaxRate = lo.ToPtr(dec("0.10"))
	req.DiscountAmount = dec("20")

	resp, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
	s.Require().NoError(err)

	// tax applies to the post-discount amount
	s.True(resp.Subtotal.Equal(dec("100")))
	s.True(resp.TaxAmount.Equal(dec("8")), "tax %s", resp.TaxAmount)
	s.True(resp.Total.Equal(dec("88")), "total %s", resp.Total)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDiscountExceedsSubtotal() {
	req := s.createRequest()
	req.TaxRegion = nil
	req.TaxRate = lo.ToPtr(dec("0.10"))
	req.DiscountAmount = dec("150")

	resp, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
	s.Require().NoError(err)

	// negative taxable base flows through without clamping
	s.True(resp.TaxAmount.Equal(dec("-5")))
	s.True(resp.Total.Equal(dec("-55")))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	s.Run("no line items", func() {
		req := s.createRequest()
		req.LineItems = nil
		_, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
		s.True(ierr.IsValidation(err))
	})

	s.Run("rate and region are mutually exclusive", func() {
		req := s.createRequest()
		req.TaxRate = lo.ToPtr(dec("0.10"))
		_, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
		s.True(ierr.IsValidation(err))
	})

	s.Run("zero quantity", func() {
		req := s.createRequest()
		req.LineItems[0].Quantity = decimal.Zero
		_, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
		s.True(ierr.IsValidation(err))
	})

	s.Run("unknown region", func() {
		req := s.createRequest()
		req.TaxRegion = lo.ToPtr("MARS")
		_, err := s.invoiceSvc.CreateInvoice(s.Ctx, req)
		s.True(ierr.IsNotFound(err))
	})

	count, err := s.InvoiceRepo.Count(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, count, "no failed create may leave an invoice behind")
}

func (s *InvoiceServiceSuite) TestCreateInvoicePersistenceFailure() {
	s.KV.FailWrites(true)

	_, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))

	s.KV.FailWrites(false)
	count, err := s.InvoiceRepo.Count(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *InvoiceServiceSuite) TestCreateRollsBackWhenReminderInstallFails() {
	s.KV.FailKey(kv.KeyReminderSchedules, true)

	_, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().Error(err)

	// the committed invoice was rolled back
	count, err := s.InvoiceRepo.Count(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	// the consumed sequence number is never reissued
	s.KV.FailKey(kv.KeyReminderSchedules, false)
	resp, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)
	s.Equal("INV-20240315-0002", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestEditInvoiceRecomputes() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	s.Clock.Advance(time.Hour)
	resp, err := s.invoiceSvc.EditInvoice(s.Ctx, created.ID, &dto.EditInvoiceRequest{
		LineItems: []dto.CreateLineItemRequest{
			{DisplayName: "consulting", Quantity: dec("1"), UnitPrice: dec("200")},
		},
		DiscountAmount: lo.ToPtr(dec("10")),
	})
	s.Require().NoError(err)

	// 190 * 0.0725 = 13.775 rounds to 13.78
	s.True(resp.Subtotal.Equal(dec("200")))
	s.True(resp.TaxAmount.Equal(dec("13.78")), "tax %s", resp.TaxAmount)
	s.True(resp.Total.Equal(dec("203.78")), "total %s", resp.Total)
	s.Equal("US-CA", resp.Region, "stored region survives a recompute")
	s.Equal(types.InvoiceStatusUpdated, resp.InvoiceStatus)
	s.True(resp.UpdatedAt.After(resp.CreatedAt))
	s.Equal(created.InvoiceNumber, resp.InvoiceNumber, "invoice number never changes")
}

func (s *InvoiceServiceSuite) TestEditInvoiceDueDateReschedules() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	newDue := s.Clock.Now().AddDate(0, 0, 30)
	_, err = s.invoiceSvc.EditInvoice(s.Ctx, created.ID, &dto.EditInvoiceRequest{
		DueDate: &newDue,
	})
	s.Require().NoError(err)

	schedule, err := s.reminderSvc.GetSchedule(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(newDue, schedule.DueDate)
	for _, entry := range schedule.Entries {
		s.Nil(entry.FiredAt)
	}
}

func (s *InvoiceServiceSuite) TestEditRestoresInvoiceWhenRescheduleFails() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	s.KV.FailKey(kv.KeyReminderSchedules, true)
	newDue := s.Clock.Now().AddDate(0, 0, 30)
	_, err = s.invoiceSvc.EditInvoice(s.Ctx, created.ID, &dto.EditInvoiceRequest{
		CustomerID: lo.ToPtr("cust_2"),
		DueDate:    &newDue,
	})
	s.Require().Error(err)

	got, err := s.invoiceSvc.GetInvoice(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("cust_1", got.CustomerID, "failed edit must leave the invoice untouched")
	s.Equal(types.InvoiceStatusDraft, got.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestDeleteInvoice() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	s.Require().NoError(s.invoiceSvc.DeleteInvoice(s.Ctx, created.ID))

	_, err = s.invoiceSvc.GetInvoice(s.Ctx, created.ID)
	s.True(ierr.IsNotFound(err))

	_, err = s.reminderSvc.GetSchedule(s.Ctx, created.ID)
	s.True(ierr.IsNotFound(err), "deleting an invoice cancels its schedule")

	err = s.invoiceSvc.DeleteInvoice(s.Ctx, created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceStatus() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	resp, err := s.invoiceSvc.UpdateInvoiceStatus(s.Ctx, created.ID, &dto.UpdateInvoiceStatusRequest{
		Status: types.InvoiceStatusPaid,
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.InvoiceStatus)

	_, err = s.invoiceSvc.UpdateInvoiceStatus(s.Ctx, created.ID, &dto.UpdateInvoiceStatusRequest{
		Status: types.InvoiceStatusDraft,
	})
	s.True(ierr.IsInvalidOperation(err), "lifecycle statuses cannot be set externally")
}

func (s *InvoiceServiceSuite) TestGetInvoiceByNumber() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	resp, err := s.invoiceSvc.GetInvoiceByNumber(s.Ctx, created.InvoiceNumber)
	s.Require().NoError(err)
	s.Equal(created.ID, resp.ID)

	_, err = s.invoiceSvc.GetInvoiceByNumber(s.Ctx, "INV-19700101-9999")
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesInsertionOrder() {
	first, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)
	second, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	list, err := s.invoiceSvc.ListInvoices(s.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(2, list.Total)
	s.Equal(first.ID, list.Items[0].ID)
	s.Equal(second.ID, list.Items[1].ID)
}

func (s *InvoiceServiceSuite) TestGetInvoiceStatus() {
	created, err := s.invoiceSvc.CreateInvoice(s.Ctx, s.createRequest())
	s.Require().NoError(err)

	status, err := s.invoiceSvc.GetInvoiceStatus(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusDraft, status.Status)
	s.Equal(created.UpdatedAt, status.LastModified)
	s.Empty(status.ReminderHistory)

	// fire the earliest reminder and check it shows up in the view
	s.Clock.SetTime(created.DueDate.AddDate(0, 0, -7))
	_, err = s.reminderSvc.ProcessDueReminders(s.Ctx)
	s.Require().NoError(err)

	status, err = s.invoiceSvc.GetInvoiceStatus(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Len(status.ReminderHistory, 1)
	s.Equal(-7, status.ReminderHistory[0].OffsetDays)
}
