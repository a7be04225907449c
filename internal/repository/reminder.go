package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/billflow/billflow/internal/domain/reminder"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/kv"
	"github.com/billflow/billflow/internal/logger"
)

// schedulesRecord is the serialized form of all active reminder schedules
type schedulesRecord struct {
	Schedules []*reminder.Schedule `json:"schedules"`
}

type reminderRepository struct {
	mu        sync.RWMutex
	store     kv.Store
	logger    *logger.Logger
	schedules map[string]*reminder.Schedule // keyed by invoice id
}

// NewReminderRepository hydrates active schedules from the kv store
func NewReminderRepository(store kv.Store, log *logger.Logger) (reminder.Repository, error) {
	r := &reminderRepository{
		store:     store,
		logger:    log,
		schedules: make(map[string]*reminder.Schedule),
	}

	data, found, err := store.Get(context.Background(), kv.KeyReminderSchedules)
	if err != nil {
		return nil, err
	}
	if found {
		var record schedulesRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored reminder schedules are corrupt").
				Mark(ierr.ErrDatabase)
		}
		for _, schedule := range record.Schedules {
			r.schedules[schedule.InvoiceID] = schedule
		}
	}

	log.Debugw("hydrated reminder repository", "schedules", len(r.schedules))
	return r, nil
}

func (r *reminderRepository) Save(ctx context.Context, schedule *reminder.Schedule) error {
	if schedule == nil {
		return ierr.NewError("schedule cannot be nil").Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.schedules[schedule.InvoiceID]
	r.schedules[schedule.InvoiceID] = copySchedule(schedule)
	if err := r.persist(ctx); err != nil {
		if existed {
			r.schedules[schedule.InvoiceID] = prev
		} else {
			delete(r.schedules, schedule.InvoiceID)
		}
		return err
	}
	return nil
}

func (r *reminderRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*reminder.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schedule, exists := r.schedules[invoiceID]
	if !exists {
		return nil, ierr.NewError("reminder schedule not found").
			WithHintf("No reminder schedule exists for invoice %s", invoiceID).
			WithReportableDetails(map[string]any{
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySchedule(schedule), nil
}

func (r *reminderRepository) DeleteByInvoiceID(ctx context.Context, invoiceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.schedules[invoiceID]
	if !exists {
		return false, nil
	}

	delete(r.schedules, invoiceID)
	if err := r.persist(ctx); err != nil {
		r.schedules[invoiceID] = prev
		return false, err
	}
	return true, nil
}

func (r *reminderRepository) List(ctx context.Context) ([]*reminder.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*reminder.Schedule, 0, len(r.schedules))
	for _, schedule := range r.schedules {
		result = append(result, copySchedule(schedule))
	}
	return result, nil
}

// persist mirrors the schedules to the kv store. Callers hold the write
// lock.
func (r *reminderRepository) persist(ctx context.Context) error {
	record := schedulesRecord{Schedules: make([]*reminder.Schedule, 0, len(r.schedules))}
	for _, schedule := range r.schedules {
		record.Schedules = append(record.Schedules, schedule)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to serialize reminder schedules").
			Mark(ierr.ErrSystem)
	}
	return r.store.Put(ctx, kv.KeyReminderSchedules, data)
}

func copySchedule(schedule *reminder.Schedule) *reminder.Schedule {
	if schedule == nil {
		return nil
	}

	out := *schedule
	out.Entries = make([]*reminder.Entry, len(schedule.Entries))
	for i, entry := range schedule.Entries {
		entryCopy := *entry
		if entry.FiredAt != nil {
			firedAt := *entry.FiredAt
			entryCopy.FiredAt = &firedAt
		}
		out.Entries[i] = &entryCopy
	}
	return &out
}
