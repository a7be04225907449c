package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/billflow/billflow/internal/domain/costentry"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/kv"
	"github.com/billflow/billflow/internal/logger"
)

type costEntriesRecord struct {
	Entries []*costentry.CostEntry `json:"entries"`
}

type costEntryRepository struct {
	mu      sync.RWMutex
	store   kv.Store
	logger  *logger.Logger
	entries map[string]*costentry.CostEntry
	order   []string
}

// NewCostEntryRepository hydrates cost entries from the kv store
func NewCostEntryRepository(store kv.Store, log *logger.Logger) (costentry.Repository, error) {
	r := &costEntryRepository{
		store:   store,
		logger:  log,
		entries: make(map[string]*costentry.CostEntry),
	}

	data, found, err := store.Get(context.Background(), kv.KeyCostEntries)
	if err != nil {
		return nil, err
	}
	if found {
		var record costEntriesRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored cost entries are corrupt").
				Mark(ierr.ErrDatabase)
		}
		for _, entry := range record.Entries {
			r.entries[entry.ID] = entry
			r.order = append(r.order, entry.ID)
		}
	}

	return r, nil
}

func (r *costEntryRepository) Create(ctx context.Context, entry *costentry.CostEntry) error {
	if entry == nil {
		return ierr.NewError("cost entry cannot be nil").Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		return ierr.NewError("cost entry already exists").
			WithReportableDetails(map[string]any{
				"cost_entry_id": entry.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	entryCopy := *entry
	r.entries[entry.ID] = &entryCopy
	r.order = append(r.order, entry.ID)
	if err := r.persist(ctx); err != nil {
		delete(r.entries, entry.ID)
		r.order = r.order[:len(r.order)-1]
		return err
	}
	return nil
}

func (r *costEntryRepository) Get(ctx context.Context, id string) (*costentry.CostEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, ierr.NewError("cost entry not found").
			WithHintf("Cost entry with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"cost_entry_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	entryCopy := *entry
	return &entryCopy, nil
}

func (r *costEntryRepository) Update(ctx context.Context, entry *costentry.CostEntry) error {
	if entry == nil {
		return ierr.NewError("cost entry cannot be nil").Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.entries[entry.ID]
	if !exists {
		return ierr.NewError("cost entry not found").
			WithHintf("Cost entry with ID %s was not found", entry.ID).
			WithReportableDetails(map[string]any{
				"cost_entry_id": entry.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	entryCopy := *entry
	r.entries[entry.ID] = &entryCopy
	if err := r.persist(ctx); err != nil {
		r.entries[entry.ID] = prev
		return err
	}
	return nil
}

func (r *costEntryRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.entries[id]
	if !exists {
		return false, nil
	}

	prevOrder := r.order
	delete(r.entries, id)
	r.order = make([]string, 0, len(prevOrder)-1)
	for _, existing := range prevOrder {
		if existing != id {
			r.order = append(r.order, existing)
		}
	}

	if err := r.persist(ctx); err != nil {
		r.entries[id] = prev
		r.order = prevOrder
		return false, err
	}
	return true, nil
}

func (r *costEntryRepository) List(ctx context.Context) ([]*costentry.CostEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*costentry.CostEntry, 0, len(r.order))
	for _, id := range r.order {
		entryCopy := *r.entries[id]
		result = append(result, &entryCopy)
	}
	return result, nil
}

// persist mirrors the entries to the kv store. Callers hold the write
// lock.
func (r *costEntryRepository) persist(ctx context.Context) error {
	record := costEntriesRecord{Entries: make([]*costentry.CostEntry, 0, len(r.order))}
	for _, id := range r.order {
		record.Entries = append(record.Entries, r.entries[id])
	}

	data, err := json.Marshal(record)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to serialize cost entries").
			Mark(ierr.ErrSystem)
	}
	return r.store.Put(ctx, kv.KeyCostEntries, data)
}
