package reminder

import (
	"testing"
	"time"

	"github.com/billflow/billflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	schedule := NewSchedule("inv_1", due, now)

	assert.NotEmpty(t, schedule.ID)
	assert.Equal(t, "inv_1", schedule.InvoiceID)
	assert.Equal(t, due, schedule.DueDate)
	assert.Equal(t, now, schedule.CreatedAt)
	require.Len(t, schedule.Entries, len(DefaultOffsets))

	wantOffsets := []int{-7, -3, -1, 0, 1, 7}
	wantChannels := []types.ReminderChannel{
		types.ReminderChannelEmail,
		types.ReminderChannelEmail,
		types.ReminderChannelSMS,
		types.ReminderChannelBoth,
		types.ReminderChannelBoth,
		types.ReminderChannelBoth,
	}

	for i, entry := range schedule.Entries {
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, wantOffsets[i], entry.OffsetDays)
		assert.Equal(t, wantChannels[i], entry.Channel)
		assert.Equal(t, due.AddDate(0, 0, wantOffsets[i]), entry.FireAt)
		assert.Nil(t, entry.FiredAt)
	}
}

func TestSchedulePending(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	schedule := NewSchedule("inv_1", due, due.AddDate(0, 0, -30))

	t.Run("nothing pending before the first offset", func(t *testing.T) {
		assert.Empty(t, schedule.Pending(due.AddDate(0, 0, -8)))
	})

	t.Run("entries at or before now are pending", func(t *testing.T) {
		pending := schedule.Pending(due.AddDate(0, 0, -3))
		require.Len(t, pending, 2)
		assert.Equal(t, -7, pending[0].OffsetDays)
		assert.Equal(t, -3, pending[1].OffsetDays)
	})

	t.Run("fired entries are excluded", func(t *testing.T) {
		firedAt := due.AddDate(0, 0, -7)
		schedule.Entries[0].FiredAt = &firedAt

		pending := schedule.Pending(due.AddDate(0, 0, -3))
		require.Len(t, pending, 1)
		assert.Equal(t, -3, pending[0].OffsetDays)
	})

	t.Run("everything unfired is pending after the last offset", func(t *testing.T) {
		pending := schedule.Pending(due.AddDate(0, 0, 30))
		assert.Len(t, pending, 5)
	})
}

func TestScheduleFired(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	schedule := NewSchedule("inv_1", due, due.AddDate(0, 0, -30))

	assert.Empty(t, schedule.Fired())

	// mark out of order; Fired must sort chronologically
	later := due.Add(2 * time.Hour)
	earlier := due.Add(1 * time.Hour)
	schedule.Entries[3].FiredAt = &later
	schedule.Entries[1].FiredAt = &earlier

	fired := schedule.Fired()
	require.Len(t, fired, 2)
	assert.Equal(t, -3, fired[0].OffsetDays)
	assert.Equal(t, 0, fired[1].OffsetDays)
}
