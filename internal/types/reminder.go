package types

import (
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/samber/lo"
)

// ReminderChannel is the notification channel a reminder entry fires on
type ReminderChannel string

const (
	ReminderChannelEmail ReminderChannel = "email"
	ReminderChannelSMS   ReminderChannel = "sms"
	ReminderChannelBoth  ReminderChannel = "both"
)

func (c ReminderChannel) String() string {
	return string(c)
}

func (c ReminderChannel) Validate() error {
	allowed := []ReminderChannel{
		ReminderChannelEmail,
		ReminderChannelSMS,
		ReminderChannelBoth,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid reminder channel").
			WithHint("Please provide a valid reminder channel").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NotificationStatus is the delivery state reported by the dispatch collaborator
type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)
