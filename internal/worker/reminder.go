package worker

import (
	"context"
	"time"

	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/service"
)

// ReminderWorker periodically runs the reminder firing pass. It is the
// only automatic driver of reminder evaluation; the cron HTTP endpoint
// shares the same service call for externally scheduled deployments.
type ReminderWorker struct {
	reminderSvc service.ReminderService
	interval    time.Duration
	logger      *logger.Logger
	stop        chan struct{}
	done        chan struct{}
}

func NewReminderWorker(cfg *config.Configuration, reminderSvc service.ReminderService, log *logger.Logger) *ReminderWorker {
	return &ReminderWorker{
		reminderSvc: reminderSvc,
		interval:    cfg.Reminder.TickInterval,
		logger:      log,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the tick loop. It returns immediately; the loop runs
// until Stop is called.
func (w *ReminderWorker) Start() {
	go w.run()
}

func (w *ReminderWorker) run() {
	defer close(w.done)

	w.logger.Infow("reminder worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), w.interval)
			if _, err := w.reminderSvc.ProcessDueReminders(ctx); err != nil {
				w.logger.Errorw("reminder pass failed", "error", err)
			}
			cancel()
		}
	}
}

// Stop terminates the tick loop and waits for an in-flight pass to finish
func (w *ReminderWorker) Stop() {
	close(w.stop)
	<-w.done
	w.logger.Infow("reminder worker stopped")
}
