package CronJobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"Gaadi/Ledger"
)

// DriftAuditor periodically recomputes every person's balance from the
// ledger and reports mismatches. It never writes corrections; drift is a
// signal for manual reconciliation.
type DriftAuditor struct {
	cronScheduler  *cron.Cron
	svc            *Ledger.Service
	log            zerolog.Logger
	schedule       string
	runImmediately bool
	jobID          cron.EntryID
}

// NewDriftAuditor creates an auditor on the given six-field cron
// schedule, e.g. "0 0 2 * * *" for 2 AM daily.
func NewDriftAuditor(svc *Ledger.Service, log zerolog.Logger, schedule string, runImmediately bool) *DriftAuditor {
	return &DriftAuditor{
		cronScheduler:  cron.New(cron.WithSeconds()),
		svc:            svc,
		log:            log.With().Str("component", "drift-auditor").Logger(),
		schedule:       schedule,
		runImmediately: runImmediately,
	}
}

// Start registers the scheduled audit and kicks off the scheduler.
func (d *DriftAuditor) Start() error {
	var err error
	d.jobID, err = d.cronScheduler.AddFunc(d.schedule, func() {
		d.log.Info().Msg("running scheduled balance audit")
		d.runAudit()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	d.cronScheduler.Start()
	d.log.Info().Str("schedule", d.schedule).Msg("balance audit scheduler started")

	if d.runImmediately {
		d.log.Info().Msg("running initial balance audit")
		d.runAudit()
	}
	return nil
}

// Stop terminates the scheduler. Running jobs finish first.
func (d *DriftAuditor) Stop() {
	if d.cronScheduler != nil {
		d.cronScheduler.Stop()
		d.log.Info().Msg("balance audit scheduler stopped")
	}
}

// UpdateSchedule swaps the audit onto a new cron schedule.
func (d *DriftAuditor) UpdateSchedule(schedule string) error {
	d.cronScheduler.Remove(d.jobID)

	var err error
	d.jobID, err = d.cronScheduler.AddFunc(schedule, func() {
		d.log.Info().Msg("running scheduled balance audit")
		d.runAudit()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	d.schedule = schedule
	d.log.Info().Str("schedule", schedule).Msg("balance audit schedule updated")
	return nil
}

// RunManualCheck executes one audit outside the schedule.
func (d *DriftAuditor) RunManualCheck() {
	d.log.Info().Msg("running manual balance audit")
	d.runAudit()
}

func (d *DriftAuditor) runAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	drifts, err := d.svc.AuditBalances(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("balance audit failed")
		return
	}
	if len(drifts) == 0 {
		d.log.Info().Msg("balance audit clean")
		return
	}
	d.log.Warn().Int("drifted", len(drifts)).Msg("balance audit found drifted accounts")
}
