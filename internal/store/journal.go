// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/pkg/errutil"
)

// DefaultJournalBuffer is how many records a DeathJournal holds before it
// starts dropping them.
const DefaultJournalBuffer = 256

// drainTimeout bounds how long Run keeps writing after its context ends.
const drainTimeout = 5 * time.Second

// DeathJournal hands death records from the simulation goroutine to a
// writer goroutine. Record never blocks; a full buffer drops the record.
type DeathJournal struct {
	repo     DeathLogRepository
	logger   *slog.Logger
	records  chan death.Record
	attempts uint64
	backoff  time.Duration
}

var _ death.Journal = (*DeathJournal)(nil)

// NewDeathJournal creates a journal writing to repo. size is the buffer
// length; zero means DefaultJournalBuffer.
func NewDeathJournal(repo DeathLogRepository, logger *slog.Logger, size int) *DeathJournal {
	if size <= 0 {
		size = DefaultJournalBuffer
	}
	return &DeathJournal{
		repo:     repo,
		logger:   logger,
		records:  make(chan death.Record, size),
		attempts: 3,
		backoff:  100 * time.Millisecond,
	}
}

// Record queues r for writing.
func (j *DeathJournal) Record(r death.Record) {
	select {
	case j.records <- r:
	default:
		journalWrites.WithLabelValues("dropped").Inc()
		j.logger.Warn("death journal full, dropping record",
			slog.String("victim", r.Victim.String()),
			slog.String("victim_name", r.VictimName))
	}
}

// Pending returns how many records are waiting to be written.
func (j *DeathJournal) Pending() int { return len(j.records) }

// Run writes queued records until ctx ends, then flushes what is left.
func (j *DeathJournal) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			j.drain()
			return nil
		case r := <-j.records:
			j.write(ctx, r)
		}
	}
}

func (j *DeathJournal) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case r := <-j.records:
			j.write(ctx, r)
		default:
			return
		}
	}
}

// write appends r, retrying transient database errors.
func (j *DeathJournal) write(ctx context.Context, r death.Record) {
	backoff := retry.WithMaxRetries(j.attempts-1, retry.NewExponential(j.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := j.repo.Append(ctx, r)
		if err != nil && Transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		journalWrites.WithLabelValues("failed").Inc()
		errutil.LogError(j.logger, "failed to write death record", err)
		return
	}
	journalWrites.WithLabelValues("written").Inc()
}
