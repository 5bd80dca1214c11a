// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watch implements the polling loop behind the watch command: take a
// snapshot, print the selected records, sleep, repeat.
package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cloudzero/drbdmon/app/types"
)

// State of a Poller.
type State int

const (
	StateRunning State = iota
	// StateDraining: the cycle budget is spent, the loop ends without sleeping.
	StateDraining
	// StateCancelled: the context was cancelled between cycles or while sleeping.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Poller repeatedly prints the records a Filter selects.
type Poller struct {
	provider types.SnapshotProvider
	filter   Filter
	interval time.Duration
	count    int
	out      io.Writer

	after func(time.Duration) <-chan time.Time
	state State
}

// Option customizes a Poller.
type Option func(*Poller)

// WithAfter replaces time.After for the inter-cycle sleep.
func WithAfter(fn func(time.Duration) <-chan time.Time) Option {
	return func(p *Poller) { p.after = fn }
}

// NewPoller creates a poller. count <= 0 runs until cancelled.
func NewPoller(provider types.SnapshotProvider, filter Filter, interval time.Duration, count int, out io.Writer, opts ...Option) *Poller {
	if count <= 0 {
		count = -1
	}
	p := &Poller{
		provider: provider,
		filter:   filter,
		interval: interval,
		count:    count,
		out:      out,
		after:    time.After,
		state:    StateRunning,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current state.
func (p *Poller) State() State {
	return p.state
}

// Run polls until the count is exhausted, ctx is cancelled, or a cycle
// fails. Cancellation returns nil. A cycle that has started runs to
// completion even if ctx is cancelled meanwhile.
func (p *Poller) Run(ctx context.Context) error {
	logger := log.Ctx(ctx)
	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			p.state = StateCancelled
			return nil
		}

		if err := p.cycle(context.WithoutCancel(ctx)); err != nil {
			return err
		}

		if p.count > 0 {
			p.count--
			if p.count == 0 {
				p.state = StateDraining
				logger.Debug().Int("cycles", cycle).Msg("watch finished")
				return nil
			}
		}

		select {
		case <-ctx.Done():
			p.state = StateCancelled
			logger.Debug().Int("cycles", cycle).Msg("watch cancelled")
			return nil
		case <-p.after(p.interval):
		}
	}
}

func (p *Poller) cycle(ctx context.Context) error {
	resources, err := p.provider.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if !p.filter.Match(r) {
			continue
		}
		if _, err := fmt.Fprintln(p.out, r.String()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}
