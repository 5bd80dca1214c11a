// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report delivers a check result to the monitoring system.
//
// In active mode the result is printed as a single "<TIER>:<message>" line and
// the caller exits with the tier's status code. In passive mode the result is
// submitted once to a remote collector through a Submitter. A failed
// submission is final: it is neither retried nor printed instead.
package report

//go:generate mockgen -destination=mocks/submitter_mock.go -package=mocks . Submitter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/types"
)

// ErrDelivery marks a failed passive submission.
var ErrDelivery = errors.New("delivery failure")

// Submission is one passive check result as sent to a collector.
type Submission struct {
	Host    string
	Service string
	Status  int
	Output  string
}

// Submitter sends a passive check result to a collector.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// Options select the delivery mode for one report.
type Options struct {
	Passive bool
	// Host and Service identify the check at the collector. Both are
	// required in passive mode.
	Host    string
	Service string
}

// Outcome describes what Report did.
type Outcome struct {
	Passive bool
	// ExitCode is the process status the caller should exit with.
	ExitCode int
	// Line is the rendered result.
	Line string
}

// Reporter dispatches results to standard output or to a Submitter.
type Reporter struct {
	out       io.Writer
	submitter Submitter
}

// NewReporter creates a reporter. submitter may be nil when only active
// reports are made.
func NewReporter(out io.Writer, submitter Submitter) *Reporter {
	return &Reporter{out: out, submitter: submitter}
}

// Report delivers result according to opts.
func (r *Reporter) Report(ctx context.Context, result types.CheckResult, opts Options) (Outcome, error) {
	line := result.String()
	if !opts.Passive {
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return Outcome{}, fmt.Errorf("write result: %w", err)
		}
		return Outcome{ExitCode: result.Tier.StatusCode(), Line: line}, nil
	}

	if opts.Host == "" || opts.Service == "" {
		return Outcome{Passive: true}, fmt.Errorf("%w: passive report requires host and service", config.ErrConfiguration)
	}
	if r.submitter == nil {
		return Outcome{Passive: true}, fmt.Errorf("%w: no passive channel configured", config.ErrConfiguration)
	}

	sub := Submission{
		Host:    opts.Host,
		Service: opts.Service,
		Status:  result.Tier.StatusCode(),
		Output:  line,
	}
	if err := r.submitter.Submit(ctx, sub); err != nil {
		return Outcome{Passive: true, ExitCode: 1, Line: line}, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	log.Ctx(ctx).Debug().
		Str("host", sub.Host).
		Str("service", sub.Service).
		Int("status", sub.Status).
		Msg("passive result submitted")
	return Outcome{Passive: true, Line: line}, nil
}
