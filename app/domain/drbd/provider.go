// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package drbd acquires DRBD resource state.
//
// The running state comes from the kernel status file (/proc/drbd) and the
// intended state from `drbdadm dump-xml`. Every Snapshot call reads both
// sources again and merges them by minor number.
package drbd

//go:generate mockgen -destination=mocks/runner_mock.go -package=mocks . Runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/types"
)

// Runner runs an external command and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "%s %s: %s", name, strings.Join(args, " "), msg)
		}
		return nil, errors.Wrapf(err, "%s %s", name, strings.Join(args, " "))
	}
	return out, nil
}

// Raw holds the unparsed inputs of one snapshot.
type Raw struct {
	Proc []byte
	XML  []byte
}

// Provider implements types.SnapshotProvider on top of a local DRBD install.
type Provider struct {
	procPath string
	drbdadm  string
	xmlDump  string
	hostname string

	runner   Runner
	readFile func(string) ([]byte, error)
}

var _ types.SnapshotProvider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(p *Provider) { p.runner = r }
}

// WithReadFile replaces the file reader.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(p *Provider) { p.readFile = fn }
}

// NewProvider creates a provider from validated DRBD settings.
func NewProvider(cfg config.DRBD, opts ...Option) *Provider {
	p := &Provider{
		procPath: cfg.ProcDRBD,
		drbdadm:  cfg.Drbdadm,
		xmlDump:  cfg.XMLDump,
		hostname: cfg.Hostname,
		runner:   ExecRunner{},
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Raw reads both sources without parsing them.
func (p *Provider) Raw(ctx context.Context) (Raw, error) {
	proc, err := p.readFile(p.procPath)
	if err != nil {
		return Raw{}, errors.Wrapf(err, "read %s", p.procPath)
	}

	var dump []byte
	if p.xmlDump != "" {
		dump, err = p.readFile(p.xmlDump)
		if err != nil {
			return Raw{}, errors.Wrapf(err, "read %s", p.xmlDump)
		}
	} else {
		dump, err = p.runner.Output(ctx, p.drbdadm, "dump-xml")
		if err != nil {
			return Raw{}, errors.Wrap(err, "dump configuration")
		}
	}

	return Raw{Proc: proc, XML: dump}, nil
}

// Snapshot returns the merged state of every known minor.
func (p *Provider) Snapshot(ctx context.Context) ([]types.Resource, error) {
	raw, err := p.Raw(ctx)
	if err != nil {
		return nil, err
	}

	proc, err := ParseProc(raw.Proc)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", p.procPath)
	}
	configured, err := ParseConfig(raw.XML, p.hostname)
	if err != nil {
		return nil, err
	}

	resources := Merge(proc, configured)
	log.Ctx(ctx).Debug().
		Str("version", proc.Version).
		Int("running", len(proc.Minors)).
		Int("configured", len(configured)).
		Int("resources", len(resources)).
		Msg("snapshot acquired")
	return resources, nil
}

// Version returns the DRBD version reported by the kernel.
func (p *Provider) Version(_ context.Context) (string, error) {
	raw, err := p.readFile(p.procPath)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", p.procPath)
	}
	proc, err := ParseProc(raw)
	if err != nil {
		return "", errors.Wrapf(err, "parse %s", p.procPath)
	}
	return proc.Version, nil
}
