// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package snap saves the raw DRBD inputs for offline inspection. The saved
// files can be fed back with --procdrbd and --xmldump.
package snap

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cloudzero/drbdmon/app/domain/drbd"
)

const DefaultDirectory = "/tmp"

// RawSource returns the unparsed kernel status and configuration dump.
type RawSource interface {
	Raw(ctx context.Context) (drbd.Raw, error)
}

// Files are the paths a snapshot is written to.
type Files struct {
	Proc string
	XML  string
}

// PathsFor returns "<dir>/procdrbd.<suffix>" and "<dir>/xmldump.<suffix>".
// Empty arguments fall back to /tmp and the process id.
func PathsFor(dir, suffix string) Files {
	if dir == "" {
		dir = DefaultDirectory
	}
	if suffix == "" {
		suffix = strconv.Itoa(os.Getpid())
	}
	return Files{
		Proc: filepath.Join(dir, "procdrbd."+suffix),
		XML:  filepath.Join(dir, "xmldump."+suffix),
	}
}

// Take reads both sources once and writes them to files.
func Take(ctx context.Context, src RawSource, files Files) error {
	raw, err := src.Raw(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(files.Proc, raw.Proc, 0o644); err != nil { //nolint:gosec // diagnostic output, same as the source
		return errors.Wrap(err, "write kernel status")
	}
	if err := os.WriteFile(files.XML, raw.XML, 0o644); err != nil { //nolint:gosec // diagnostic output
		return errors.Wrap(err, "write configuration dump")
	}
	log.Ctx(ctx).Debug().Str("proc", files.Proc).Str("xml", files.XML).Msg("snapshot saved")
	return nil
}
