// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package drbd

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// ErrNoVersion is returned when the kernel status has no version line, which
// usually means the drbd module is not loaded.
var ErrNoVersion = errors.New("no DRBD version in kernel status")

var (
	procVersionRe  = regexp.MustCompile(`^version:\s*(\S+)`)
	procMinorRe    = regexp.MustCompile(`^\s*(\d+):\s+cs:(\S+)(?:\s+(?:ro|st):(\S+))?(?:\s+ds:(\S+))?`)
	procProgressRe = regexp.MustCompile(`(?:sync'ed|verified):\s*([0-9.]+)%`)
	procFinishRe   = regexp.MustCompile(`finish:\s*(\S+)`)
)

// ProcMinor is one minor as reported by the kernel.
type ProcMinor struct {
	ID              int
	ConnectionState string
	Role            string
	DiskState       string
	SyncPercent     *float64
	SyncFinish      *string

	// SyncProgress is the raw percentage text.
	SyncProgress string
}

// ProcStatus is the parsed kernel status file.
type ProcStatus struct {
	Version string
	// Minors in file order.
	Minors []ProcMinor
}

// ParseProc parses the contents of /proc/drbd. Both the 8.3 (st:) and the
// 8.4 (ro:) role notations are accepted. Minors without a role or disk
// state, such as unconfigured ones, get Unknown/Unknown.
func ParseProc(raw []byte) (ProcStatus, error) {
	var (
		status   ProcStatus
		current  *ProcMinor
		percent  *float64
		progress string
	)

	flush := func() {
		if current == nil {
			return
		}
		if percent == nil || current.SyncFinish == nil {
			current.SyncPercent, current.SyncFinish = nil, nil
		} else {
			current.SyncPercent, current.SyncProgress = percent, progress
		}
		status.Minors = append(status.Minors, *current)
		current, percent, progress = nil, nil, ""
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()

		if m := procVersionRe.FindStringSubmatch(line); m != nil {
			status.Version = m[1]
			continue
		}

		if m := procMinorRe.FindStringSubmatch(line); m != nil {
			flush()
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return ProcStatus{}, errors.Wrapf(err, "minor %q", m[1])
			}
			current = &ProcMinor{
				ID:              id,
				ConnectionState: m[2],
				Role:            orUnknown(m[3]),
				DiskState:       orUnknown(m[4]),
			}
			continue
		}

		if current == nil {
			continue
		}
		if m := procProgressRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return ProcStatus{}, errors.Wrapf(err, "minor %d progress %q", current.ID, m[1])
			}
			percent, progress = &v, m[1]
		}
		if m := procFinishRe.FindStringSubmatch(line); m != nil {
			finish := m[1]
			current.SyncFinish = &finish
		}
	}
	if err := scanner.Err(); err != nil {
		return ProcStatus{}, errors.Wrap(err, "scan kernel status")
	}
	flush()

	if status.Version == "" {
		return ProcStatus{}, ErrNoVersion
	}
	return status, nil
}

func orUnknown(pair string) string {
	if pair == "" {
		return "Unknown/Unknown"
	}
	return pair
}
