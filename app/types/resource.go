// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package types defines the core data structures and interfaces shared by drbdmon.
//
// This package provides:
//
//   - Data models: Resource (one DRBD minor as observed at a point in time),
//     Tier and CheckResult (the health verdict)
//   - Interface contracts: SnapshotProvider, which decouples the classifier,
//     aggregator and poller from how resource state is acquired
//
// Every value in this package is rebuilt from scratch for each snapshot; nothing
// here carries state across polling cycles.
package types

//go:generate mockgen -destination=mocks/snapshot_provider_mock.go -package=mocks . SnapshotProvider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Connection, disk and role values with special meaning to the classifier.
const (
	ConnStateConnected    = "Connected"
	ConnStateUnconfigured = "Unconfigured"
	ConnStateStandAlone   = "StandAlone"
	ConnStateSyncSource   = "SyncSource"
	ConnStateSyncTarget   = "SyncTarget"
	ConnStateVerifyS      = "VerifyS"
	ConnStateVerifyT      = "VerifyT"
	ConnStatePausedSyncS  = "PausedSyncS"
	ConnStatePausedSyncT  = "PausedSyncT"

	DiskStateHealthy = "UpToDate/UpToDate"

	RolePrimarySecondary = "Primary/Secondary"
	RoleSecondaryPrimary = "Secondary/Primary"

	// StateUnknownPair fills ds and ro for minors the kernel does not report on.
	StateUnknownPair = "Unknown/Unknown"
)

// Resource is one DRBD resource (minor) in a snapshot.
type Resource struct {
	// ID is the device minor number. Unique within a snapshot.
	ID int
	// Name is the resource name from the configuration, or "#<ID>" when
	// the resource is running but not configured. Unique within a snapshot.
	Name string

	// ConnectionState (cs), e.g. Connected, SyncSource, StandAlone.
	ConnectionState string
	// DiskState (ds) rendered as "Local/Remote", e.g. UpToDate/UpToDate.
	DiskState string
	// Role (ro) rendered as "Local/Remote", e.g. Primary/Secondary.
	Role string

	// SyncPercent and SyncFinish are set together while a resync or verify
	// is in progress and are nil otherwise.
	SyncPercent *float64
	SyncFinish  *string

	// SyncProgress is the percentage as the kernel printed it, e.g. "42.0".
	SyncProgress string

	// InKernel reports whether the minor is active in the running DRBD module.
	InKernel bool
	// InConfiguration reports whether the resource appears in the static
	// configuration for this host.
	InConfiguration bool
}

// Syncing reports whether sync progress is available.
func (r Resource) Syncing() bool {
	return r.SyncPercent != nil && r.SyncFinish != nil
}

// Percent returns the sync percentage as the kernel printed it, falling back
// to SyncPercent without trailing zeros. It is "" when no progress is
// available.
func (r Resource) Percent() string {
	if r.SyncPercent == nil {
		return ""
	}
	if r.SyncProgress != "" {
		return r.SyncProgress
	}
	return strconv.FormatFloat(*r.SyncPercent, 'f', -1, 64)
}

// Finish returns the sync ETA or "" when none is available.
func (r Resource) Finish() string {
	if r.SyncFinish == nil {
		return ""
	}
	return *r.SyncFinish
}

// String renders every field of the record on one line.
func (r Resource) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %s cs:%s ro:%s ds:%s", r.ID, r.Name, r.ConnectionState, r.Role, r.DiskState)
	if r.Syncing() {
		fmt.Fprintf(&sb, " sync:%s%% finish:%s", r.Percent(), r.Finish())
	}
	fmt.Fprintf(&sb, " in_kernel:%t in_configuration:%t", r.InKernel, r.InConfiguration)
	return sb.String()
}

// SnapshotProvider produces the current state of all known resources.
//
// Each call returns a fresh, independent snapshot ordered by minor number.
// Implementations must not share mutable state between calls.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) ([]Resource, error)
}
