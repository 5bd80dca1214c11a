// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package health turns DRBD resource state into health verdicts.
//
// Classify maps one resource to a tier and a diagnostic fragment. Aggregate
// folds a whole snapshot into a single verdict with worst-tier-wins semantics.
// Both are pure functions: no I/O, no state, no errors.
//
// Tiering rules:
//   - a resource that is not configured in the kernel (cs=Unconfigured) yields no verdict
//   - a resource that is Connected, UpToDate/UpToDate, loaded and configured is nominal
//   - resyncing, verifying and StandAlone resources are transitional and report warning
//   - resources running without a configuration entry report warning
//   - any other mismatch (including unrecognised connection states) is critical
package health

import (
	"fmt"

	"github.com/cloudzero/drbdmon/app/types"
)

// transitionalStates are connection states expected to resolve on their own.
var transitionalStates = map[string]struct{}{
	types.ConnStateSyncSource:  {},
	types.ConnStateSyncTarget:  {},
	types.ConnStateVerifyS:     {},
	types.ConnStateVerifyT:     {},
	types.ConnStatePausedSyncS: {},
	types.ConnStatePausedSyncT: {},
	types.ConnStateStandAlone:  {},
}

// Classify returns the verdict for a single resource. The second return value
// is false when the resource contributes nothing (cs=Unconfigured). A nominal
// resource yields TierOK with an empty message.
func Classify(r types.Resource) (types.CheckResult, bool) {
	if r.ConnectionState == types.ConnStateUnconfigured {
		return types.CheckResult{}, false
	}

	present := r.InKernel && r.InConfiguration
	connected := r.ConnectionState == types.ConnStateConnected
	healthy := r.DiskState == types.DiskStateHealthy
	roleOK := r.Role == types.RolePrimarySecondary || r.Role == types.RoleSecondaryPrimary

	var csFrag, dsFrag, roFrag string
	if !(connected && present) {
		csFrag = "cs:" + r.ConnectionState
	}
	if !(healthy && present) {
		dsFrag = "ds:" + r.DiskState
	}
	if !(roleOK && present) {
		roFrag = "ro:" + r.Role
	}

	// a role mismatch alone is not reported
	if csFrag == "" && dsFrag == "" {
		return types.CheckResult{Tier: types.TierOK}, true
	}

	if _, ok := transitionalStates[r.ConnectionState]; ok {
		msg := fmt.Sprintf("%d:%s;%s;%s", r.ID, csFrag, dsFrag, roFrag)
		if r.SyncPercent != nil {
			msg = fmt.Sprintf("%d:%s[%s%%,%s];%s;%s", r.ID, csFrag, r.Percent(), r.Finish(), dsFrag, roFrag)
		}
		return types.CheckResult{Tier: types.TierWarning, Message: msg}, true
	}

	if !r.InConfiguration {
		return types.CheckResult{
			Tier:    types.TierWarning,
			Message: fmt.Sprintf("%d[unconfigured]>%s/;%s;%s", r.ID, csFrag, dsFrag, roFrag),
		}, true
	}

	return types.CheckResult{
		Tier:    types.TierCritical,
		Message: fmt.Sprintf("%d>%s;%s;%s", r.ID, csFrag, dsFrag, roFrag),
	}, true
}
