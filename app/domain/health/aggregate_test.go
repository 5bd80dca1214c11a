// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package health_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/cloudzero/drbdmon/app/domain/health"
	"github.com/cloudzero/drbdmon/app/types"
)

func syncing(id int) types.Resource {
	r := nominal(id)
	r.ConnectionState = "SyncSource"
	r.DiskState = "UpToDate/Inconsistent"
	r.SyncPercent = ptr(42.0)
	r.SyncFinish = ptr("0:03:00")
	return r
}

func faulty(id int) types.Resource {
	r := nominal(id)
	r.DiskState = "Inconsistent/UpToDate"
	return r
}

func unconfigured(id int) types.Resource {
	return types.Resource{
		ID:              id,
		Name:            "gone",
		ConnectionState: "Unconfigured",
		DiskState:       "Unknown/Unknown",
		Role:            "Unknown/Unknown",
		InConfiguration: true,
	}
}

func TestAggregate(t *testing.T) {
	tcases := []struct {
		name      string
		resources []types.Resource
		want      types.CheckResult
	}{
		{
			name: "empty snapshot",
			want: types.CheckResult{Tier: types.TierOK, Message: health.NominalMessage},
		},
		{
			name:      "all nominal",
			resources: []types.Resource{nominal(0), nominal(1)},
			want:      types.CheckResult{Tier: types.TierOK, Message: "all resources Connected, UpToDate/UpToDate"},
		},
		{
			name:      "unconfigured contributes nothing",
			resources: []types.Resource{nominal(0), unconfigured(1)},
			want:      types.CheckResult{Tier: types.TierOK, Message: health.NominalMessage},
		},
		{
			name:      "warning only",
			resources: []types.Resource{nominal(0), syncing(1)},
			want: types.CheckResult{
				Tier:    types.TierWarning,
				Message: "1:cs:SyncSource[42%,0:03:00];ds:UpToDate/Inconsistent;",
			},
		},
		{
			name:      "critical beats warning, fragments keep snapshot order",
			resources: []types.Resource{faulty(0), nominal(1), syncing(2), unconfigured(3)},
			want: types.CheckResult{
				Tier:    types.TierCritical,
				Message: "0>;ds:Inconsistent/UpToDate; 2:cs:SyncSource[42%,0:03:00];ds:UpToDate/Inconsistent;",
			},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := health.Aggregate(tc.resources)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Aggregate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregate_WorstWins(t *testing.T) {
	pool := []types.Resource{nominal(0), syncing(1), faulty(2), unconfigured(3)}

	// every subset of the pool
	for mask := 0; mask < 1<<len(pool); mask++ {
		var subset []types.Resource
		want := types.TierOK
		for i, r := range pool {
			if mask&(1<<i) == 0 {
				continue
			}
			subset = append(subset, r)
			if res, ok := health.Classify(r); ok {
				want = types.MaxTier(want, res.Tier)
			}
		}
		assert.Equal(t, want, health.Aggregate(subset).Tier, "mask %04b", mask)
	}
}

func TestUnknown(t *testing.T) {
	got := health.Unknown(errors.New("open /proc/drbd: no such file or directory"))
	assert.Equal(t, types.TierUnknown, got.Tier)
	assert.Equal(t, "UNKNOWN:snapshot failed: open /proc/drbd: no such file or directory", got.String())
}
