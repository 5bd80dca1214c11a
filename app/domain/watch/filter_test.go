// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package watch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudzero/drbdmon/app/domain/watch"
	"github.com/cloudzero/drbdmon/app/types"
)

var (
	connected = types.Resource{ID: 0, Name: "r0", ConnectionState: "Connected", DiskState: "UpToDate/UpToDate", Role: "Primary/Secondary"}
	syncing   = types.Resource{ID: 1, Name: "r1", ConnectionState: "SyncSource", DiskState: "UpToDate/Inconsistent", Role: "Primary/Secondary"}
	pausedT   = types.Resource{ID: 2, Name: "r2", ConnectionState: "PausedSyncT", DiskState: "Outdated/UpToDate", Role: "Secondary/Primary"}
	inconsist = types.Resource{ID: 3, Name: "r3", ConnectionState: "Connected", DiskState: "Inconsistent/UpToDate", Role: "Secondary/Primary"}
	standAl   = types.Resource{ID: 4, Name: "r4", ConnectionState: "StandAlone", DiskState: "UpToDate/DUnknown", Role: "Primary/Unknown"}
)

func TestFilter(t *testing.T) {
	all := []types.Resource{connected, syncing, pausedT, inconsist, standAl}

	tests := []struct {
		name                     string
		cstate, dstate, resource string
		want                     []string
	}{
		{name: "defaults select resync", want: []string{"r1", "r2", "r3"}},
		{name: "cstate only disables disk default", cstate: "Stand", want: []string{"r4"}},
		{name: "dstate only disables cstate default", dstate: "DUnknown|Outdated", want: []string{"r2", "r4"}},
		{name: "resource only", resource: "r0", want: []string{"r0"}},
		{name: "resource is exact", resource: "r", want: nil},
		{name: "any criterion selects", cstate: "^Connected$", resource: "r4", want: []string{"r0", "r3", "r4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := watch.NewFilter(tt.cstate, tt.dstate, tt.resource)
			require.NoError(t, err)

			var got []string
			for _, r := range all {
				if f.Match(r) {
					got = append(got, r.Name)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := watch.NewFilter("Sync(", "", "")
	assert.Error(t, err)
	_, err = watch.NewFilter("", "[", "")
	assert.Error(t, err)
}
