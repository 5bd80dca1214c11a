// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudzero/drbdmon/app/types"
)

func TestTier_StatusCode(t *testing.T) {
	tcases := []struct {
		tier  types.Tier
		code  int
		label string
	}{
		{types.TierOK, 0, "OK"},
		{types.TierWarning, 1, "WARNING"},
		{types.TierCritical, 2, "CRITICAL"},
		{types.TierUnknown, 3, "UNKNOWN"},
		{types.Tier(42), 3, "UNKNOWN"},
	}
	for _, tc := range tcases {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.tier.StatusCode())
			assert.Equal(t, tc.label, tc.tier.Label())
		})
	}
}

func TestMaxTier(t *testing.T) {
	assert.Equal(t, types.TierOK, types.MaxTier())
	assert.Equal(t, types.TierWarning, types.MaxTier(types.TierOK, types.TierWarning, types.TierOK))
	assert.Equal(t, types.TierCritical, types.MaxTier(types.TierCritical, types.TierWarning))
	assert.Equal(t, types.TierUnknown, types.MaxTier(types.TierCritical, types.TierUnknown, types.TierOK))
}

func TestCheckResult_String(t *testing.T) {
	r := types.CheckResult{Tier: types.TierWarning, Message: "0:cs:SyncSource[42%,0:01:10];ds:UpToDate/Inconsistent;"}
	assert.Equal(t, "WARNING:0:cs:SyncSource[42%,0:01:10];ds:UpToDate/Inconsistent;", r.String())
}

func TestResource_String(t *testing.T) {
	pct := 10.5
	finish := "0:02:00"
	r := types.Resource{
		ID:              1,
		Name:            "r1",
		ConnectionState: "SyncTarget",
		DiskState:       "Inconsistent/UpToDate",
		Role:            "Secondary/Primary",
		SyncPercent:     &pct,
		SyncFinish:      &finish,
		InKernel:        true,
		InConfiguration: true,
	}
	assert.Equal(t,
		"1 r1 cs:SyncTarget ro:Secondary/Primary ds:Inconsistent/UpToDate sync:10.5% finish:0:02:00 in_kernel:true in_configuration:true",
		r.String())

	r.SyncPercent, r.SyncFinish = nil, nil
	assert.Equal(t,
		"1 r1 cs:SyncTarget ro:Secondary/Primary ds:Inconsistent/UpToDate in_kernel:true in_configuration:true",
		r.String())
}

func TestResource_Percent(t *testing.T) {
	pct := 42.0
	tests := []struct {
		name     string
		percent  *float64
		progress string
		want     string
	}{
		{name: "kernel text is kept", percent: &pct, progress: "42.0", want: "42.0"},
		{name: "falls back to the number", percent: &pct, want: "42"},
		{name: "no progress", progress: "42.0", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := types.Resource{SyncPercent: tt.percent, SyncProgress: tt.progress}
			assert.Equal(t, tt.want, r.Percent())
		})
	}
}
