// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/report"
	"github.com/cloudzero/drbdmon/app/domain/report/mocks"
	"github.com/cloudzero/drbdmon/app/types"
)

func TestReport_Active(t *testing.T) {
	tests := []struct {
		name     string
		result   types.CheckResult
		wantLine string
		wantCode int
	}{
		{"ok", types.CheckResult{Tier: types.TierOK, Message: "all resources Connected, UpToDate/UpToDate"}, "OK:all resources Connected, UpToDate/UpToDate", 0},
		{"warning", types.CheckResult{Tier: types.TierWarning, Message: "1:cs:SyncTarget;;"}, "WARNING:1:cs:SyncTarget;;", 1},
		{"critical", types.CheckResult{Tier: types.TierCritical, Message: "0>cs:StandAlone;;"}, "CRITICAL:0>cs:StandAlone;;", 2},
		{"unknown", types.CheckResult{Tier: types.TierUnknown, Message: "snapshot failed: boom"}, "UNKNOWN:snapshot failed: boom", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ctrl := gomock.NewController(t)
			sub := mocks.NewMockSubmitter(ctrl)

			outcome, err := report.NewReporter(&out, sub).Report(context.Background(), tt.result, report.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLine+"\n", out.String())
			assert.Equal(t, tt.wantCode, outcome.ExitCode)
			assert.False(t, outcome.Passive)
		})
	}
}

func TestReport_PassiveSubmits(t *testing.T) {
	var out bytes.Buffer
	ctrl := gomock.NewController(t)
	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().Submit(gomock.Any(), report.Submission{
		Host:    "alpha",
		Service: "drbd",
		Status:  2,
		Output:  "CRITICAL:0>cs:StandAlone;;",
	}).Return(nil)

	outcome, err := report.NewReporter(&out, sub).Report(context.Background(),
		types.CheckResult{Tier: types.TierCritical, Message: "0>cs:StandAlone;;"},
		report.Options{Passive: true, Host: "alpha", Service: "drbd"})
	require.NoError(t, err)
	assert.True(t, outcome.Passive)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Empty(t, out.String(), "passive mode prints nothing")
}

func TestReport_PassiveFailureIsFinal(t *testing.T) {
	var out bytes.Buffer
	ctrl := gomock.NewController(t)
	sub := mocks.NewMockSubmitter(ctrl)
	boom := errors.New("connection refused")
	sub.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(boom).Times(1)

	outcome, err := report.NewReporter(&out, sub).Report(context.Background(),
		types.CheckResult{Tier: types.TierOK},
		report.Options{Passive: true, Host: "alpha", Service: "drbd"})
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrDelivery)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Empty(t, out.String(), "no fallback to active output")
}

func TestReport_PassiveMissingOptions(t *testing.T) {
	tcases := map[string]report.Options{
		"no host":    {Passive: true, Service: "drbd"},
		"no service": {Passive: true, Host: "alpha"},
	}
	for name, opts := range tcases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sub := mocks.NewMockSubmitter(ctrl)

			_, err := report.NewReporter(&bytes.Buffer{}, sub).Report(context.Background(), types.CheckResult{}, opts)
			assert.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}

func TestReport_PassiveWithoutSubmitter(t *testing.T) {
	_, err := report.NewReporter(&bytes.Buffer{}, nil).Report(context.Background(), types.CheckResult{},
		report.Options{Passive: true, Host: "alpha", Service: "drbd"})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}
