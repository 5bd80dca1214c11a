// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package watch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cloudzero/drbdmon/app/domain/watch"
	"github.com/cloudzero/drbdmon/app/types"
	"github.com/cloudzero/drbdmon/app/types/mocks"
)

// fakeSleep fires immediately and records every requested sleep.
type fakeSleep struct {
	sleeps []time.Duration
	hook   func(n int)
}

func (f *fakeSleep) after(d time.Duration) <-chan time.Time {
	f.sleeps = append(f.sleeps, d)
	if f.hook != nil {
		f.hook(len(f.sleeps))
	}
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func defaultFilter(t *testing.T) watch.Filter {
	t.Helper()
	f, err := watch.NewFilter("", "", "")
	require.NoError(t, err)
	return f
}

func TestPoller_BoundedCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSnapshotProvider(ctrl)
	provider.EXPECT().Snapshot(gomock.Any()).Return([]types.Resource{connected, syncing}, nil).Times(3)

	var out bytes.Buffer
	sleep := &fakeSleep{}
	p := watch.NewPoller(provider, defaultFilter(t), 5*time.Second, 3, &out, watch.WithAfter(sleep.after))

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, watch.StateDraining, p.State())
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, sleep.sleeps, "no sleep after the last cycle")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, syncing.String(), l)
	}
}

func TestPoller_SingleCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSnapshotProvider(ctrl)
	provider.EXPECT().Snapshot(gomock.Any()).Return([]types.Resource{connected}, nil).Times(1)

	var out bytes.Buffer
	sleep := &fakeSleep{}
	p := watch.NewPoller(provider, defaultFilter(t), time.Second, 1, &out, watch.WithAfter(sleep.after))

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, sleep.sleeps)
	assert.Empty(t, out.String())
}

func TestPoller_CancelledWhileSleeping(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSnapshotProvider(ctrl)
	provider.EXPECT().Snapshot(gomock.Any()).Return([]types.Resource{syncing}, nil).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blocked := make(chan time.Time)
	var sleeps int
	after := func(time.Duration) <-chan time.Time {
		sleeps++
		if sleeps == 1 {
			ch := make(chan time.Time, 1)
			ch <- time.Time{}
			return ch
		}
		cancel()
		return blocked
	}

	var out bytes.Buffer
	p := watch.NewPoller(provider, defaultFilter(t), time.Minute, -1, &out, watch.WithAfter(after))

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, watch.StateCancelled, p.State())
	assert.Equal(t, 2, sleeps)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestPoller_CancelledBeforeStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSnapshotProvider(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := watch.NewPoller(provider, defaultFilter(t), time.Second, 3, &bytes.Buffer{})
	require.NoError(t, p.Run(ctx))
	assert.Equal(t, watch.StateCancelled, p.State())
}

func TestPoller_InFlightCycleIgnoresCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSnapshotProvider(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider.EXPECT().Snapshot(gomock.Any()).DoAndReturn(func(snapCtx context.Context) ([]types.Resource, error) {
		cancel()
		assert.NoError(t, snapCtx.Err(), "snapshot runs on a detached context")
		return []types.Resource{syncing}, nil
	}).Times(1)

	var out bytes.Buffer
	p := watch.NewPoller(provider, defaultFilter(t), time.Second, -1, &out, watch.WithAfter((&fakeSleep{}).after))

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, syncing.String()+"\n", out.String(), "the cycle that started is printed")
	assert.Equal(t, watch.StateCancelled, p.State())
}

func TestPoller_AcquisitionFailureStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSnapshotProvider(ctrl)
	boom := errors.New("drbdadm: not found")
	gomock.InOrder(
		provider.EXPECT().Snapshot(gomock.Any()).Return([]types.Resource{syncing}, nil),
		provider.EXPECT().Snapshot(gomock.Any()).Return(nil, boom),
	)

	sleep := &fakeSleep{}
	p := watch.NewPoller(provider, defaultFilter(t), time.Second, 10, &bytes.Buffer{}, watch.WithAfter(sleep.after))

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sleep.sleeps, 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", watch.StateRunning.String())
	assert.Equal(t, "draining", watch.StateDraining.String())
	assert.Equal(t, "cancelled", watch.StateCancelled.String())
	assert.Equal(t, "State(9)", watch.State(9).String())
}
