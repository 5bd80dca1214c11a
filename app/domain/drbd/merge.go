// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package drbd

import (
	"sort"
	"strconv"

	"github.com/cloudzero/drbdmon/app/types"
)

// Merge joins the kernel view and the configuration view into one record per
// minor, ordered by minor.
func Merge(proc ProcStatus, configured []ConfiguredMinor) []types.Resource {
	byID := map[int]*types.Resource{}
	var order []int

	get := func(id int) *types.Resource {
		if r, ok := byID[id]; ok {
			return r
		}
		r := &types.Resource{
			ID:              id,
			Name:            unconfiguredName(id),
			ConnectionState: types.ConnStateUnconfigured,
			DiskState:       types.StateUnknownPair,
			Role:            types.StateUnknownPair,
		}
		byID[id] = r
		order = append(order, id)
		return r
	}

	for _, m := range proc.Minors {
		r := get(m.ID)
		r.ConnectionState = m.ConnectionState
		r.DiskState = m.DiskState
		r.Role = m.Role
		r.SyncPercent = m.SyncPercent
		r.SyncFinish = m.SyncFinish
		r.SyncProgress = m.SyncProgress
		r.InKernel = m.ConnectionState != types.ConnStateUnconfigured
	}

	for _, c := range configured {
		r := get(c.ID)
		r.Name = c.Name
		r.InConfiguration = true
	}

	sort.Ints(order)
	out := make([]types.Resource, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// unconfiguredName names a minor that only the kernel knows. '#' starts a
// comment in drbd.conf, so no configured resource can carry this name.
func unconfiguredName(id int) string {
	return "#" + strconv.Itoa(id)
}
