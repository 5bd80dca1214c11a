// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"fmt"
	"regexp"

	"github.com/cloudzero/drbdmon/app/types"
)

// Patterns used when no filter is given: resources that are resyncing.
const (
	DefaultCStatePattern = "Sync"
	DefaultDStatePattern = "Inconsistent"
)

// Filter selects records by connection state pattern, disk state pattern or
// exact name. A nil pattern or an empty name never matches.
type Filter struct {
	cstate   *regexp.Regexp
	dstate   *regexp.Regexp
	resource string
}

// NewFilter compiles the patterns (partial, unanchored matches). With all
// three arguments empty the resync defaults apply; otherwise unset criteria
// match nothing.
func NewFilter(cstate, dstate, resource string) (Filter, error) {
	if cstate == "" && dstate == "" && resource == "" {
		cstate, dstate = DefaultCStatePattern, DefaultDStatePattern
	}

	f := Filter{resource: resource}
	var err error
	if cstate != "" {
		if f.cstate, err = regexp.Compile(cstate); err != nil {
			return Filter{}, fmt.Errorf("cstate pattern %q: %w", cstate, err)
		}
	}
	if dstate != "" {
		if f.dstate, err = regexp.Compile(dstate); err != nil {
			return Filter{}, fmt.Errorf("dstate pattern %q: %w", dstate, err)
		}
	}
	return f, nil
}

// Match reports whether r is selected.
func (f Filter) Match(r types.Resource) bool {
	switch {
	case f.cstate != nil && f.cstate.MatchString(r.ConnectionState):
		return true
	case f.dstate != nil && f.dstate.MatchString(r.DiskState):
		return true
	case f.resource != "" && r.Name == f.resource:
		return true
	}
	return false
}
