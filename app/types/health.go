// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import "strings"

// Tier is a health verdict. Tiers are totally ordered for worst-wins
// aggregation: TierOK < TierWarning < TierCritical < TierUnknown.
type Tier int

const (
	TierOK Tier = iota
	TierWarning
	TierCritical
	TierUnknown
)

var tierNames = map[Tier]string{
	TierOK:       "ok",
	TierWarning:  "warning",
	TierCritical: "critical",
	TierUnknown:  "unknown",
}

// tierStatusCodes maps a tier to the Nagios plugin return code. The same
// code is the process exit status in active mode and the return code field
// of a passive submission.
var tierStatusCodes = map[Tier]int{
	TierOK:       0,
	TierWarning:  1,
	TierCritical: 2,
	TierUnknown:  3,
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return tierNames[TierUnknown]
}

// Label is the upper-case form used in plugin output, e.g. "CRITICAL".
func (t Tier) Label() string {
	return strings.ToUpper(t.String())
}

// StatusCode returns the Nagios return code for the tier. Out-of-range tiers
// map to the unknown code.
func (t Tier) StatusCode() int {
	if code, ok := tierStatusCodes[t]; ok {
		return code
	}
	return tierStatusCodes[TierUnknown]
}

// Worse reports whether t ranks above other.
func (t Tier) Worse(other Tier) bool {
	return t > other
}

// MaxTier returns the worst of the given tiers, or TierOK when none are given.
func MaxTier(tiers ...Tier) Tier {
	worst := TierOK
	for _, t := range tiers {
		if t.Worse(worst) {
			worst = t
		}
	}
	return worst
}

// CheckResult is a tier plus diagnostic text. It is a value type; copies are
// independent.
type CheckResult struct {
	Tier    Tier
	Message string
}

// String renders the result as plugin output: "<TIER>:<message>".
func (c CheckResult) String() string {
	return c.Tier.Label() + ":" + c.Message
}
