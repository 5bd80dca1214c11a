// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"strings"

	"github.com/cloudzero/drbdmon/app/types"
)

// NominalMessage is reported when no resource produced a diagnostic.
const NominalMessage = "all resources Connected, UpToDate/UpToDate"

// Aggregate classifies every resource in snapshot order and combines the
// verdicts: the tier is the worst tier seen (TierOK when none), the message is
// the non-empty fragments joined by a single space.
func Aggregate(resources []types.Resource) types.CheckResult {
	tier := types.TierOK
	fragments := make([]string, 0, len(resources))

	for _, r := range resources {
		res, ok := Classify(r)
		if !ok {
			continue
		}
		tier = types.MaxTier(tier, res.Tier)
		if res.Message != "" {
			fragments = append(fragments, res.Message)
		}
	}

	if len(fragments) == 0 {
		return types.CheckResult{Tier: tier, Message: NominalMessage}
	}
	return types.CheckResult{Tier: tier, Message: strings.Join(fragments, " ")}
}

// Unknown builds the verdict used when the snapshot itself could not be taken.
func Unknown(err error) types.CheckResult {
	return types.CheckResult{Tier: types.TierUnknown, Message: "snapshot failed: " + err.Error()}
}
