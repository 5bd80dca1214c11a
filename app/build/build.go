// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package build exposes version metadata stamped in at link time.
package build

import "fmt"

const (
	AuthorName  = "CloudZero, Inc."
	AuthorEmail = "support@cloudzero.com"
	Copyright   = "© 2016-2025 CloudZero, Inc."
)

// These are set with -ldflags "-X github.com/cloudzero/drbdmon/app/build.Rev=..."
var (
	Rev  = "unknown"
	Tag  = "dev"
	Time = "unknown"
)

// GetVersion returns the release tag.
func GetVersion() string {
	return Tag
}

// Version returns the full version string including revision and build time.
func Version() string {
	return fmt.Sprintf("%s (rev %s, built %s)", Tag, Rev, Time)
}
