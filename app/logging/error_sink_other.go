// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

//go:build windows || plan9

package logging

import "errors"

// NewSyslogSink returns a sink that never delivers: syslog is unavailable here.
func NewSyslogSink(tag string) *SyslogSink {
	return &SyslogSink{
		tag: tag,
		open: func(string) (SyslogWriter, error) {
			return nil, errors.New("syslog is not supported on this platform")
		},
	}
}
