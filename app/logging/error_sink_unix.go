// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

//go:build !windows && !plan9

package logging

import "log/syslog"

// NewSyslogSink returns a sink that logs to the local syslog daemon under tag.
func NewSyslogSink(tag string) *SyslogSink {
	return &SyslogSink{
		tag: tag,
		open: func(tag string) (SyslogWriter, error) {
			return syslog.New(syslog.LOG_ERR|syslog.LOG_DAEMON, tag)
		},
	}
}
