// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

// NewSyslogSinkWithOpener lets tests replace the syslog connection.
func NewSyslogSinkWithOpener(tag string, open func(tag string) (SyslogWriter, error)) *SyslogSink {
	return &SyslogSink{tag: tag, open: open}
}
