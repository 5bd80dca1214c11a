// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nrdp

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ZerologRetryableHTTPAdapter adapts zerolog.Logger to retryablehttp.LeveledLogger.
type ZerologRetryableHTTPAdapter struct {
	logger *zerolog.Logger
}

// NewZerologRetryableHTTPAdapter creates a new adapter. A nil logger falls
// back to the global one.
func NewZerologRetryableHTTPAdapter(logger *zerolog.Logger) *ZerologRetryableHTTPAdapter {
	if logger == nil {
		l := log.Logger
		logger = &l
	}
	return &ZerologRetryableHTTPAdapter{logger: logger}
}

func (a *ZerologRetryableHTTPAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error().Fields(kvsToMap(keysAndValues...)).Msg(msg)
}

func (a *ZerologRetryableHTTPAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info().Fields(kvsToMap(keysAndValues...)).Msg(msg)
}

// Debug is logged at trace: retryablehttp logs every request at debug.
func (a *ZerologRetryableHTTPAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.logger.Trace().Fields(kvsToMap(keysAndValues...)).Msg(msg)
}

func (a *ZerologRetryableHTTPAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn().Fields(kvsToMap(keysAndValues...)).Msg(msg)
}

func kvsToMap(keysAndValues ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			m[key] = keysAndValues[i+1]
		}
	}
	return m
}

var _ retryablehttp.LeveledLogger = (*ZerologRetryableHTTPAdapter)(nil)
