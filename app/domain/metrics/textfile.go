// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports check results in the Prometheus text format, for
// node_exporter's textfile collector.
package metrics

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cloudzero/drbdmon/app/domain/health"
	"github.com/cloudzero/drbdmon/app/types"
)

const namespace = "drbdmon"

// Exporter holds a private registry so that each export only contains the
// current check.
type Exporter struct {
	registry *prometheus.Registry

	checkStatus    prometheus.Gauge
	checkTimestamp prometheus.Gauge
	resourceStatus *prometheus.GaugeVec
	syncPercent    *prometheus.GaugeVec
}

// NewExporter registers the drbdmon gauges on a fresh registry.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		registry: reg,
		checkStatus: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_status",
			Help:      "Status code of the last check (0 ok, 1 warning, 2 critical, 3 unknown).",
		}),
		checkTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_timestamp_seconds",
			Help:      "Unix time of the last check.",
		}),
		resourceStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_status",
			Help:      "Status code of each classified resource.",
		}, []string{"minor", "name"}),
		syncPercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_sync_percent",
			Help:      "Resync or verify progress of resources that report it.",
		}, []string{"minor", "name"}),
	}
}

// Record replaces the exported values with one check.
func (e *Exporter) Record(resources []types.Resource, result types.CheckResult, at time.Time) {
	e.resourceStatus.Reset()
	e.syncPercent.Reset()

	e.checkStatus.Set(float64(result.Tier.StatusCode()))
	e.checkTimestamp.Set(float64(at.Unix()))

	for _, r := range resources {
		verdict, ok := health.Classify(r)
		if !ok {
			continue
		}
		minor := strconv.Itoa(r.ID)
		e.resourceStatus.WithLabelValues(minor, r.Name).Set(float64(verdict.Tier.StatusCode()))
		if r.Syncing() {
			e.syncPercent.WithLabelValues(minor, r.Name).Set(*r.SyncPercent)
		}
	}
}

// WriteTextfile writes the registry to path atomically.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}

// Gatherer exposes the registry.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}
