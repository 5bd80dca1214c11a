// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package drbd

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var devicePathRe = regexp.MustCompile(`drbd(\d+)$`)

type xmlConfig struct {
	Resources []xmlResource `xml:"resource"`
}

type xmlResource struct {
	Name  string    `xml:"name,attr"`
	Hosts []xmlHost `xml:"host"`
}

type xmlHost struct {
	Name    string      `xml:"name,attr"`
	Device  *xmlDevice  `xml:"device"`
	Volumes []xmlVolume `xml:"volume"`
}

type xmlVolume struct {
	Number string     `xml:"vnr,attr"`
	Device *xmlDevice `xml:"device"`
}

type xmlDevice struct {
	Minor string `xml:"minor,attr"`
	Path  string `xml:",chardata"`
}

func (d *xmlDevice) minor() (int, error) {
	if d.Minor != "" {
		return strconv.Atoi(strings.TrimSpace(d.Minor))
	}
	m := devicePathRe.FindStringSubmatch(strings.TrimSpace(d.Path))
	if m == nil {
		return 0, fmt.Errorf("device %q has no minor", d.Path)
	}
	return strconv.Atoi(m[1])
}

// ConfiguredMinor is a minor the configuration assigns to this host.
type ConfiguredMinor struct {
	ID   int
	Name string
}

// ParseConfig reads the output of `drbdadm dump-xml` and returns the minors
// configured for hostname, ordered by minor. Hosts match on the full name or
// on its first label. Resources with several volumes name each minor
// "<resource>/<volume>".
func ParseConfig(raw []byte, hostname string) ([]ConfiguredMinor, error) {
	var cfg xmlConfig
	if err := xml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode configuration dump")
	}

	var minors []ConfiguredMinor
	seen := map[int]string{}
	add := func(dev *xmlDevice, name string) error {
		id, err := dev.minor()
		if err != nil {
			return errors.Wrapf(err, "resource %s", name)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("minor %d assigned to both %s and %s", id, prev, name)
		}
		seen[id] = name
		minors = append(minors, ConfiguredMinor{ID: id, Name: name})
		return nil
	}

	for _, res := range cfg.Resources {
		for _, host := range res.Hosts {
			if !hostMatches(host.Name, hostname) {
				continue
			}
			if host.Device != nil {
				if err := add(host.Device, res.Name); err != nil {
					return nil, err
				}
			}
			for _, vol := range host.Volumes {
				if vol.Device == nil {
					continue
				}
				name := res.Name
				if len(host.Volumes) > 1 {
					name = res.Name + "/" + vol.Number
				}
				if err := add(vol.Device, name); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.Slice(minors, func(i, j int) bool { return minors[i].ID < minors[j].ID })
	return minors, nil
}

func hostMatches(configured, hostname string) bool {
	if configured == "" || hostname == "" {
		return false
	}
	if strings.EqualFold(configured, hostname) {
		return true
	}
	short, _, _ := strings.Cut(hostname, ".")
	return strings.EqualFold(configured, short)
}
