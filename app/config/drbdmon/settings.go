// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads drbdmon settings.
//
// Settings come from an optional YAML file and from DRBDMON_* environment
// variables (which win over the file). Command line flags are applied on top
// by the caller before Validate is run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ModeActive  = "active"
	ModePassive = "passive"

	ChannelNSCA = "nsca"
	ChannelNRDP = "nrdp"

	DefaultDrbdadm       = "drbdadm"
	DefaultProcDRBD      = "/proc/drbd"
	DefaultNSCAPort      = 5667
	DefaultTimeout       = 10 * time.Second
	DefaultWatchInterval = 60 * time.Second
	DefaultEncryption    = 1

	// UnboundedCount makes the watch loop run until interrupted.
	UnboundedCount = -1
)

// ErrConfiguration marks invalid or missing settings. Commands fail with it
// before touching DRBD or the network.
var ErrConfiguration = errors.New("configuration error")

// Settings is the full drbdmon configuration.
type Settings struct {
	Logging Logging `yaml:"logging"`
	DRBD    DRBD    `yaml:"drbd"`
	Monitor Monitor `yaml:"monitor"`
	Metrics Metrics `yaml:"metrics"`
	Watch   Watch   `yaml:"watch"`
}

type Logging struct {
	Level  string `yaml:"level" env:"DRBDMON_LOG_LEVEL" env-default:"info" env-description:"logging level such as debug, info, error"`
	Syslog bool   `yaml:"syslog" env:"DRBDMON_SYSLOG" env-description:"also send fatal errors to syslog (default true)"`
	Debug  bool   `yaml:"debug" env:"DRBDMON_DEBUG" env-default:"false" env-description:"debug mode: verbose logging, no syslog"`
}

type DRBD struct {
	Drbdadm  string `yaml:"drbdadm" env:"DRBDMON_DRBDADM" env-default:"drbdadm" env-description:"drbdadm binary used for dump-xml"`
	ProcDRBD string `yaml:"procdrbd" env:"DRBDMON_PROCDRBD" env-default:"/proc/drbd" env-description:"path of the kernel status file"`
	XMLDump  string `yaml:"xmldump" env:"DRBDMON_XMLDUMP" env-description:"read the configuration dump from this file instead of running drbdadm"`
	Hostname string `yaml:"hostname" env:"DRBDMON_HOSTNAME" env-description:"local node name as written in the DRBD configuration"`
}

type Monitor struct {
	Mode        string        `yaml:"mode" env:"DRBDMON_MODE" env-default:"active" env-description:"active (print and exit) or passive (submit to a collector)"`
	Channel     string        `yaml:"channel" env:"DRBDMON_CHANNEL" env-default:"nsca" env-description:"passive channel: nsca or nrdp"`
	Host        string        `yaml:"host" env:"DRBDMON_NSCA_HOST" env-description:"NSCA collector host"`
	Port        int           `yaml:"port" env:"DRBDMON_NSCA_PORT" env-default:"5667" env-description:"NSCA collector port"`
	Service     string        `yaml:"service" env:"DRBDMON_SERVICE" env-description:"service description reported to the collector"`
	ServiceHost string        `yaml:"service_host" env:"DRBDMON_SERVICE_HOST" env-description:"host name reported to the collector, defaults to the DRBD hostname"`
	Timeout     time.Duration `yaml:"timeout" env:"DRBDMON_TIMEOUT" env-default:"10s" env-description:"timeout for one passive submission"`
	Password    string        `yaml:"password" env:"DRBDMON_NSCA_PASSWORD" env-description:"NSCA shared password"`
	Encryption  int           `yaml:"encryption" env:"DRBDMON_NSCA_ENCRYPTION" env-description:"NSCA encryption method: 0 none, 1 xor (default 1)"`
	NRDPURL     string        `yaml:"nrdp_url" env:"DRBDMON_NRDP_URL" env-description:"NRDP endpoint URL"`
	NRDPToken   string        `yaml:"nrdp_token" env:"DRBDMON_NRDP_TOKEN" env-description:"NRDP submission token"`
}

type Metrics struct {
	Textfile string `yaml:"textfile" env:"DRBDMON_METRICS_TEXTFILE" env-description:"write check results in Prometheus text format to this file"`
}

type Watch struct {
	Interval time.Duration `yaml:"interval" env:"DRBDMON_WATCH_INTERVAL" env-default:"60s" env-description:"pause between cycles"`
	Count    int           `yaml:"count" env:"DRBDMON_WATCH_COUNT" env-default:"-1" env-description:"number of cycles, -1 for no limit"`
	CState   string        `yaml:"cstate" env:"DRBDMON_WATCH_CSTATE" env-description:"connection state pattern"`
	DState   string        `yaml:"dstate" env:"DRBDMON_WATCH_DSTATE" env-description:"disk state pattern"`
	Resource string        `yaml:"resource" env:"DRBDMON_WATCH_RESOURCE" env-description:"exact resource name"`
}

// DefaultConfigFile returns $HOME/.drbdmon/config.yml when it exists, else "".
func DefaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".drbdmon", "config.yml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// NewSettings loads the given files in order, then the environment. Empty
// names are skipped. The result is not validated: callers apply flag
// overrides first.
func NewSettings(configFiles ...string) (*Settings, error) {
	// seeded instead of env-default, so an explicit false or 0 in a file is kept
	cfg := Settings{
		Logging: Logging{Syslog: true},
		Monitor: Monitor{Encryption: DefaultEncryption},
	}

	loaded := false
	for _, cfgFile := range configFiles {
		if cfgFile == "" {
			continue
		}

		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no config %s", ErrConfiguration, cfgFile)
		}

		if err := cleanenv.ReadConfig(cfgFile, &cfg); err != nil {
			return nil, fmt.Errorf("%w: config read %s: %w", ErrConfiguration, cfgFile, err)
		}
		loaded = true
	}

	if !loaded {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%w: environment: %w", ErrConfiguration, err)
		}
	}

	return &cfg, nil
}

// Validate normalizes every section and fills derived defaults.
func (s *Settings) Validate() error {
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	if s.Logging.Debug {
		s.Logging.Level = "debug"
	}

	if err := s.DRBD.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, pkgerrors.Wrap(err, "drbd"))
	}
	if err := s.Monitor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, pkgerrors.Wrap(err, "monitor"))
	}
	if err := s.Watch.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, pkgerrors.Wrap(err, "watch"))
	}

	s.Metrics.Textfile = strings.TrimSpace(s.Metrics.Textfile)
	if s.Monitor.ServiceHost == "" {
		s.Monitor.ServiceHost = s.DRBD.Hostname
	}
	return nil
}

// SyslogEnabled reports whether fatal errors also go to syslog.
func (s *Settings) SyslogEnabled() bool {
	return s.Logging.Syslog && !s.Logging.Debug
}

func (d *DRBD) Validate() error {
	d.Drbdadm = strings.TrimSpace(d.Drbdadm)
	if d.Drbdadm == "" {
		d.Drbdadm = DefaultDrbdadm
	}
	d.ProcDRBD = strings.TrimSpace(d.ProcDRBD)
	if d.ProcDRBD == "" {
		d.ProcDRBD = DefaultProcDRBD
	}
	d.XMLDump = strings.TrimSpace(d.XMLDump)
	d.Hostname = strings.TrimSpace(d.Hostname)
	if d.Hostname == "" {
		host, err := os.Hostname()
		if err != nil {
			return pkgerrors.Wrap(err, "hostname")
		}
		d.Hostname = host
	}
	return nil
}

func (m *Monitor) Validate() error {
	m.Mode = strings.ToLower(strings.TrimSpace(m.Mode))
	if m.Mode == "" {
		m.Mode = ModeActive
	}
	if m.Mode != ModeActive && m.Mode != ModePassive {
		return fmt.Errorf("unknown mode %q", m.Mode)
	}

	m.Channel = strings.ToLower(strings.TrimSpace(m.Channel))
	if m.Channel == "" {
		m.Channel = ChannelNSCA
	}
	if m.Channel != ChannelNSCA && m.Channel != ChannelNRDP {
		return fmt.Errorf("unknown passive channel %q", m.Channel)
	}

	if m.Port == 0 {
		m.Port = DefaultNSCAPort
	}
	if m.Port < 0 || m.Port > 65535 {
		return fmt.Errorf("port %d out of range", m.Port)
	}
	if m.Timeout <= 0 {
		m.Timeout = DefaultTimeout
	}
	if m.Encryption != 0 && m.Encryption != 1 {
		return fmt.Errorf("unsupported NSCA encryption method %d", m.Encryption)
	}

	m.Host = strings.TrimSpace(m.Host)
	m.Service = strings.TrimSpace(m.Service)
	m.ServiceHost = strings.TrimSpace(m.ServiceHost)
	m.NRDPURL = strings.TrimSpace(m.NRDPURL)
	m.NRDPToken = strings.TrimSpace(m.NRDPToken)
	return nil
}

// Passive reports whether results are submitted to a collector.
func (m *Monitor) Passive() bool {
	return m.Mode == ModePassive
}

// ValidatePassive checks what a passive submission needs. It is a no-op in
// active mode.
func (s *Settings) ValidatePassive() error {
	m := &s.Monitor
	if !m.Passive() {
		return nil
	}
	if m.Service == "" {
		return fmt.Errorf("%w: passive mode requires a service description", ErrConfiguration)
	}
	switch m.Channel {
	case ChannelNRDP:
		if m.NRDPURL == "" {
			return fmt.Errorf("%w: passive mode requires an NRDP url", ErrConfiguration)
		}
		if m.NRDPToken == "" {
			return fmt.Errorf("%w: passive mode requires an NRDP token", ErrConfiguration)
		}
	default:
		if m.Host == "" {
			return fmt.Errorf("%w: passive mode requires a collector host", ErrConfiguration)
		}
	}
	if m.ServiceHost == "" {
		return fmt.Errorf("%w: passive mode requires a host name to report", ErrConfiguration)
	}
	return nil
}

func (w *Watch) Validate() error {
	if w.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", w.Interval)
	}
	if w.Count <= 0 {
		w.Count = UnboundedCount
	}
	w.CState = strings.TrimSpace(w.CState)
	w.DState = strings.TrimSpace(w.DState)
	w.Resource = strings.TrimSpace(w.Resource)
	return nil
}

// ToYAML dumps the settings, with secrets masked.
func (s *Settings) ToYAML() ([]byte, error) {
	masked := *s
	if masked.Monitor.Password != "" {
		masked.Monitor.Password = "***"
	}
	if masked.Monitor.NRDPToken != "" {
		masked.Monitor.NRDPToken = "***"
	}
	raw, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("failed to encode into yaml: %w", err)
	}
	return raw, nil
}
