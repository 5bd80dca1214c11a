// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package nsca submits passive check results to an NSCA daemon, speaking the
// same protocol as send_nsca.
package nsca

import (
	"context"
	"crypto/rand"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/report"
)

// Client sends one result per connection.
type Client struct {
	addr       string
	timeout    time.Duration
	password   string
	encryption int

	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
	random io.Reader
}

var _ report.Submitter = (*Client)(nil)

// NewClient creates a client from validated monitor settings.
func NewClient(cfg config.Monitor) *Client {
	d := &net.Dialer{}
	return &Client{
		addr:       net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		timeout:    cfg.Timeout,
		password:   cfg.Password,
		encryption: cfg.Encryption,
		dial:       d.DialContext,
		random:     rand.Reader,
	}
}

// Submit connects, waits for the init packet and sends s. The timeout covers
// the whole exchange.
func (c *Client) Submit(ctx context.Context, s report.Submission) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dial(ctx, "tcp", c.addr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s", c.addr)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return errors.Wrap(err, "set deadline")
		}
	}

	greeting, err := readInitPacket(conn)
	if err != nil {
		return errors.Wrapf(err, "nsca %s", c.addr)
	}

	pkt := dataPacket{
		Timestamp:  greeting.Timestamp,
		ReturnCode: int16(s.Status),
		Host:       s.Host,
		Service:    s.Service,
		Output:     s.Output,
	}
	buf, err := pkt.marshal(c.random)
	if err != nil {
		return err
	}
	if err := encrypt(buf, c.encryption, greeting.IV, c.password); err != nil {
		return err
	}

	if _, err := conn.Write(buf); err != nil {
		return errors.Wrapf(err, "send to %s", c.addr)
	}

	log.Ctx(ctx).Debug().Str("addr", c.addr).Int("bytes", len(buf)).Msg("nsca packet sent")
	return nil
}
