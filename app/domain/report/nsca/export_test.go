// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nsca

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"net"
	"strings"
	"time"
)

const (
	InitPacketSize = initPacketSize
	DataPacketSize = dataPacketSize
)

// Received is a decoded data packet.
type Received struct {
	Version    int16
	Timestamp  uint32
	ReturnCode int16
	Host       string
	Service    string
	Output     string
}

// Decode reverses encryption and checks the packet the way the daemon does.
func Decode(raw []byte, method int, iv []byte, password string) (Received, error) {
	buf := append([]byte(nil), raw...)
	// xor is its own inverse; apply password then IV
	if method == EncryptXOR {
		xorCycle(buf, []byte(password))
		xorCycle(buf, iv)
	}

	want := binary.BigEndian.Uint32(buf[offCRC:])
	binary.BigEndian.PutUint32(buf[offCRC:], 0)
	if got := crc32.ChecksumIEEE(buf); got != want {
		return Received{}, fmt.Errorf("crc mismatch: got %08x want %08x", got, want)
	}

	return Received{
		Version:    int16(binary.BigEndian.Uint16(buf[offVersion:])),
		Timestamp:  binary.BigEndian.Uint32(buf[offTime:]),
		ReturnCode: int16(binary.BigEndian.Uint16(buf[offCode:])),
		Host:       cString(buf[offHost : offHost+hostSize]),
		Service:    cString(buf[offService : offService+serviceSize]),
		Output:     cString(buf[offOutput : offOutput+outputSize]),
	}, nil
}

func cString(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}

// NewTestClient builds a client with a deterministic random source.
func NewTestClient(addr string, timeout time.Duration, method int, password string, random io.Reader) *Client {
	d := &net.Dialer{}
	return &Client{
		addr:       addr,
		timeout:    timeout,
		password:   password,
		encryption: method,
		dial:       d.DialContext,
		random:     random,
	}
}
