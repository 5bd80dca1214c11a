// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nsca

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Wire layout of NSCA protocol version 3, as produced by send_nsca.
const (
	ivSize         = 128
	initPacketSize = ivSize + 4

	packetVersion  = 3
	hostSize       = 64
	serviceSize    = 128
	outputSize     = 512
	dataPacketSize = 720

	offVersion = 0
	offCRC     = 4
	offTime    = 8
	offCode    = 12
	offHost    = 14
	offService = offHost + hostSize
	offOutput  = offService + serviceSize
)

// Encryption methods understood by this sender.
const (
	EncryptNone = 0
	EncryptXOR  = 1
)

// initPacket is the greeting the daemon sends on connect.
type initPacket struct {
	IV        []byte
	Timestamp uint32
}

func readInitPacket(r io.Reader) (initPacket, error) {
	buf := make([]byte, initPacketSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return initPacket{}, fmt.Errorf("read init packet: %w", err)
	}
	return initPacket{
		IV:        buf[:ivSize],
		Timestamp: binary.BigEndian.Uint32(buf[ivSize:]),
	}, nil
}

// dataPacket is one check result.
type dataPacket struct {
	Timestamp  uint32
	ReturnCode int16
	Host       string
	Service    string
	Output     string
}

// marshal encodes p over a buffer prefilled from random, the way send_nsca
// pads unused bytes, and sets the checksum.
func (p dataPacket) marshal(random io.Reader) ([]byte, error) {
	buf := make([]byte, dataPacketSize)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, fmt.Errorf("randomize packet: %w", err)
	}

	binary.BigEndian.PutUint16(buf[offVersion:], uint16(packetVersion))
	binary.BigEndian.PutUint32(buf[offCRC:], 0)
	binary.BigEndian.PutUint32(buf[offTime:], p.Timestamp)
	binary.BigEndian.PutUint16(buf[offCode:], uint16(p.ReturnCode))
	putCString(buf[offHost:offHost+hostSize], p.Host)
	putCString(buf[offService:offService+serviceSize], p.Service)
	putCString(buf[offOutput:offOutput+outputSize], p.Output)

	binary.BigEndian.PutUint32(buf[offCRC:], crc32.ChecksumIEEE(buf))
	return buf, nil
}

// putCString writes s NUL terminated and NUL padded, truncated to fit.
func putCString(field []byte, s string) {
	n := copy(field[:len(field)-1], s)
	clear(field[n:])
}

// encrypt applies method in place. iv is the daemon's transmitted IV.
func encrypt(buf []byte, method int, iv []byte, password string) error {
	switch method {
	case EncryptNone:
		return nil
	case EncryptXOR:
		xorCycle(buf, iv)
		xorCycle(buf, []byte(password))
		return nil
	default:
		return fmt.Errorf("unsupported encryption method %d", method)
	}
}

func xorCycle(buf, key []byte) {
	if len(key) == 0 {
		return
	}
	for i := range buf {
		buf[i] ^= key[i%len(key)]
	}
}
