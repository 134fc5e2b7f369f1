// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/binary"
)

// PCM16WAV builds a mono 16-bit PCM WAV file holding samples.
func PCM16WAV(sampleRate int, samples []int16) []byte {
	var buffer bytes.Buffer
	dataSize := len(samples) * 2
	write := func(value any) { binary.Write(&buffer, binary.LittleEndian, value) }

	buffer.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buffer.WriteString("WAVE")
	buffer.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(1)) // mono
	write(uint32(sampleRate))
	write(uint32(sampleRate * 2))
	write(uint16(2))
	write(uint16(16))
	buffer.WriteString("data")
	write(uint32(dataSize))
	write(samples)
	return buffer.Bytes()
}
