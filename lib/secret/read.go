// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadFromPath loads a key file into a Buffer, or the first line of
// stdin when path is "-". Surrounding whitespace is trimmed and age
// identity files may carry "#" comment lines, which are dropped.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = readFirstLine(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	defer Zero(data)

	key := stripComments(data)
	if len(key) == 0 {
		return nil, fmt.Errorf("secret: %s holds no key material", path)
	}
	return NewFromBytes(key)
}

func readFirstLine(reader io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return nil, fmt.Errorf("stdin is empty")
	}
	return bytes.Clone(scanner.Bytes()), nil
}

// stripComments returns the first non-comment, non-blank line of data.
// The result aliases data.
func stripComments(data []byte) []byte {
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		return line
	}
	return nil
}
