// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bunny

import "strings"

// JoinBundlePath joins a base path or URL with a bundle name, using
// forward slashes throughout. A bundle name that is itself rooted (an
// absolute path, a drive path or a URL) replaces the base.
func JoinBundlePath(base, bundle string) string {
	base = strings.ReplaceAll(base, `\`, "/")
	bundle = strings.ReplaceAll(bundle, `\`, "/")

	switch {
	case base == "":
		return bundle
	case bundle == "":
		return base
	case isRooted(bundle):
		return bundle
	}
	return strings.TrimRight(base, "/") + "/" + bundle
}

func isRooted(path string) bool {
	if strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return true
	}
	return len(path) >= 2 && path[1] == ':' && isLetter(path[0])
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
