// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

// NetworkProtocolVersion maps an HTTP wire version to its
// network.protocol.version value. The second result is false for versions
// without a defined value, in which case the attribute is omitted.
func NetworkProtocolVersion(major, minor int) (string, bool) {
	switch {
	case major == 0 && minor == 9:
		return "0.9", true
	case major == 1 && minor == 0:
		return "1.0", true
	case major == 1 && minor == 1:
		return "1.1", true
	case major == 2:
		return "2", true
	case major == 3:
		return "3", true
	}
	return "", false
}
