// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sensitive

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
)

// redacted is what every incidental output path prints instead of the
// wrapped bytes.
const redacted = "[redacted]"

// Bytes wraps a byte buffer classified as confidential. The zero value
// is an empty, safe-to-print wrapper.
type Bytes struct {
	data []byte
}

// Wrap classifies data as sensitive. The wrapper aliases the slice; it
// does not copy. Callers that need the original untouched should pass
// a copy.
func Wrap(data []byte) Bytes {
	return Bytes{data: data}
}

// Reveal returns the underlying bytes. This is the single sanctioned
// escape hatch; call sites are expected to be few and auditable.
func (b Bytes) Reveal() []byte {
	return b.data
}

// Len reports the buffer length without revealing content.
func (b Bytes) Len() int {
	return len(b.data)
}

// Equal compares two sensitive buffers in constant time.
func (b Bytes) Equal(other Bytes) bool {
	return subtle.ConstantTimeCompare(b.data, other.data) == 1
}

// Zero wipes the underlying buffer in place.
func (b Bytes) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}

// String implements fmt.Stringer with a redacted placeholder.
func (b Bytes) String() string {
	return redacted
}

// GoString keeps %#v from leaking the buffer.
func (b Bytes) GoString() string {
	return "sensitive.Bytes(" + redacted + ")"
}

// Format intercepts all fmt verbs, including %x and %q, which would
// otherwise bypass String by reflecting on the struct fields.
func (b Bytes) Format(state fmt.State, verb rune) {
	fmt.Fprint(state, redacted)
}

// LogValue implements slog.LogValuer so structured logs never carry
// the raw bytes regardless of handler.
func (b Bytes) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalText implements encoding.TextMarshaler with the placeholder,
// covering encoding/json, encoding/xml, and any text-based codec.
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
