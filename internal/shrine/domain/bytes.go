// Package domain holds the shrine's in-memory data model: secret bytes, secret
// records, the hierarchical holder, and the error taxonomy that the core
// returns instead of printing.
package domain

import "encoding/base64"

// SecretBytes is an owned byte buffer carrying sensitive material: secret
// values and passwords. Callers MUST call Scrub once the buffer is no longer
// needed, including on error paths; Go has no destructors, so zeroization is
// never implicit.
type SecretBytes struct {
	b []byte
}

// NewSecretBytes copies src into a new SecretBytes. The caller retains
// ownership of src.
func NewSecretBytes(src []byte) SecretBytes {
	b := make([]byte, len(src))
	copy(b, src)
	return SecretBytes{b: b}
}

// SecretBytesFromString wraps the UTF-8 bytes of s.
func SecretBytesFromString(s string) SecretBytes {
	return NewSecretBytes([]byte(s))
}

// Bytes returns the underlying bytes. The returned slice aliases the
// receiver's storage; callers must not retain it past a Scrub call.
func (s SecretBytes) Bytes() []byte {
	return s.b
}

// String renders the bytes as UTF-8. Binary-mode secrets are not guaranteed
// to round-trip through this; callers displaying Binary secrets should use
// Base64 instead.
func (s SecretBytes) String() string {
	return string(s.b)
}

// Base64 encodes the bytes as standard base64, the wire representation used
// by every serializer in the set.
func (s SecretBytes) Base64() string {
	return base64.StdEncoding.EncodeToString(s.b)
}

// SecretBytesFromBase64 decodes a standard base64 string produced by Base64.
func SecretBytesFromBase64(enc string) (SecretBytes, error) {
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return SecretBytes{}, err
	}
	return SecretBytes{b: b}, nil
}

// MarshalText implements encoding.TextMarshaler so JSON and similar
// encoders store the base64 form rather than a raw byte array.
func (s SecretBytes) MarshalText() ([]byte, error) {
	return []byte(s.Base64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, the inverse of
// MarshalText.
func (s *SecretBytes) UnmarshalText(text []byte) error {
	decoded, err := SecretBytesFromBase64(string(text))
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Scrub overwrites the buffer with zeros. Safe to call on a zero-value or
// already-scrubbed SecretBytes.
func (s *SecretBytes) Scrub() {
	Zero(s.b)
}

// Equal reports whether two SecretBytes carry the same bytes.
func (s SecretBytes) Equal(other SecretBytes) bool {
	if len(s.b) != len(other.b) {
		return false
	}
	for i := range s.b {
		if s.b[i] != other.b[i] {
			return false
		}
	}
	return true
}

// Zero securely overwrites a byte slice with zeros to clear sensitive data
// from memory.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// Password is an owned, immutable-by-convention string wrapped the same way
// as SecretBytes: it must be scrubbed on every exit path.
type Password struct {
	s string
}

// NewPassword wraps a plaintext password string.
func NewPassword(s string) Password {
	return Password{s: s}
}

// String returns the wrapped password.
func (p Password) String() string {
	return p.s
}

// Bytes returns the UTF-8 bytes of the password.
func (p Password) Bytes() []byte {
	return []byte(p.s)
}

// Scrub overwrites the password's backing string. Go strings are immutable,
// so this replaces the field with the empty string; any byte slice obtained
// via Bytes is a copy and is not affected. Call sites that need the bytes
// zeroized as well should convert once via Bytes, scrub that slice with
// Zero, and discard the Password afterward.
func (p *Password) Scrub() {
	p.s = ""
}
