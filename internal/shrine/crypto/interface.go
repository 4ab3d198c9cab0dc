// Package crypto implements the shrine's cipher set: a pluggable envelope
// abstraction with two concrete algorithms, Plain and AES-256-GCM-SIV with
// PBKDF2-HMAC-SHA256 key derivation. A small interface plus a factory
// function select the concrete implementation by a tag byte read from the
// container header.
package crypto

import "github.com/allisson/shrine/internal/shrine/domain"

// Algorithm identifies a cipher set member by the on-disk encryption tag.
type Algorithm byte

const (
	// AlgorithmPlain is the identity cipher: no encryption.
	AlgorithmPlain Algorithm = 0
	// AlgorithmAES is AES-256-GCM-SIV with PBKDF2-SHA256 key derivation.
	AlgorithmAES Algorithm = 1
)

// String implements fmt.Stringer for CLI `info` output.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmPlain:
		return "none"
	case AlgorithmAES:
		return "aes"
	default:
		return "unknown"
	}
}

// Cipher is the contract every cipher set member implements. Encrypt and
// Decrypt operate on whole payloads; there is no streaming variant because
// the shrine's payload is always held fully in memory.
type Cipher interface {
	// Algorithm reports the tag this cipher corresponds to in the file
	// format.
	Algorithm() Algorithm

	// Encrypt seals plaintext, returning the on-disk envelope bytes.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens an envelope produced by Encrypt. Any authentication
	// failure is reported as *domain.ErrCryptoRead without further detail.
	Decrypt(envelope []byte) ([]byte, error)
}

// New constructs the Cipher for alg. For AlgorithmAES, password must be
// non-nil; the returned cipher keeps its own copy of the password (a fresh
// key is derived from it on every Encrypt/Decrypt call) until its Scrub
// method is called.
func New(alg Algorithm, password *domain.Password) (Cipher, error) {
	switch alg {
	case AlgorithmPlain:
		return &PlainCipher{}, nil
	case AlgorithmAES:
		if password == nil {
			return nil, &domain.ErrInvalidPassword{}
		}
		return NewAESCipher(*password), nil
	default:
		return nil, &domain.ErrInvalidFormat{Reason: "unknown encryption tag"}
	}
}
