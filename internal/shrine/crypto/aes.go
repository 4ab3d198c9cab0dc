package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"

	"github.com/allisson/shrine/internal/shrine/domain"
)

const (
	saltSize = 16

	// releaseKDFRounds is the PBKDF2 round count used in production. It
	// mirrors the 600,000-round figure OWASP recommends for
	// PBKDF2-HMAC-SHA256 as of 2023.
	releaseKDFRounds = 600_000

	// debugKDFRounds is used only when SHRINE_DEBUG_KDF=1 is set in the
	// environment, a documented test affordance so unit tests are not
	// paying the full KDF cost on every run.
	debugKDFRounds = 1

	// debugKDFEnvVar gates debugKDFRounds. Unset or any value other than
	// "1" keeps the release round count.
	debugKDFEnvVar = "SHRINE_DEBUG_KDF"
)

// AESCipher is the AES-256-GCM-SIV cipher set member: PBKDF2-HMAC-SHA256
// key derivation over a fresh per-call salt, then AES-256-GCM-SIV sealing
// with a fresh per-call nonce. The envelope layout is
// salt(16) || nonce(12) || ciphertext||tag.
type AESCipher struct {
	password domain.Password
}

// NewAESCipher constructs an AESCipher bound to password. The password is
// copied; callers remain responsible for scrubbing their own copy.
func NewAESCipher(password domain.Password) *AESCipher {
	return &AESCipher{password: domain.NewPassword(password.String())}
}

// Algorithm implements Cipher.
func (c *AESCipher) Algorithm() Algorithm {
	return AlgorithmAES
}

func kdfRounds() int {
	if os.Getenv(debugKDFEnvVar) == "1" {
		return debugKDFRounds
	}
	return releaseKDFRounds
}

func deriveKey(password []byte, salt []byte) [32]byte {
	derived := pbkdf2.Key(password, salt, kdfRounds(), 32, sha256.New)
	var key [32]byte
	copy(key[:], derived)
	domain.Zero(derived)
	return key
}

// Encrypt implements Cipher.
func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, &domain.ErrCryptoWrite{Reason: err.Error()}
	}

	var nonce [gcmSIVNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, &domain.ErrCryptoWrite{Reason: err.Error()}
	}

	key := deriveKey(c.password.Bytes(), salt)
	defer domain.Zero(key[:])

	cipher := newAESGCMSIV256(key)
	sealed, err := cipher.seal(nonce, plaintext, nil)
	if err != nil {
		return nil, &domain.ErrCryptoWrite{Reason: err.Error()}
	}

	envelope := make([]byte, 0, saltSize+gcmSIVNonceSize+len(sealed))
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce[:]...)
	envelope = append(envelope, sealed...)
	return envelope, nil
}

// Decrypt implements Cipher. Any authentication failure, including a wrong
// password, is reported as *domain.ErrCryptoRead without further detail.
func (c *AESCipher) Decrypt(envelope []byte) ([]byte, error) {
	if len(envelope) < saltSize+gcmSIVNonceSize+gcmSIVTagSize {
		return nil, &domain.ErrCryptoRead{}
	}

	salt := envelope[0:saltSize]
	var nonce [gcmSIVNonceSize]byte
	copy(nonce[:], envelope[saltSize:saltSize+gcmSIVNonceSize])
	sealed := envelope[saltSize+gcmSIVNonceSize:]

	key := deriveKey(c.password.Bytes(), salt)
	defer domain.Zero(key[:])

	cipher := newAESGCMSIV256(key)
	plaintext, err := cipher.open(nonce, sealed, nil)
	if err != nil {
		return nil, &domain.ErrCryptoRead{}
	}
	return plaintext, nil
}

// Scrub zeroizes the bound password.
func (c *AESCipher) Scrub() {
	c.password.Scrub()
}
