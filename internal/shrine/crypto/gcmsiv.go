package crypto

import (
	"crypto/aes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// aesGCMSIV256 implements AES-256-GCM-SIV following the construction
// described in RFC 8452: a nonce-misuse-resistant AEAD built from a
// POLYVAL-based MAC and AES-CTR encryption, both keyed by material derived
// fresh from the master key and the per-call nonce. Neither the standard
// library nor golang.org/x/crypto ships AES-GCM-SIV, so this implementation
// is built directly on crypto/aes rather than imported.
type aesGCMSIV256 struct {
	key [32]byte
}

const (
	gcmSIVNonceSize = 12
	gcmSIVTagSize   = 16
)

func newAESGCMSIV256(key [32]byte) *aesGCMSIV256 {
	return &aesGCMSIV256{key: key}
}

// deriveKeys implements the RFC 8452 key-derivation step: six AES-256
// block encryptions of LE32(counter)||nonce, keeping the low 8 bytes of
// each, concatenated into a 16-byte authentication key and a 32-byte
// encryption key.
func (c *aesGCMSIV256) deriveKeys(nonce [gcmSIVNonceSize]byte) (authKey [16]byte, encKey [32]byte, err error) {
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return authKey, encKey, err
	}

	var derived [48]byte
	var counterBlock [16]byte
	copy(counterBlock[4:], nonce[:])
	var out [16]byte
	for i := 0; i < 6; i++ {
		binary.LittleEndian.PutUint32(counterBlock[0:4], uint32(i))
		block.Encrypt(out[:], counterBlock[:])
		copy(derived[i*8:i*8+8], out[:8])
	}
	copy(authKey[:], derived[0:16])
	copy(encKey[:], derived[16:48])
	return authKey, encKey, nil
}

func (c *aesGCMSIV256) computeTag(authKey [16]byte, encKey [32]byte, nonce [gcmSIVNonceSize]byte, aad, plaintext []byte) ([16]byte, error) {
	h := blockFromBytes(authKey[:])

	var blocks [][16]byte
	blocks = append(blocks, padBlocks(aad)...)
	blocks = append(blocks, padBlocks(plaintext)...)

	var lengthBlock [16]byte
	binary.LittleEndian.PutUint64(lengthBlock[0:8], uint64(len(aad))*8)
	binary.LittleEndian.PutUint64(lengthBlock[8:16], uint64(len(plaintext))*8)
	blocks = append(blocks, lengthBlock)

	s := polyvalHash(h, blocks).bytes()

	// Clear the top bit of the last byte, then XOR the nonce into the
	// first 12 bytes, per RFC 8452's tag derivation.
	s[15] &= 0x7f
	for i := 0; i < gcmSIVNonceSize; i++ {
		s[i] ^= nonce[i]
	}

	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return [16]byte{}, err
	}
	var tag [16]byte
	block.Encrypt(tag[:], s[:])
	return tag, nil
}

// ctrXOR runs AES-CTR keyed by encKey, with the initial counter block
// derived from tag (its top bit set, per RFC 8452), XORing the keystream
// into data in place.
func ctrXOR(encKey [32]byte, tag [16]byte, data []byte) error {
	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return err
	}

	counterBlock := tag
	counterBlock[15] |= 0x80

	var keystream [16]byte
	var out [16]byte
	counter := binary.LittleEndian.Uint32(counterBlock[0:4])
	fixed := counterBlock

	for offset := 0; offset < len(data); offset += 16 {
		binary.LittleEndian.PutUint32(fixed[0:4], counter)
		block.Encrypt(out[:], fixed[:])
		copy(keystream[:], out[:])
		end := offset + 16
		if end > len(data) {
			end = len(data)
		}
		n := end - offset
		for i := 0; i < n; i++ {
			data[offset+i] ^= keystream[i]
		}
		counter++
	}
	return nil
}

// seal encrypts plaintext under nonce and aad, returning ciphertext||tag.
func (c *aesGCMSIV256) seal(nonce [gcmSIVNonceSize]byte, plaintext, aad []byte) ([]byte, error) {
	authKey, encKey, err := c.deriveKeys(nonce)
	if err != nil {
		return nil, err
	}

	tag, err := c.computeTag(authKey, encKey, nonce, aad, plaintext)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	copy(ciphertext, plaintext)
	if err := ctrXOR(encKey, tag, ciphertext); err != nil {
		return nil, err
	}

	return append(ciphertext, tag[:]...), nil
}

// open verifies and decrypts a blob produced by seal. Any mismatch is
// reported as a plain error; callers translate it to *domain.ErrCryptoRead.
func (c *aesGCMSIV256) open(nonce [gcmSIVNonceSize]byte, sealed, aad []byte) ([]byte, error) {
	if len(sealed) < gcmSIVTagSize {
		return nil, fmt.Errorf("ciphertext shorter than tag")
	}
	ciphertext := sealed[:len(sealed)-gcmSIVTagSize]
	var tag [16]byte
	copy(tag[:], sealed[len(sealed)-gcmSIVTagSize:])

	authKey, encKey, err := c.deriveKeys(nonce)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	copy(plaintext, ciphertext)
	if err := ctrXOR(encKey, tag, plaintext); err != nil {
		return nil, err
	}

	expectedTag, err := c.computeTag(authKey, encKey, nonce, aad, plaintext)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(expectedTag[:], tag[:]) != 1 {
		domain.Zero(plaintext)
		return nil, fmt.Errorf("authentication failed")
	}
	return plaintext, nil
}
