package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randKey(t *testing.T) [32]byte {
	t.Helper()
	var key [32]byte
	_, err := rand.Read(key[:])
	require.NoError(t, err)
	return key
}

func TestAESGCMSIV256_SealOpenRoundTrip(t *testing.T) {
	key := randKey(t)
	cipher := newAESGCMSIV256(key)

	var nonce [gcmSIVNonceSize]byte
	_, err := rand.Read(nonce[:])
	require.NoError(t, err)

	plaintext := []byte("a message spanning more than one sixteen byte block of data")
	sealed, err := cipher.seal(nonce, plaintext, nil)
	require.NoError(t, err)

	opened, err := cipher.open(nonce, sealed, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestAESGCMSIV256_EmptyAndShortPlaintexts(t *testing.T) {
	key := randKey(t)
	cipher := newAESGCMSIV256(key)
	var nonce [gcmSIVNonceSize]byte

	for _, pt := range [][]byte{nil, []byte(""), []byte("a"), []byte("exactly16bytes!!")} {
		sealed, err := cipher.seal(nonce, pt, nil)
		require.NoError(t, err)
		opened, err := cipher.open(nonce, sealed, nil)
		require.NoError(t, err)
		assert.Equal(t, len(pt), len(opened))
		assert.True(t, bytes.Equal(pt, opened))
	}
}

func TestAESGCMSIV256_TamperedTagRejected(t *testing.T) {
	key := randKey(t)
	cipher := newAESGCMSIV256(key)
	var nonce [gcmSIVNonceSize]byte

	sealed, err := cipher.seal(nonce, []byte("message"), nil)
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = cipher.open(nonce, sealed, nil)
	assert.Error(t, err)
}

func TestAESGCMSIV256_DifferentNonceDifferentCiphertext(t *testing.T) {
	key := randKey(t)
	cipher := newAESGCMSIV256(key)

	var n1, n2 [gcmSIVNonceSize]byte
	n2[0] = 1

	c1, err := cipher.seal(n1, []byte("same plaintext"), nil)
	require.NoError(t, err)
	c2, err := cipher.seal(n2, []byte("same plaintext"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2)
}

func TestAESGCMSIV256_AADMismatchRejected(t *testing.T) {
	key := randKey(t)
	cipher := newAESGCMSIV256(key)
	var nonce [gcmSIVNonceSize]byte

	sealed, err := cipher.seal(nonce, []byte("message"), []byte("aad-1"))
	require.NoError(t, err)

	_, err = cipher.open(nonce, sealed, []byte("aad-2"))
	assert.Error(t, err)
}

func TestPolyvalHash_Deterministic(t *testing.T) {
	h := blockFromBytes(bytes.Repeat([]byte{0x01}, 16))
	blocks := padBlocks([]byte("some associated data"))

	s1 := polyvalHash(h, blocks)
	s2 := polyvalHash(h, blocks)
	assert.Equal(t, s1, s2)
}

func TestPadBlocks_EmptyInputProducesNoBlocks(t *testing.T) {
	assert.Empty(t, padBlocks(nil))
	assert.Empty(t, padBlocks([]byte{}))
}

func TestPadBlocks_PartialBlockZeroPadded(t *testing.T) {
	blocks := padBlocks([]byte("12345"))
	require.Len(t, blocks, 1)
	assert.Equal(t, byte('1'), blocks[0][0])
	assert.Equal(t, byte(0), blocks[0][15])
}
