package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretBytes_Base64RoundTrip(t *testing.T) {
	original := NewSecretBytes([]byte{0x00, 0x01, 0xff, 'h', 'i'})
	encoded := original.Base64()

	decoded, err := SecretBytesFromBase64(encoded)
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded))
}

func TestSecretBytes_TextMarshalRoundTrip(t *testing.T) {
	original := SecretBytesFromString("hello world")

	text, err := original.MarshalText()
	require.NoError(t, err)

	var roundtripped SecretBytes
	require.NoError(t, roundtripped.UnmarshalText(text))
	assert.True(t, original.Equal(roundtripped))
}

func TestSecretBytes_Scrub(t *testing.T) {
	s := NewSecretBytes([]byte("sensitive"))
	s.Scrub()
	for _, b := range s.Bytes() {
		assert.Equal(t, byte(0), b)
	}
}

func TestSecretBytes_CopiesSource(t *testing.T) {
	src := []byte("original")
	s := NewSecretBytes(src)
	src[0] = 'X'
	assert.Equal(t, "original", s.String())
}

func TestPassword_ScrubClearsString(t *testing.T) {
	p := NewPassword("hunter2")
	p.Scrub()
	assert.Equal(t, "", p.String())
}

func TestSecretBytesFromBase64_Invalid(t *testing.T) {
	_, err := SecretBytesFromBase64("not valid base64!!")
	assert.Error(t, err)
}
