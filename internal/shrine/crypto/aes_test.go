package crypto

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/shrine/internal/shrine/domain"
)

func TestMain(m *testing.M) {
	// PBKDF2 at the release round count makes every test in this package
	// pay ~600,000 rounds per Encrypt/Decrypt call; the documented test
	// affordance keeps the suite fast without touching the release code
	// path.
	os.Setenv(debugKDFEnvVar, "1")
	code := m.Run()
	os.Exit(code)
}

func TestAESCipher_EncryptDecryptRoundTrip(t *testing.T) {
	password := domain.NewPassword("correct horse battery staple")
	cipher := NewAESCipher(password)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	envelope, err := cipher.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, envelope)

	decrypted, err := cipher.Decrypt(envelope)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESCipher_EmptyPlaintext(t *testing.T) {
	cipher := NewAESCipher(domain.NewPassword("pw"))
	envelope, err := cipher.Encrypt(nil)
	require.NoError(t, err)

	decrypted, err := cipher.Decrypt(envelope)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestAESCipher_WrongPasswordFailsRead(t *testing.T) {
	cipher1 := NewAESCipher(domain.NewPassword("password one"))
	cipher2 := NewAESCipher(domain.NewPassword("password two"))

	envelope, err := cipher1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = cipher2.Decrypt(envelope)
	var cryptoRead *domain.ErrCryptoRead
	assert.ErrorAs(t, err, &cryptoRead)
}

func TestAESCipher_BitFlipDetected(t *testing.T) {
	cipher := NewAESCipher(domain.NewPassword("pw"))
	envelope, err := cipher.Encrypt([]byte("tamper me not"))
	require.NoError(t, err)

	for _, idx := range []int{0, saltSize, saltSize + gcmSIVNonceSize, len(envelope) - 1} {
		tampered := make([]byte, len(envelope))
		copy(tampered, envelope)
		tampered[idx] ^= 0x01

		_, err := cipher.Decrypt(tampered)
		var cryptoRead *domain.ErrCryptoRead
		assert.ErrorAsf(t, err, &cryptoRead, "flipping byte %d should fail authentication", idx)
	}
}

func TestAESCipher_TruncatedEnvelope(t *testing.T) {
	cipher := NewAESCipher(domain.NewPassword("pw"))
	_, err := cipher.Decrypt([]byte("too short"))
	var cryptoRead *domain.ErrCryptoRead
	assert.ErrorAs(t, err, &cryptoRead)
}

func TestAESCipher_FreshSaltAndNoncePerCall(t *testing.T) {
	cipher := NewAESCipher(domain.NewPassword("pw"))
	e1, err := cipher.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)
	e2, err := cipher.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	assert.NotEqual(t, e1, e2, "independent calls must not reuse salt/nonce")
}

func TestAESCipher_Algorithm(t *testing.T) {
	cipher := NewAESCipher(domain.NewPassword("pw"))
	assert.Equal(t, AlgorithmAES, cipher.Algorithm())
}

func TestNew_Dispatch(t *testing.T) {
	plain, err := New(AlgorithmPlain, nil)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmPlain, plain.Algorithm())

	pw := domain.NewPassword("pw")
	aes, err := New(AlgorithmAES, &pw)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmAES, aes.Algorithm())

	_, err = New(AlgorithmAES, nil)
	var invalidPassword *domain.ErrInvalidPassword
	assert.ErrorAs(t, err, &invalidPassword)

	_, err = New(Algorithm(99), nil)
	var invalidFormat *domain.ErrInvalidFormat
	assert.ErrorAs(t, err, &invalidFormat)
}
