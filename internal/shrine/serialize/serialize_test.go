package serialize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/shrine/internal/shrine/domain"
)

func buildHolder(t *testing.T) *domain.Holder {
	t.Helper()
	h := domain.NewHolder()
	require.NoError(t, h.Set("a/b/c", domain.NewSecret(domain.SecretBytesFromString("v1"), domain.ModeText, "alice@host", time.Now().UTC())))
	require.NoError(t, h.Set("top", domain.NewSecret(domain.NewSecretBytes([]byte{0, 1, 2, 255}), domain.ModeBinary, "bob@host", time.Now().UTC())))
	h.SetPrivate("git.enabled", domain.NewSecret(domain.SecretBytesFromString("true"), domain.ModeText, "alice@host", time.Now().UTC()))
	return h
}

func TestSerializers_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatBSON, FormatJSON, FormatMessagePack} {
		t.Run(format.String(), func(t *testing.T) {
			ser, err := New(format)
			require.NoError(t, err)
			assert.Equal(t, format, ser.Format())

			h := buildHolder(t)
			data, err := ser.Serialize(h)
			require.NoError(t, err)

			rebuilt, err := ser.Deserialize(data)
			require.NoError(t, err)

			assert.Equal(t, h.Keys(), rebuilt.Keys())
			for _, key := range h.Keys() {
				want, err := h.Get(key)
				require.NoError(t, err)
				got, err := rebuilt.Get(key)
				require.NoError(t, err)
				assert.True(t, want.Value.Equal(got.Value))
				assert.Equal(t, want.Mode, got.Mode)
			}
			assert.Equal(t, h.KeysPrivate(), rebuilt.KeysPrivate())
		})
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"bson":        FormatBSON,
		"json":        FormatJSON,
		"msgpack":     FormatMessagePack,
		"messagepack": FormatMessagePack,
	}
	for name, want := range cases {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Format(99))
	assert.Error(t, err)
}

func TestDeserialize_MalformedData(t *testing.T) {
	for _, format := range []Format{FormatBSON, FormatJSON, FormatMessagePack} {
		ser, err := New(format)
		require.NoError(t, err)
		_, err = ser.Deserialize([]byte("not valid for any of these formats {{{"))
		assert.Error(t, err, format.String())
	}
}
