// Package format implements the shrine's on-disk container format (C6):
// magic, version, UUID, encryption tag, serialization tag, and payload, plus
// a read-only reader for the legacy version-0 layout.
package format

import (
	"github.com/google/uuid"

	"github.com/allisson/shrine/internal/shrine/crypto"
	"github.com/allisson/shrine/internal/shrine/domain"
	"github.com/allisson/shrine/internal/shrine/serialize"
)

const (
	magic = "shrine"

	// CurrentVersion is the only version this implementation writes.
	CurrentVersion byte = 1

	// legacyVersion is the read-only version this implementation
	// understands but refuses to write.
	legacyVersion byte = 0

	magicSize     = 6
	versionOffset = magicSize
	uuidSize      = 16
)

// Container is the decoded shape of a closed shrine's bytes, independent of
// which version produced them.
type Container struct {
	Version    byte
	UUID       uuid.UUID
	Encryption crypto.Algorithm
	Serializer serialize.Format
	Payload    []byte
}

// Read parses raw bytes into a Container, dispatching on the version byte.
func Read(data []byte) (*Container, error) {
	if len(data) < magicSize+1 {
		return nil, &domain.ErrInvalidFormat{Reason: "marker not found"}
	}
	if string(data[:magicSize]) != magic {
		return nil, &domain.ErrInvalidFormat{Reason: "marker not found"}
	}

	version := data[versionOffset]
	rest := data[versionOffset+1:]

	switch version {
	case legacyVersion:
		return readLegacy(rest)
	case CurrentVersion:
		return readV1(rest)
	default:
		return nil, &domain.ErrUnsupportedVersion{Version: version}
	}
}

func readV1(rest []byte) (*Container, error) {
	if len(rest) < uuidSize+2 {
		return nil, &domain.ErrInvalidFormat{Reason: "uuid or tags not found"}
	}

	id, err := uuid.FromBytes(rest[:uuidSize])
	if err != nil {
		return nil, &domain.ErrInvalidFormat{Reason: "invalid uuid"}
	}
	rest = rest[uuidSize:]

	encTag := rest[0]
	serTag := rest[1]
	payload := rest[2:]

	enc := crypto.Algorithm(encTag)
	if enc != crypto.AlgorithmPlain && enc != crypto.AlgorithmAES {
		return nil, &domain.ErrInvalidFormat{Reason: "unknown encryption tag"}
	}
	ser := serialize.Format(serTag)
	if ser != serialize.FormatBSON && ser != serialize.FormatJSON && ser != serialize.FormatMessagePack {
		return nil, &domain.ErrInvalidFormat{Reason: "unknown serialization tag"}
	}

	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	return &Container{
		Version:    CurrentVersion,
		UUID:       id,
		Encryption: enc,
		Serializer: ser,
		Payload:    payloadCopy,
	}, nil
}

// Write encodes c as a version-1 container. Writing any other version is
// not supported: legacy containers are read-only.
func Write(c *Container) []byte {
	out := make([]byte, 0, magicSize+1+uuidSize+2+len(c.Payload))
	out = append(out, []byte(magic)...)
	out = append(out, CurrentVersion)
	idBytes, _ := c.UUID.MarshalBinary()
	out = append(out, idBytes...)
	out = append(out, byte(c.Encryption))
	out = append(out, byte(c.Serializer))
	out = append(out, c.Payload...)
	return out
}
