package format

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/allisson/shrine/internal/shrine/crypto"
	"github.com/allisson/shrine/internal/shrine/domain"
	"github.com/allisson/shrine/internal/shrine/serialize"
)

// readLegacy parses the version-0 container layout: a little-endian u32
// length prefix, a metadata record of that length (a serialization-format
// byte followed by an optional encryption byte: 0x00 for absent, or 0x01
// followed by the encryption tag), the UUID, then the payload consuming
// the remainder. This layout is read-only: writing it back is refused with
// ErrUnsupportedOldFormat, directing users to the `convert` command.
func readLegacy(rest []byte) (*Container, error) {
	if len(rest) < 4 {
		return nil, &domain.ErrInvalidFormat{Reason: "legacy metadata length not found"}
	}
	metaLen := binary.LittleEndian.Uint32(rest[:4])
	rest = rest[4:]

	if uint64(len(rest)) < uint64(metaLen) {
		return nil, &domain.ErrInvalidFormat{Reason: "legacy metadata truncated"}
	}
	meta := rest[:metaLen]
	rest = rest[metaLen:]

	if len(meta) < 1 {
		return nil, &domain.ErrInvalidFormat{Reason: "legacy metadata missing serialization tag"}
	}
	ser := serialize.Format(meta[0])
	if ser != serialize.FormatBSON && ser != serialize.FormatJSON && ser != serialize.FormatMessagePack {
		return nil, &domain.ErrInvalidFormat{Reason: "unknown legacy serialization tag"}
	}
	meta = meta[1:]

	enc := crypto.AlgorithmPlain
	if len(meta) >= 1 {
		switch meta[0] {
		case 0x00:
			enc = crypto.AlgorithmPlain
		case 0x01:
			if len(meta) < 2 {
				return nil, &domain.ErrInvalidFormat{Reason: "legacy metadata missing encryption tag"}
			}
			enc = crypto.Algorithm(meta[1])
		default:
			return nil, &domain.ErrInvalidFormat{Reason: "invalid legacy encryption discriminant"}
		}
	}

	if len(rest) < uuidSize {
		return nil, &domain.ErrInvalidFormat{Reason: "legacy uuid not found"}
	}
	id, err := uuid.FromBytes(rest[:uuidSize])
	if err != nil {
		return nil, &domain.ErrInvalidFormat{Reason: "invalid legacy uuid"}
	}
	payload := rest[uuidSize:]
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	return &Container{
		Version:    legacyVersion,
		UUID:       id,
		Encryption: enc,
		Serializer: ser,
		Payload:    payloadCopy,
	}, nil
}
