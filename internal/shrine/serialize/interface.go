// Package serialize implements the shrine's serializer set: three drop-in
// marshallers (BSON, JSON, MessagePack) for the Holder, selected by a tag
// byte carried in the container metadata rather than by caller choice.
package serialize

import "github.com/allisson/shrine/internal/shrine/domain"

// Format identifies a serializer set member by the on-disk serialization
// tag.
type Format byte

const (
	// FormatBSON marshals the holder as BSON.
	FormatBSON Format = 0
	// FormatJSON marshals the holder as JSON.
	FormatJSON Format = 1
	// FormatMessagePack marshals the holder as MessagePack.
	FormatMessagePack Format = 2
)

// String implements fmt.Stringer for CLI `info` output.
func (f Format) String() string {
	switch f {
	case FormatBSON:
		return "bson"
	case FormatJSON:
		return "json"
	case FormatMessagePack:
		return "messagepack"
	default:
		return "unknown"
	}
}

// ParseFormat maps a CLI-facing name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "bson":
		return FormatBSON, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "messagepack":
		return FormatMessagePack, nil
	default:
		return 0, &domain.ErrInvalidFormat{Reason: "unknown serialization format `" + name + "`"}
	}
}

// Serializer is the contract every serializer set member implements.
type Serializer interface {
	// Format reports the tag this serializer corresponds to in the file
	// format.
	Format() Format

	// Serialize marshals a holder to bytes.
	Serialize(h *domain.Holder) ([]byte, error)

	// Deserialize unmarshals bytes produced by Serialize back into a
	// holder.
	Deserialize(data []byte) (*domain.Holder, error)
}

// New constructs the Serializer for format.
func New(format Format) (Serializer, error) {
	switch format {
	case FormatBSON:
		return &bsonSerializer{}, nil
	case FormatJSON:
		return &jsonSerializer{}, nil
	case FormatMessagePack:
		return &msgpackSerializer{}, nil
	default:
		return nil, &domain.ErrInvalidFormat{Reason: "unknown serialization tag"}
	}
}
