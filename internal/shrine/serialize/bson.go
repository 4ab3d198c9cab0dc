package serialize

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// bsonSerializer marshals the holder with go.mongodb.org/mongo-driver's
// bson package. The driver itself is already an indirect dependency of
// this module's domain stack (pulled in transitively); here it is promoted
// to a direct, actively used one, since BSON is one of the three named
// serialization formats.
type bsonSerializer struct{}

func (s *bsonSerializer) Format() Format {
	return FormatBSON
}

func (s *bsonSerializer) Serialize(h *domain.Holder) ([]byte, error) {
	snap, err := h.Export()
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "bson", Write: true, Err: err}
	}
	data, err := bson.Marshal(snap)
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "bson", Write: true, Err: err}
	}
	return data, nil
}

func (s *bsonSerializer) Deserialize(data []byte) (*domain.Holder, error) {
	var snap domain.HolderSnapshot
	if err := bson.Unmarshal(data, &snap); err != nil {
		return nil, &domain.ErrSerialize{Format: "bson", Write: false, Err: err}
	}
	h, err := domain.ImportHolder(snap)
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "bson", Write: false, Err: err}
	}
	return h, nil
}
