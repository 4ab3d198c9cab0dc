package serialize

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// msgpackSerializer marshals the holder with vmihailenco/msgpack.
type msgpackSerializer struct{}

func (s *msgpackSerializer) Format() Format {
	return FormatMessagePack
}

func (s *msgpackSerializer) Serialize(h *domain.Holder) ([]byte, error) {
	snap, err := h.Export()
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "messagepack", Write: true, Err: err}
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "messagepack", Write: true, Err: err}
	}
	return data, nil
}

func (s *msgpackSerializer) Deserialize(data []byte) (*domain.Holder, error) {
	var snap domain.HolderSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, &domain.ErrSerialize{Format: "messagepack", Write: false, Err: err}
	}
	h, err := domain.ImportHolder(snap)
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "messagepack", Write: false, Err: err}
	}
	return h, nil
}
