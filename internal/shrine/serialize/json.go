package serialize

import (
	"encoding/json"

	"github.com/allisson/shrine/internal/shrine/domain"
)

type jsonSerializer struct{}

func (s *jsonSerializer) Format() Format {
	return FormatJSON
}

func (s *jsonSerializer) Serialize(h *domain.Holder) ([]byte, error) {
	snap, err := h.Export()
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "json", Write: true, Err: err}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "json", Write: true, Err: err}
	}
	return data, nil
}

func (s *jsonSerializer) Deserialize(data []byte) (*domain.Holder, error) {
	var snap domain.HolderSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &domain.ErrSerialize{Format: "json", Write: false, Err: err}
	}
	h, err := domain.ImportHolder(snap)
	if err != nil {
		return nil, &domain.ErrSerialize{Format: "json", Write: false, Err: err}
	}
	return h, nil
}
