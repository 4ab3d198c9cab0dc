package domain

import "time"

// SecretSnapshot is the serializer-facing shape of a Secret: a plain
// struct with struct tags so every member of the serializer set (BSON,
// JSON, MessagePack) can marshal it without reaching into Holder
// internals. Value is carried as base64 text, matching the secret-bytes
// wire contract.
type SecretSnapshot struct {
	Value     string     `bson:"value" json:"value" msgpack:"value"`
	Mode      int        `bson:"mode" json:"mode" msgpack:"mode"`
	CreatedBy string     `bson:"created_by" json:"created_by" msgpack:"created_by"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at" msgpack:"created_at"`
	UpdatedBy *string    `bson:"updated_by,omitempty" json:"updated_by,omitempty" msgpack:"updated_by,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty" msgpack:"updated_at,omitempty"`
}

func snapshotOfSecret(s *Secret) SecretSnapshot {
	return SecretSnapshot{
		Value:     s.Value.Base64(),
		Mode:      int(s.Mode),
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedBy: s.UpdatedBy,
		UpdatedAt: s.UpdatedAt,
	}
}

func secretFromSnapshot(s SecretSnapshot) (Secret, error) {
	value, err := SecretBytesFromBase64(s.Value)
	if err != nil {
		return Secret{}, err
	}
	return Secret{
		Value:     value,
		Mode:      Mode(s.Mode),
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedBy: s.UpdatedBy,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

// IndexSnapshot is the serializer-facing shape of an Index node.
type IndexSnapshot struct {
	Secrets map[string]SecretSnapshot `bson:"secrets" json:"secrets" msgpack:"secrets"`
	Indices map[string]IndexSnapshot  `bson:"indices" json:"indices" msgpack:"indices"`
}

func snapshotOfIndex(idx *Index) IndexSnapshot {
	snap := IndexSnapshot{
		Secrets: make(map[string]SecretSnapshot),
		Indices: make(map[string]IndexSnapshot),
	}
	for key, child := range idx.children {
		if child.isSecret() {
			snap.Secrets[key] = snapshotOfSecret(child.secret)
		} else {
			snap.Indices[key] = snapshotOfIndex(child.index)
		}
	}
	return snap
}

func indexFromSnapshot(snap IndexSnapshot) (*Index, error) {
	idx := NewIndex()
	for key, s := range snap.Secrets {
		secret, err := secretFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		idx.children[key] = &node{secret: &secret}
	}
	for key, s := range snap.Indices {
		child, err := indexFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		idx.children[key] = &node{index: child}
	}
	return idx, nil
}

// HolderSnapshot is the serializer-facing shape of a whole Holder: the
// secrets tree and the private map, both flattened into plain,
// tag-annotated structs. It is the type every serializer in the set
// actually marshals and unmarshals.
type HolderSnapshot struct {
	Root    IndexSnapshot             `bson:"root" json:"root" msgpack:"root"`
	Private map[string]SecretSnapshot `bson:"private" json:"private" msgpack:"private"`
}

// Export produces a HolderSnapshot suitable for marshalling. It copies
// every secret's base64 value; the original holder is unaffected.
func (h *Holder) Export() (HolderSnapshot, error) {
	private := make(map[string]SecretSnapshot, len(h.private))
	for key, s := range h.private {
		private[key] = snapshotOfSecret(s)
	}
	return HolderSnapshot{
		Root:    snapshotOfIndex(h.root),
		Private: private,
	}, nil
}

// ImportHolder rebuilds a Holder from a HolderSnapshot produced by Export.
func ImportHolder(snap HolderSnapshot) (*Holder, error) {
	root, err := indexFromSnapshot(snap.Root)
	if err != nil {
		return nil, err
	}
	private := make(map[string]*Secret, len(snap.Private))
	for key, s := range snap.Private {
		secret, err := secretFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		sCopy := secret
		private[key] = &sCopy
	}
	return &Holder{root: root, private: private}, nil
}
