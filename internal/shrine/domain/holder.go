package domain

import (
	"sort"
	"strings"
)

// node is one entry in the secrets tree: exactly one of index and secret is
// non-nil. A node never holds both, enforcing the "a path segment is either
// an Index or a leaf, never both" invariant.
type node struct {
	index  *Index
	secret *Secret
}

func (n *node) isIndex() bool {
	return n.index != nil
}

func (n *node) isSecret() bool {
	return n.secret != nil
}

// Index is an interior node of the secrets tree: a string-keyed map of
// child nodes.
type Index struct {
	children map[string]*node
}

// NewIndex constructs an empty Index.
func NewIndex() *Index {
	return &Index{children: make(map[string]*node)}
}

// Holder is the hierarchical secret store: a path-keyed tree (the "secrets
// tree") plus a separate flat "private" map used for configuration. The
// private map is a distinct store, not a reserved prefix in the tree, so a
// path named ".foo" can never collide with a user path "foo".
type Holder struct {
	root    *Index
	private map[string]*Secret
}

// NewHolder constructs an empty Holder.
func NewHolder() *Holder {
	return &Holder{root: NewIndex(), private: make(map[string]*Secret)}
}

// splitPath splits a "/"-separated key into segments, validating that no
// segment is empty. The empty string splits into a single empty segment and
// is rejected the same way "a/" or "a//b" are.
func splitPath(key string) ([]string, error) {
	segments := strings.Split(key, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, &ErrEmptyKey{Parent: key}
		}
	}
	return segments, nil
}

// Set walks the "/"-separated segments of key, auto-creating missing Index
// nodes, and stores secret at the terminal segment. It fails if the walk
// encounters a leaf mid-path (ErrKeyIsASecret) or the terminal segment is
// already an Index (ErrKeyIsAnIndex).
func (h *Holder) Set(key string, secret Secret) error {
	segments, err := splitPath(key)
	if err != nil {
		return err
	}
	return setInIndex(h.root, segments, secret, "")
}

func setInIndex(idx *Index, segments []string, secret Secret, parentPath string) error {
	seg := segments[0]
	last := len(segments) == 1

	existing, ok := idx.children[seg]

	if last {
		switch {
		case ok && existing.isIndex():
			return &ErrKeyIsAnIndex{Key: seg, Parent: parentPath}
		case ok && existing.isSecret():
			existing.secret.Update(secret.Value, secret.Mode, secret.CreatedBy, secret.CreatedAt)
			return nil
		default:
			s := secret
			idx.children[seg] = &node{secret: &s}
			return nil
		}
	}

	childPath := parentPath + seg + "/"
	switch {
	case ok && existing.isSecret():
		return &ErrKeyIsASecret{Key: segments[1], Parent: childPath}
	case ok && existing.isIndex():
		return setInIndex(existing.index, segments[1:], secret, childPath)
	default:
		child := &node{index: NewIndex()}
		idx.children[seg] = child
		return setInIndex(child.index, segments[1:], secret, childPath)
	}
}

// Get resolves key to a leaf Secret. It fails if any intermediate segment is
// missing (ErrKeyNotFound) or the terminal segment is an Index
// (ErrKeyNotFound).
func (h *Holder) Get(key string) (*Secret, error) {
	segments, err := splitPath(key)
	if err != nil {
		return nil, err
	}
	return getInIndex(h.root, segments, key)
}

func getInIndex(idx *Index, segments []string, fullKey string) (*Secret, error) {
	seg := segments[0]
	child, ok := idx.children[seg]
	if !ok {
		return nil, &ErrKeyNotFound{Key: fullKey}
	}

	if len(segments) == 1 {
		if !child.isSecret() {
			return nil, &ErrKeyNotFound{Key: fullKey}
		}
		return child.secret, nil
	}

	if !child.isIndex() {
		return nil, &ErrKeyNotFound{Key: fullKey}
	}
	return getInIndex(child.index, segments[1:], fullKey)
}

// Remove deletes the leaf at key, if any. It returns true iff a leaf was
// removed; removing a path that resolves to an Index fails silently and
// returns false, as does removing a missing path.
func (h *Holder) Remove(key string) bool {
	segments, err := splitPath(key)
	if err != nil {
		return false
	}
	return removeInIndex(h.root, segments)
}

func removeInIndex(idx *Index, segments []string) bool {
	seg := segments[0]
	child, ok := idx.children[seg]
	if !ok {
		return false
	}

	if len(segments) == 1 {
		if !child.isSecret() {
			return false
		}
		child.secret.Scrub()
		delete(idx.children, seg)
		return true
	}

	if !child.isIndex() {
		return false
	}
	return removeInIndex(child.index, segments[1:])
}

// Keys returns every leaf's full path, lexicographically sorted.
func (h *Holder) Keys() []string {
	var keys []string
	collectKeys(h.root, "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(idx *Index, prefix string, out *[]string) {
	for seg, child := range idx.children {
		path := seg
		if prefix != "" {
			path = prefix + "/" + seg
		}
		if child.isSecret() {
			*out = append(*out, path)
		} else {
			collectKeys(child.index, path, out)
		}
	}
}

// SetPrivate stores secret under key in the flat private map. Unlike Set,
// key is not path-interpreted.
func (h *Holder) SetPrivate(key string, secret Secret) {
	if existing, ok := h.private[key]; ok {
		existing.Update(secret.Value, secret.Mode, secret.CreatedBy, secret.CreatedAt)
		return
	}
	s := secret
	h.private[key] = &s
}

// GetPrivate returns the private entry at key, or ErrKeyNotFound.
func (h *Holder) GetPrivate(key string) (*Secret, error) {
	s, ok := h.private[key]
	if !ok {
		return nil, &ErrKeyNotFound{Key: key}
	}
	return s, nil
}

// RemovePrivate deletes the private entry at key, returning true iff it
// existed.
func (h *Holder) RemovePrivate(key string) bool {
	s, ok := h.private[key]
	if !ok {
		return false
	}
	s.Scrub()
	delete(h.private, key)
	return true
}

// KeysPrivate returns every private key, lexicographically sorted.
func (h *Holder) KeysPrivate() []string {
	keys := make([]string, 0, len(h.private))
	for k := range h.private {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetSurface dispatches to Set or SetPrivate depending on whether key has a
// leading ".", matching the CLI's single-surface addressing scheme.
func (h *Holder) SetSurface(key string, secret Secret) error {
	if strings.HasPrefix(key, ".") {
		h.SetPrivate(strings.TrimPrefix(key, "."), secret)
		return nil
	}
	return h.Set(key, secret)
}

// GetSurface is the read-side counterpart of SetSurface.
func (h *Holder) GetSurface(key string) (*Secret, error) {
	if strings.HasPrefix(key, ".") {
		return h.GetPrivate(strings.TrimPrefix(key, "."))
	}
	return h.Get(key)
}

// Scrub zeroizes every secret value reachable from the holder, tree and
// private map alike.
func (h *Holder) Scrub() {
	scrubIndex(h.root)
	for _, s := range h.private {
		s.Scrub()
	}
}

func scrubIndex(idx *Index) {
	for _, child := range idx.children {
		if child.isSecret() {
			child.secret.Scrub()
		} else {
			scrubIndex(child.index)
		}
	}
}
