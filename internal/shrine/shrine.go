// Package shrine implements the shrine state machine (C7): Closed ↔ Open
// transitions, password binding, and persistence, built on top of the
// domain, crypto, serialize, and format packages.
package shrine

import (
	"os"

	"github.com/google/uuid"

	"github.com/allisson/shrine/internal/shrine/crypto"
	"github.com/allisson/shrine/internal/shrine/domain"
	"github.com/allisson/shrine/internal/shrine/format"
	"github.com/allisson/shrine/internal/shrine/serialize"
)

// ClosedShrine is the on-disk form of a shrine: payload is opaque bytes,
// either the serialized holder (Plain) or its ciphertext (AES).
type ClosedShrine struct {
	version       byte
	uuid          uuid.UUID
	encryption    crypto.Algorithm
	serialization serialize.Format
	payload       []byte
}

// IsLegacy reports whether this shrine was read from a version-0
// container. Legacy shrines are fully readable but refuse to be written
// back (WriteTo returns *domain.ErrUnsupportedOldFormat); callers must run
// them through `convert` first.
func (c *ClosedShrine) IsLegacy() bool {
	return c.version != format.CurrentVersion
}

// UUID returns the shrine's stable identity.
func (c *ClosedShrine) UUID() uuid.UUID {
	return c.uuid
}

// Encryption returns the bound cipher algorithm.
func (c *ClosedShrine) Encryption() crypto.Algorithm {
	return c.encryption
}

// Serialization returns the bound serialization format.
func (c *ClosedShrine) Serialization() serialize.Format {
	return c.serialization
}

// New constructs a brand-new, empty shrine in Closed form: a fresh UUID,
// the requested encryption and serialization algorithms, an empty holder,
// already closed. This is the core of the `init` command.
func New(encryption crypto.Algorithm, serialization serialize.Format, password *domain.Password) (*ClosedShrine, error) {
	open := &OpenShrine{
		version:       format.CurrentVersion,
		uuid:          uuid.New(),
		encryption:    encryption,
		serialization: serialization,
		holder:        domain.NewHolder(),
	}
	if password != nil {
		p := domain.NewPassword(password.String())
		open.password = &p
	}
	return open.Close()
}

// TryFromBytes parses a Closed shrine from raw container bytes (the
// contents of a `shrine` file).
func TryFromBytes(data []byte) (*ClosedShrine, error) {
	c, err := format.Read(data)
	if err != nil {
		return nil, err
	}
	return &ClosedShrine{
		version:       c.Version,
		uuid:          c.UUID,
		encryption:    c.Encryption,
		serialization: c.Serializer,
		payload:       c.Payload,
	}, nil
}

// TryFromPath reads and parses a shrine file from disk.
func TryFromPath(path string) (*ClosedShrine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.ErrFileNotFound{Path: path}
		}
		return nil, &domain.ErrIO{Path: path, Write: false, Err: err}
	}
	return TryFromBytes(data)
}

// Open decrypts and deserializes the shrine into its Open form. password
// must be supplied when Encryption() is crypto.AlgorithmAES; it is ignored
// otherwise. A wrong password, or any authentication failure, surfaces as
// *domain.ErrCryptoRead with no partial state materializing.
func (c *ClosedShrine) Open(password *domain.Password) (*OpenShrine, error) {
	cipher, err := crypto.New(c.encryption, password)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(c.payload)
	if err != nil {
		return nil, err
	}
	defer domain.Zero(plaintext)

	ser, err := serialize.New(c.serialization)
	if err != nil {
		return nil, err
	}

	holder, err := ser.Deserialize(plaintext)
	if err != nil {
		return nil, err
	}

	open := &OpenShrine{
		version:       c.version,
		uuid:          c.uuid,
		encryption:    c.encryption,
		serialization: c.serialization,
		holder:        holder,
	}
	if c.encryption == crypto.AlgorithmAES && password != nil {
		p := domain.NewPassword(password.String())
		open.password = &p
	}
	return open, nil
}

// WriteTo persists the closed shrine's bytes to path, overwriting any
// existing file. Refuses to write a legacy (version-0) shrine; run
// `convert` first.
func (c *ClosedShrine) WriteTo(path string) error {
	if c.IsLegacy() {
		return &domain.ErrUnsupportedOldFormat{Version: c.version}
	}
	container := &format.Container{
		Version:    format.CurrentVersion,
		UUID:       c.uuid,
		Encryption: c.encryption,
		Serializer: c.serialization,
		Payload:    c.payload,
	}
	data := format.Write(container)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return &domain.ErrIO{Path: path, Write: true, Err: err}
	}
	return nil
}

// OpenShrine is the in-memory form of a shrine: payload is a live Holder.
// version is carried through Open/Close unchanged so a legacy container
// stays read-only even across an open/mutate/close cycle; only the
// IntoAES/IntoClear conversion transitions upgrade it.
type OpenShrine struct {
	version       byte
	uuid          uuid.UUID
	encryption    crypto.Algorithm
	serialization serialize.Format
	holder        *domain.Holder
	password      *domain.Password
}

// UUID returns the shrine's stable identity.
func (o *OpenShrine) UUID() uuid.UUID {
	return o.uuid
}

// Encryption returns the bound cipher algorithm.
func (o *OpenShrine) Encryption() crypto.Algorithm {
	return o.encryption
}

// Serialization returns the bound serialization format.
func (o *OpenShrine) Serialization() serialize.Format {
	return o.serialization
}

// Holder exposes the live holder for read access.
func (o *OpenShrine) Holder() *domain.Holder {
	return o.holder
}

// Set routes to the holder's Set or SetPrivate depending on whether key has
// a leading ".".
func (o *OpenShrine) Set(key string, secret domain.Secret) error {
	return o.holder.SetSurface(key, secret)
}

// Get is the read-side counterpart of Set.
func (o *OpenShrine) Get(key string) (*domain.Secret, error) {
	return o.holder.GetSurface(key)
}

// Remove deletes the leaf at key (tree only; private entries are managed
// through the `config` command, not `rm`).
func (o *OpenShrine) Remove(key string) bool {
	return o.holder.Remove(key)
}

// Keys lists every leaf path in the tree.
func (o *OpenShrine) Keys() []string {
	return o.holder.Keys()
}

// Close re-serializes and re-encrypts the holder, producing a persistable
// ClosedShrine. Closing an AES-encrypted Open shrine with no bound password
// is an error (*domain.ErrInvalidPassword), checked explicitly at the one
// call site where it could otherwise lose data silently.
func (o *OpenShrine) Close() (*ClosedShrine, error) {
	if o.encryption == crypto.AlgorithmAES && o.password == nil {
		return nil, &domain.ErrInvalidPassword{}
	}

	ser, err := serialize.New(o.serialization)
	if err != nil {
		return nil, err
	}
	plaintext, err := ser.Serialize(o.holder)
	if err != nil {
		return nil, err
	}
	defer domain.Zero(plaintext)

	cipher, err := crypto.New(o.encryption, o.password)
	if err != nil {
		return nil, err
	}
	payload, err := cipher.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	return &ClosedShrine{
		version:       o.version,
		uuid:          o.uuid,
		encryption:    o.encryption,
		serialization: o.serialization,
		payload:       payload,
	}, nil
}

// IntoAES switches the shrine into AES encryption, binding password (which
// may be nil; a subsequent Close without a bound password fails with
// *domain.ErrInvalidPassword). Conversion is the explicit upgrade path for
// legacy containers, so the version is bumped to current here.
func (o *OpenShrine) IntoAES(password *domain.Password) {
	o.version = format.CurrentVersion
	o.encryption = crypto.AlgorithmAES
	if password == nil {
		o.password = nil
		return
	}
	p := domain.NewPassword(password.String())
	o.password = &p
}

// IntoClear switches the shrine into plaintext, unbinding any password.
// Like IntoAES, it upgrades a legacy container to the current version.
func (o *OpenShrine) IntoClear() {
	if o.password != nil {
		o.password.Scrub()
	}
	o.version = format.CurrentVersion
	o.encryption = crypto.AlgorithmPlain
	o.password = nil
}

// Scrub zeroizes every secret reachable from the open shrine, including the
// bound password.
func (o *OpenShrine) Scrub() {
	o.holder.Scrub()
	if o.password != nil {
		o.password.Scrub()
	}
}
