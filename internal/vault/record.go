package vault

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

const (
	// DiscriminatorSize is the width of the type tag at the head of every record.
	DiscriminatorSize = 8
	// RecordSize is the fixed on-ledger size of a record.
	RecordSize = DiscriminatorSize + pubkey.Size + 8 + 8

	ownerOffset     = DiscriminatorSize
	createdAtOffset = ownerOffset + pubkey.Size
	valueOffset     = createdAtOffset + 8
)

var recordDiscriminator = discriminator("account:VaultData")

// Record is the persisted vault state.
type Record struct {
	Owner     pubkey.PublicKey
	CreatedAt int64
	Value     uint64
}

// MarshalBinary encodes the record with its type tag, little-endian.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	copy(buf, recordDiscriminator[:])
	copy(buf[ownerOffset:], r.Owner[:])
	binary.LittleEndian.PutUint64(buf[createdAtOffset:], uint64(r.CreatedAt))
	binary.LittleEndian.PutUint64(buf[valueOffset:], r.Value)
	return buf, nil
}

// UnmarshalBinary decodes a record, rejecting foreign type tags.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < DiscriminatorSize {
		return ErrAccountDidNotDeserialize
	}
	if [DiscriminatorSize]byte(data[:DiscriminatorSize]) != recordDiscriminator {
		return ErrAccountDiscriminatorMismatch
	}
	if len(data) != RecordSize {
		return ErrAccountDidNotDeserialize
	}
	copy(r.Owner[:], data[ownerOffset:createdAtOffset])
	r.CreatedAt = int64(binary.LittleEndian.Uint64(data[createdAtOffset:]))
	r.Value = binary.LittleEndian.Uint64(data[valueOffset:])
	return nil
}

func discriminator(name string) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte(name))
	var out [DiscriminatorSize]byte
	copy(out[:], sum[:DiscriminatorSize])
	return out
}
