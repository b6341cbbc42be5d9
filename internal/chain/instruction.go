package chain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// AccountMeta describes one account an instruction reads or writes.
type AccountMeta struct {
	Address    pubkey.PublicKey `json:"address"`
	IsSigner   bool             `json:"is_signer"`
	IsWritable bool             `json:"is_writable"`
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID pubkey.PublicKey `json:"program_id"`
	Accounts  []AccountMeta    `json:"accounts"`
	Data      []byte           `json:"data"`
}

// MaxAccounts is the most accounts a message can describe; the count is encoded in one byte.
const MaxAccounts = math.MaxUint8

// Validate reports whether the instruction fits the message encoding.
func (ix Instruction) Validate() error {
	if len(ix.Accounts) > MaxAccounts {
		return fmt.Errorf("%w: %d accounts, max %d", ErrInstructionTooLarge, len(ix.Accounts), MaxAccounts)
	}
	if uint64(len(ix.Data)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d data bytes", ErrInstructionTooLarge, len(ix.Data))
	}
	return nil
}

// Writable returns the addresses of the accounts the instruction may write.
func (ix Instruction) Writable() []pubkey.PublicKey {
	out := make([]pubkey.PublicKey, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		if meta.IsWritable {
			out = append(out, meta.Address)
		}
	}
	return out
}

// Message is the byte string signers sign:
// program id | u8 account count | (address | u8 flags)* | u32 LE data length | data.
// Only instructions that pass Validate have a unique encoding.
func (ix Instruction) Message() []byte {
	buf := make([]byte, 0, pubkey.Size+1+len(ix.Accounts)*(pubkey.Size+1)+4+len(ix.Data))
	buf = append(buf, ix.ProgramID[:]...)
	buf = append(buf, byte(len(ix.Accounts)))
	for _, meta := range ix.Accounts {
		buf = append(buf, meta.Address[:]...)
		var flags byte
		if meta.IsSigner {
			flags |= 1
		}
		if meta.IsWritable {
			flags |= 2
		}
		buf = append(buf, flags)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Data)))
	return append(buf, ix.Data...)
}
