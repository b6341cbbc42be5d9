package chain

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// SignatureSize is the length of an ed25519 signature.
const SignatureSize = ed25519.SignatureSize

var (
	// ErrSignatureVerificationFailed is returned when a supplied signature does not verify.
	ErrSignatureVerificationFailed = errors.New("transaction signature verification failure")

	// ErrMissingInstruction is returned for a transaction without a program id.
	ErrMissingInstruction = errors.New("transaction has no instruction")

	// ErrInstructionTooLarge is returned when an instruction cannot be encoded into a message.
	ErrInstructionTooLarge = errors.New("instruction too large")
)

// SignatureBytes is an ed25519 signature rendered as base58 in JSON.
type SignatureBytes [SignatureSize]byte

func (s SignatureBytes) String() string {
	return base58.Encode(s[:])
}

func (s SignatureBytes) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SignatureBytes) UnmarshalText(text []byte) error {
	raw, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != SignatureSize {
		return fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(raw))
	}
	copy(s[:], raw)
	return nil
}

// Signature binds a signer to its signature over the instruction message.
type Signature struct {
	Signer    pubkey.PublicKey `json:"signer"`
	Signature SignatureBytes   `json:"signature"`
}

// Transaction is one instruction plus the signatures authorising it.
type Transaction struct {
	Instruction Instruction `json:"instruction"`
	Signatures  []Signature `json:"signatures"`
}

// NewTransaction wraps an instruction in an unsigned transaction.
func NewTransaction(ix Instruction) *Transaction {
	return &Transaction{Instruction: ix}
}

// Sign appends a signature by key over the instruction message.
func (t *Transaction) Sign(key ed25519.PrivateKey) error {
	if err := t.Instruction.Validate(); err != nil {
		return err
	}
	signer, err := pubkey.FromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	var sig SignatureBytes
	copy(sig[:], ed25519.Sign(key, t.Instruction.Message()))
	t.Signatures = append(t.Signatures, Signature{Signer: signer, Signature: sig})
	return nil
}

// ID returns the base58 form of the first signature, or "" for an unsigned transaction.
func (t *Transaction) ID() string {
	if len(t.Signatures) == 0 {
		return ""
	}
	return t.Signatures[0].Signature.String()
}

// VerifySignatures checks every signature and returns the set of signers that produced a valid
// one. A single bad signature rejects the transaction.
func (t *Transaction) VerifySignatures() (map[pubkey.PublicKey]bool, error) {
	if err := t.Instruction.Validate(); err != nil {
		return nil, err
	}
	msg := t.Instruction.Message()
	signers := make(map[pubkey.PublicKey]bool, len(t.Signatures))
	for _, sig := range t.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(sig.Signer[:]), msg, sig.Signature[:]) {
			return nil, fmt.Errorf("%w: signer %s", ErrSignatureVerificationFailed, sig.Signer)
		}
		signers[sig.Signer] = true
	}
	return signers, nil
}

// FeePayer returns the first signer when every signature verifies.
func (t *Transaction) FeePayer() (pubkey.PublicKey, bool) {
	if len(t.Signatures) == 0 {
		return pubkey.PublicKey{}, false
	}
	if _, err := t.VerifySignatures(); err != nil {
		return pubkey.PublicKey{}, false
	}
	return t.Signatures[0].Signer, true
}
