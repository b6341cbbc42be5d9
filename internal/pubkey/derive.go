package pubkey

import (
	"crypto/sha256"
	"errors"
	"math"
)

const (
	// MaxSeedLength is the longest single seed accepted for address derivation.
	MaxSeedLength = 32
	// MaxSeeds bounds the number of seeds, including the bump.
	MaxSeeds = 16

	programAddressMarker = "ProgramDerivedAddress"
)

var (
	// ErrMaxSeedLengthExceeded is returned when a seed is too long or there are too many seeds.
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidSeeds is returned when the seeds hash to a point on the ed25519 curve.
	ErrInvalidSeeds = errors.New("provided seeds do not result in a valid address")

	// ErrAddressDerivationExhausted is returned when no bump in [1, 255] yields an off-curve
	// address. Callers must surface it rather than retry with different seeds.
	ErrAddressDerivationExhausted = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress hashes the seeds together with the owning program id and returns the
// result only when it is off the ed25519 curve.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, ErrMaxSeedLengthExceeded
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, ErrMaxSeedLengthExceeded
		}
	}

	h := sha256.New()
	for _, seed := range seeds {
		_, _ = h.Write(seed)
	}
	_, _ = h.Write(programID[:])
	_, _ = h.Write([]byte(programAddressMarker))

	var addr PublicKey
	copy(addr[:], h.Sum(nil))
	if addr.IsOnCurve() {
		return PublicKey{}, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 downward and returns the first off-curve
// address together with its bump. The result is canonical for the given seeds.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return PublicKey{}, 0, err
		}
	}
	return PublicKey{}, 0, ErrAddressDerivationExhausted
}
