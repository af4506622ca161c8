// Package hashing defines the hash functions the protocol commits and draws
// randomness with. All Merkle trees and transcripts are parameterized over
// the Hasher interface so the hash can be swapped without touching the
// protocol logic.
package hashing

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"

	"github.com/frida-dev/frida-go/field"
)

// Hasher is a deterministic collision-resistant hash over byte strings.
type Hasher interface {
	// Name identifies the hash inside serialized artifacts and CLI flags.
	Name() string
	// Size returns the digest length in bytes.
	Size() int
	// Hash digests the concatenation of the given byte slices.
	Hash(data ...[]byte) []byte
}

// HashElements digests a slice of field elements in canonical encoding.
func HashElements(h Hasher, elems []fr.Element) []byte {
	return h.Hash(field.SliceToBytes(elems))
}

// Keccak256 is the hash used by default; it matches the digest Ethereum
// contracts can recompute cheaply.
type Keccak256 struct{}

func (Keccak256) Name() string { return "keccak256" }

func (Keccak256) Size() int { return 32 }

func (Keccak256) Hash(data ...[]byte) []byte {
	return crypto.Keccak256(data...)
}

// Blake2b256 is a faster software alternative for off-chain verification.
type Blake2b256 struct{}

func (Blake2b256) Name() string { return "blake2b256" }

func (Blake2b256) Size() int { return 32 }

func (Blake2b256) Hash(data ...[]byte) []byte {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// ByName resolves a hash selector as used by the CLI.
func ByName(name string) (Hasher, error) {
	switch name {
	case "keccak256", "keccak", "":
		return Keccak256{}, nil
	case "blake2b256", "blake2b":
		return Blake2b256{}, nil
	default:
		return nil, fmt.Errorf("unknown hash function %q", name)
	}
}
