package hashing

import (
	"encoding/hex"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/frida-dev/frida-go/field"
)

func TestKeccak256KnownVector(t *testing.T) {
	h := Keccak256{}
	require.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(h.Hash()))
}

func TestHashersAreDeterministicAndDistinct(t *testing.T) {
	msg := []byte("data availability sample")
	for _, h := range []Hasher{Keccak256{}, Blake2b256{}} {
		digest := h.Hash(msg)
		require.Len(t, digest, h.Size())
		require.Equal(t, digest, h.Hash(msg))
	}
	require.NotEqual(t, Keccak256{}.Hash(msg), Blake2b256{}.Hash(msg))
}

func TestHashConcatenation(t *testing.T) {
	h := Blake2b256{}
	require.Equal(t, h.Hash([]byte("ab"), []byte("cd")), h.Hash([]byte("abcd")))
}

func TestHashElements(t *testing.T) {
	elems := make([]fr.Element, 3)
	for i := range elems {
		elems[i].SetUint64(uint64(i + 1))
	}
	h := Keccak256{}
	require.Equal(t, h.Hash(field.SliceToBytes(elems)), HashElements(h, elems))
}

func TestByName(t *testing.T) {
	for name, want := range map[string]string{
		"":           "keccak256",
		"keccak":     "keccak256",
		"keccak256":  "keccak256",
		"blake2b":    "blake2b256",
		"blake2b256": "blake2b256",
	} {
		h, err := ByName(name)
		require.NoError(t, err)
		require.Equal(t, want, h.Name())
	}

	_, err := ByName("sha3")
	require.Error(t, err)
}
