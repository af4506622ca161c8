// Package transcript implements the public coin both protocol sides derive
// their randomness from. The coin is reseeded with every commitment root in
// order, so prover and verifier observing the same roots draw the same
// challenges.
package transcript

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
)

// Coin is a hash-chained public coin. Reseeding advances the state; all draw
// operations are pure functions of the current state and leave it untouched.
type Coin struct {
	hasher  hashing.Hasher
	state   []byte
	counter uint64
}

// New returns a coin over the protocol's fixed initial seed.
func New(hasher hashing.Hasher) *Coin {
	return &Coin{hasher: hasher, state: []byte{123}}
}

// Reseed mixes a commitment root into the coin state.
func (c *Coin) Reseed(root []byte) {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], c.counter)
	c.state = c.hasher.Hash(root, c.state, ctr[:])
	c.counter++
}

// Draw derives a field element from the current state. It does not advance
// the coin; distinct challenges come from reseeding between draws.
func (c *Coin) Draw() (fr.Element, error) {
	if len(c.state) < field.ElementBytes {
		return fr.Element{}, frida.ErrDraw
	}
	digest := c.hasher.Hash(c.state[:field.ElementBytes])
	return field.FromRandomBytes(digest)
}

// DrawQueryPositions derives numQueries positions inside the evaluation
// domain. Positions may repeat; only consecutive duplicates are collapsed,
// matching the committed transcript layout.
func (c *Coin) DrawQueryPositions(numQueries, domainSize int) ([]uint64, error) {
	if domainSize < frida.MinDomainSize || bits.OnesCount(uint(domainSize)) != 1 {
		return nil, fmt.Errorf("transcript: invalid domain size %d", domainSize)
	}
	if numQueries >= domainSize {
		return nil, fmt.Errorf("transcript: %d queries do not fit a domain of size %d", numQueries, domainSize)
	}
	mask := uint64(domainSize - 1)
	positions := make([]uint64, 0, numQueries)
	for i := 0; i < numQueries; i++ {
		var idx [8]byte
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		digest := c.hasher.Hash(c.state, idx[:])
		pos := binary.BigEndian.Uint64(digest[:8]) & mask
		if len(positions) > 0 && positions[len(positions)-1] == pos {
			continue
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// DrawXi derives the linear combination challenges for a batch of count
// polynomials.
func (c *Coin) DrawXi(count int) ([]fr.Element, error) {
	values := make([]fr.Element, count)
	for i := 0; i < count; i++ {
		var idx [8]byte
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		digest := c.hasher.Hash(c.state, idx[:])
		e, err := field.FromRandomBytes(digest)
		if err != nil {
			return nil, err
		}
		values[i] = e
	}
	return values, nil
}
