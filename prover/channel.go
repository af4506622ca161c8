package prover

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/frida-dev/frida-go/hashing"
	"github.com/frida-dev/frida-go/transcript"
)

// channel accumulates layer commitments and drives the transcript the
// verifier will replay.
type channel struct {
	coin       *transcript.Coin
	roots      [][]byte
	domainSize int
	numQueries int
}

func newChannel(hasher hashing.Hasher, domainSize, numQueries int) *channel {
	return &channel{
		coin:       transcript.New(hasher),
		domainSize: domainSize,
		numQueries: numQueries,
	}
}

func (c *channel) commitLayer(root []byte) {
	c.roots = append(c.roots, root)
	c.coin.Reseed(root)
}

func (c *channel) drawAlpha() (fr.Element, error) {
	return c.coin.Draw()
}

func (c *channel) drawXi(count int) ([]fr.Element, error) {
	return c.coin.DrawXi(count)
}

func (c *channel) drawQueryPositions() ([]uint64, error) {
	return c.coin.DrawQueryPositions(c.numQueries, c.domainSize)
}
