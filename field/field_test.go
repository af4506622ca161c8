package field

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/frida-dev/frida-go/frida"
)

func TestBytesRoundTrip(t *testing.T) {
	var e fr.Element
	_, err := e.SetRandom()
	require.NoError(t, err)

	b := ToBytes(&e)
	got, err := FromBytes(b[:])
	require.NoError(t, err)
	require.True(t, got.Equal(&e))
}

func TestFromBytesTooShort(t *testing.T) {
	_, err := FromBytes(make([]byte, ElementBytes-1))
	require.ErrorIs(t, err, frida.ErrDataTooShort)
}

func TestSliceRoundTrip(t *testing.T) {
	elems := make([]fr.Element, 5)
	for i := range elems {
		elems[i].SetUint64(uint64(i * 7))
	}

	buf := SliceToBytes(elems)
	require.Len(t, buf, 5*ElementBytes)

	got, err := SliceFromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, elems, got)

	_, err = SliceFromBytes(buf[1:])
	require.ErrorIs(t, err, frida.ErrDataTooShort)
}

func TestFromRandomBytesIgnoresTail(t *testing.T) {
	digest := make([]byte, 32)
	for i := range digest {
		digest[i] = byte(i + 1)
	}
	a, err := FromRandomBytes(digest)
	require.NoError(t, err)

	digest[31] ^= 0xff
	b, err := FromRandomBytes(digest)
	require.NoError(t, err)

	// only the first PayloadBytes bytes feed the element
	require.True(t, a.Equal(&b))

	digest[0] ^= 0xff
	c, err := FromRandomBytes(digest)
	require.NoError(t, err)
	require.False(t, a.Equal(&c))
}

func TestFromRandomBytesTooShort(t *testing.T) {
	_, err := FromRandomBytes(make([]byte, PayloadBytes-1))
	require.ErrorIs(t, err, frida.ErrDraw)
}
