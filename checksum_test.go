package twelite

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	for _, c := range []struct {
		in  []byte
		sum byte
	}{
		{in: nil, sum: 0x00},
		{in: []byte{0x00}, sum: 0x00},
		{in: []byte{0x01}, sum: 0xFF},
		{in: []byte{0x80, 0x80}, sum: 0x00},
		{in: []byte{0x78, 0x80, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, sum: 0x0F},
	} {
		if got := Checksum(c.in); got != c.sum {
			t.Errorf("Checksum(% 02X) = %02X, want %02X", c.in, got, c.sum)
		}
	}
}

func TestChecksumZeroSum(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		bs := make([]byte, r.Intn(32))
		r.Read(bs)

		total := int(Checksum(bs))
		for _, b := range bs {
			total += int(b)
		}
		require.Zero(t, total%256, "% 02X", bs)
	}
}

func TestHexByte(t *testing.T) {
	testCases := []struct {
		in     int
		expect string
	}{
		{0, "00"},
		{11, "0B"},
		{0x7F, "7F"},
		{255, "FF"},
		{256, "00"},
		{4095, "FF"},
		{-1, "FF"},
	}
	for _, tc := range testCases {
		t.Run(strconv.Itoa(tc.in), func(t *testing.T) {
			require.Equal(t, tc.expect, HexByte(tc.in))
		})
	}
}

func TestHexByteReparse(t *testing.T) {
	for v := 0; v < 256; v++ {
		s := HexByte(v)
		parsed, err := strconv.ParseUint(s, 16, 8)
		require.NoError(t, err)
		require.Equal(t, s, HexByte(int(parsed)))
	}
}
