package twelite

const hexDigits = "0123456789ABCDEF"

// Checksum returns the two's complement of the byte sum, so that the sum
// of bs and its checksum is 0 mod 256.
func Checksum(bs []byte) byte {
	var sum byte
	for _, b := range bs {
		sum += b
	}

	return -sum
}

// HexByte renders v modulo 256 as two upper-case hex digits.
func HexByte(v int) string {
	b := byte(v & 0xFF)
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}
