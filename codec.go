package gbwt

// AppendVByte appends value to buf using the VByte encoding: each byte
// carries 7 payload bits in its low bits, little-endian group order,
// with the high bit set on every byte but the last to mark
// continuation.
func AppendVByte(buf []byte, value uint64) []byte {
	for value > 0x7F {
		buf = append(buf, byte(value&0x7F)|0x80)
		value >>= 7
	}
	return append(buf, byte(value))
}

// ReadVByte decodes a VByte-encoded value from data starting at pos,
// returning the value and the position just past it.
func ReadVByte(data []byte, pos int) (uint64, int) {
	var value uint64
	var shift uint
	for {
		b := data[pos]
		pos++
		value |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return value, pos
}

// sizeVByte returns the number of bytes AppendVByte would emit for
// value, without writing anything.
func sizeVByte(value uint64) int {
	n := 1
	for value > 0x7F {
		value >>= 7
		n++
	}
	return n
}

// runThreshold returns 256/sigma using integer division, the
// breakpoint between a run encoded in a single byte and one that
// spills into a trailing VByte. sigma is a node's outdegree and must
// be in [1, 256] for the single-byte symbol field to be representable.
func runThreshold(sigma int) int {
	return 256 / sigma
}

// AppendRun appends run to buf using the alphabet-aware run encoding:
// for sigma == 1 the symbol is implicit and only length-1 is written;
// otherwise a single byte packs the symbol with a short length, or the
// symbol with a capped length followed by a VByte continuation for
// longer runs.
func AppendRun(buf []byte, sigma int, run Run) []byte {
	if sigma == 1 {
		return AppendVByte(buf, run.Length-1)
	}
	threshold := runThreshold(sigma)
	if int(run.Length) < threshold {
		return append(buf, byte(int(run.Rank)+sigma*(int(run.Length)-1)))
	}
	buf = append(buf, byte(int(run.Rank)+sigma*(threshold-1)))
	return AppendVByte(buf, run.Length-uint64(threshold))
}

// ReadRun decodes a single run from data starting at pos for a record
// with the given alphabet size sigma, returning the run and the
// position just past it.
func ReadRun(data []byte, pos int, sigma int) (Run, int) {
	if sigma == 1 {
		length, next := ReadVByte(data, pos)
		return Run{Rank: 0, Length: length + 1}, next
	}
	threshold := runThreshold(sigma)
	b := int(data[pos])
	pos++
	rank := b % sigma
	packedLen := b / sigma
	if packedLen == threshold-1 {
		extra, next := ReadVByte(data, pos)
		return Run{Rank: uint32(rank), Length: uint64(threshold) + extra}, next
	}
	return Run{Rank: uint32(rank), Length: uint64(packedLen) + 1}, pos
}

// sizeRun returns the number of bytes AppendRun would emit for run
// under alphabet size sigma.
func sizeRun(sigma int, run Run) int {
	if sigma == 1 {
		return sizeVByte(run.Length - 1)
	}
	threshold := runThreshold(sigma)
	if int(run.Length) < threshold {
		return 1
	}
	return 1 + sizeVByte(run.Length-uint64(threshold))
}
