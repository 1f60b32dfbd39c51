package codec

import (
	"github.com/cockroachdb/errors"
	"github.com/nareix/joy4/utils/bits/pio"
)

func checkRange(op string, data []byte, offset, width int) error {
	switch width {
	case 1, 2, 4, 8:
	default:
		return IOError(op, errors.Newf("unsupported field width %d", width))
	}
	if offset < 0 || offset+width > len(data) {
		return IOError(op, errors.Newf("%d-byte field at offset %d outside %d-byte buffer", width, offset, len(data)))
	}
	return nil
}

// Uint reads a big-endian unsigned integer of width bytes at offset.
func Uint(data []byte, offset, width int) (uint64, error) {
	if err := checkRange("read", data, offset, width); err != nil {
		return 0, err
	}
	b := data[offset:]
	switch width {
	case 1:
		return uint64(pio.U8(b)), nil
	case 2:
		return uint64(pio.U16BE(b)), nil
	case 4:
		return uint64(pio.U32BE(b)), nil
	default:
		return pio.U64BE(b), nil
	}
}

// PutUint writes v as a big-endian unsigned integer of width bytes at offset.
// A value that does not fit in width bytes is rejected.
func PutUint(data []byte, offset, width int, v uint64) error {
	if err := checkRange("write", data, offset, width); err != nil {
		return err
	}
	if width < 8 && v>>(uint(width)*8) != 0 {
		return IOError("write", errors.Newf("value %d overflows %d-byte field", v, width))
	}
	b := data[offset:]
	switch width {
	case 1:
		pio.PutU8(b, uint8(v))
	case 2:
		pio.PutU16BE(b, uint16(v))
	case 4:
		pio.PutU32BE(b, uint32(v))
	default:
		pio.PutU64BE(b, v)
	}
	return nil
}
