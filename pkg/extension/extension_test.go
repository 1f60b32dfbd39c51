package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bdmeta/pkg/codec"
)

func TestData_Empty(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00}

	var d Data
	require.NoError(t, codec.Decode(data, &d))
	assert.Equal(t, 0, d.DisplaySize())
	assert.Equal(t, 4, d.Len())
}

func TestData_IndexWithoutEntries(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x0A, // Length
		0x00, 0x00, 0x00, 0x10, // DataBlockStartAddress
		0x00, 0x00, 0x00, // reserved
		0x00,       // NumberOfEntries
		0x00, 0x00, // trailing
	}

	var d Data
	require.NoError(t, codec.Decode(data, &d))
	assert.Equal(t, uint32(0x10), d.DataBlockStartAddress)
	assert.Len(t, d.Trailing, 2)
}

func TestData_EntriesUnsupported(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x14,
		0x00, 0x00, 0x00, 0x18,
		0x00, 0x00, 0x00,
		0x01,
		0x00, 0x02, 0x00, 0x01, 0x00, 0x00, 0x00, 0x18, 0x00, 0x00, 0x00, 0x04,
	}

	var d Data
	err := codec.Decode(data, &d)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrUnsupported)

	_, err = codec.Encode(&Data{Length: 20, NumberOfEntries: 1, Entries: []Entry{{ID1: 2, ID2: 1}}})
	assert.ErrorIs(t, err, codec.ErrUnsupported)
}
