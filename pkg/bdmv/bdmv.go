// Package bdmv decodes any of the supported BDMV metadata files by looking
// at its type indicator.
package bdmv

import (
	"github.com/ssargent/bdmeta/pkg/clpi"
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/indx"
	"github.com/ssargent/bdmeta/pkg/mobj"
	"github.com/ssargent/bdmeta/pkg/mpls"
	"github.com/ssargent/bdmeta/pkg/store"
)

// File is a decoded metadata file: *mpls.Header, *clpi.Header,
// *mobj.Header or *indx.Header.
type File interface {
	codec.Record
	// Kind returns the 4-byte type indicator.
	Kind() string
}

var decoders = map[string]func([]byte) (File, error){
	mpls.TypeIndicator: func(b []byte) (File, error) { return mpls.Decode(b) },
	clpi.TypeIndicator: func(b []byte) (File, error) { return clpi.Decode(b) },
	mobj.TypeIndicator: func(b []byte) (File, error) { return mobj.Decode(b) },
	indx.TypeIndicator: func(b []byte) (File, error) { return indx.Decode(b) },
}

// Decode parses data with the decoder its type indicator selects.
func Decode(data []byte) (File, error) {
	if len(data) < 4 {
		return nil, codec.DecodeErrorf("bdmv", 0, "%d bytes is too short for a type indicator", len(data))
	}
	decode, ok := decoders[string(data[:4])]
	if !ok {
		return nil, codec.DecodeErrorf("bdmv", 0, "unknown type indicator %q", data[:4])
	}
	f, err := decode(data)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and decodes the file at path.
func Load(path string) (File, error) {
	data, err := store.Default.Load(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
