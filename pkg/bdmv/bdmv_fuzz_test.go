//go:build fuzz
// +build fuzz

package bdmv

import (
	"bytes"
	"testing"

	"github.com/ssargent/bdmeta/pkg/codec"
)

// FuzzDecode covers every file type reachable through Decode. Accepted input
// must re-encode unchanged.
func FuzzDecode(f *testing.F) {
	for _, file := range minimalFiles() {
		codec.Recompute(file)
		seed, err := codec.Encode(file)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(seed)
		f.Add(seed[:len(seed)/2])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := Decode(data)
		if err != nil {
			return
		}
		out, err := codec.Encode(file)
		if err != nil {
			t.Fatalf("Encode failed after successful decode: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("%s round trip mismatch", file.Kind())
		}
	})
}
