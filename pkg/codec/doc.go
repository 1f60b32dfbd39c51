// Package codec provides the record framework shared by the BDMV metadata
// formats (MPLS, CLPI, MOBJ and INDX).
//
// Every structured block of those files is a Record: a Go struct whose
// fields follow the on-disc order, including reserved fields, so that a
// decoded tree re-encodes to the exact input bytes.
//
// # Field Encoding
//
// All integers are big-endian and unsigned. Uint and PutUint access a field
// of 1, 2, 4 or 8 bytes at an explicit offset; Reader and Writer walk a
// buffer sequentially on top of them. Character fields (clip names, codec
// identifiers, language codes) are fixed-width byte runs.
//
// Flag words are split into bit groups most significant group first:
//
//	r := codec.NewBitReader(uint64(word), 16)
//	reserved := r.Get(11)
//	multiAngle := r.Flag()
//	connection := r.Get(4)
//
// BitWriter packs groups back in the same order and rejects values wider
// than their group.
//
// # Length Fields
//
// Most blocks start with a Length field holding the display size: the
// encoded size of the block without the length field itself. Records that
// carry one implement Sized. Start addresses in file headers point at the
// length field of the next block, so each address equals the previous
// address plus the previous display size plus the width of its length field.
//
// # Lifecycle
//
// A tree is Decoded after Decode and Canonical after Recompute. Recompute
// walks post-order: children first, then the record's own counts and
// addresses (Updater), then its Length. Validate checks the same invariants
// without changing anything and Encode refuses a tree that fails them.
// Edits made after Recompute must be followed by another Recompute.
//
//	var h mpls.Header
//	if err := codec.Decode(data, &h); err != nil {
//	    return err
//	}
//	// edit h
//	codec.Recompute(&h)
//	out, err := codec.Encode(&h)
//
// Decode re-encodes the tree it just built and fails if the bytes differ,
// so a successful decode is always lossless.
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind. Use errors.Is with the
// sentinel values (ErrDecode, ErrValidation, ErrUnknownOpcode,
// ErrUnsupported, ErrDestinationExists, ErrIO) to classify a failure; they
// match through any amount of wrapping.
//
// # Thread Safety
//
// Records are plain values with no internal locking. A tree must not be
// mutated while another goroutine encodes it.
package codec
