package idcodec

import (
	"github.com/standardbeagle/edk2meta/internal/encoding"
	"github.com/standardbeagle/edk2meta/internal/types"
)

// PackComposite/UnpackComposite give a binary-packed (FileID, local
// counter) pair, distinct from types.RecordID's own decimal block packing
// (file*IDBlockSize + local). The two encodings serve different purposes:
// RecordID's packing keeps every included file's ids in a contiguous,
// human-inspectable decimal range; this package's packing puts the FileID
// in the low 32 bits and the local counter in the high 32 bits, and its
// base-63 form is the token used for CLI/log display.
func PackComposite(fileID types.FileID, local uint32) uint64 {
	return encoding.PackUint32Pair(uint32(fileID), local)
}

// UnpackComposite is the inverse of PackComposite.
func UnpackComposite(packed uint64) (types.FileID, uint32) {
	lower, upper := encoding.UnpackUint32Pair(packed)
	return types.FileID(lower), upper
}

// EncodeRecordID renders a RecordID as a short base-63 token suitable for
// CLI/log display, e.g. "query --id BaZ9". The token round-trips through
// DecodeRecordID back to the same RecordID.
func EncodeRecordID(id types.RecordID) string {
	packed := PackComposite(id.File(), uint32(id.Local()))
	return EncodeNoZero(packed)
}

// DecodeRecordID parses a token produced by EncodeRecordID back into a
// RecordID.
func DecodeRecordID(encoded string) (types.RecordID, error) {
	if encoded == "" {
		return types.InvalidID, ErrEmptyString
	}
	packed, err := Decode(encoded)
	if err != nil {
		return types.InvalidID, err
	}
	file, local := UnpackComposite(packed)
	return types.NewRecordID(file, int64(local)), nil
}
