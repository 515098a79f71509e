package idcodec

import (
	"github.com/standardbeagle/edk2meta/internal/types"
)

// EncodeFileID encodes a FileID to a base-63 string.
func EncodeFileID(id types.FileID) string {
	return Encode(uint64(id))
}

// DecodeFileID decodes a base-63 string to a FileID.
func DecodeFileID(encoded string) (types.FileID, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	if value > uint64(^types.FileID(0)) {
		return 0, ErrOverflow
	}
	return types.FileID(value), nil
}
