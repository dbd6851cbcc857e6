package iccraw

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TagEntry is one 12-byte record from the tag directory.
type TagEntry struct {
	Signature string // 4-byte tag signature, e.g. "desc", "vcgt"
	Offset    uint32 // declared offset from the beginning of the file
	Size      uint32 // size of the tag payload in bytes
}

const tagEntrySize = 12

// parseTagDirectory reads the 4-byte entry count followed by count 12-byte
// records, in file order. Records are read one at a time so a hostile count
// fails on the first missing record instead of up-front allocation.
func parseTagDirectory(r io.Reader, opts *DecodeOptions) ([]TagEntry, error) {
	var countBuf [4]byte
	n, err := io.ReadFull(r, countBuf[:])
	if err != nil {
		return nil, &TruncatedError{Section: "tag count", Offset: HeaderSize, Need: 4, Got: n}
	}
	count := binary.BigEndian.Uint32(countBuf[:])
	if opts.MaxTagCount > 0 && count > opts.MaxTagCount {
		return nil, fmt.Errorf("tag count %d exceeds max allowed (%d)", count, opts.MaxTagCount)
	}
	capacity := int(count)
	if capacity > 1024 {
		capacity = 1024
	}
	entries := make([]TagEntry, 0, capacity)
	offset := int64(HeaderSize + 4)
	var rec [tagEntrySize]byte
	for i := uint32(0); i < count; i++ {
		if n, err = io.ReadFull(r, rec[:]); err != nil {
			return nil, &TruncatedError{
				Section: fmt.Sprintf("tag directory entry %d", i),
				Offset:  offset,
				Need:    tagEntrySize,
				Got:     n,
			}
		}
		entries = append(entries, TagEntry{
			Signature: stringed(string(rec[0:4])),
			Offset:    binary.BigEndian.Uint32(rec[4:8]),
			Size:      binary.BigEndian.Uint32(rec[8:12]),
		})
		offset += tagEntrySize
	}
	return entries, nil
}

// Long-form names for the well-known tag signatures. Presentation only;
// signatures absent from this table are shown in their raw 4-byte form.
var tagNames = map[string]string{
	"desc": "descriptionTag",
	"cprt": "copyrightTag",
	"dmnd": "deviceMfgDescTag",
	"dmdd": "deviceModelDescTag",
	"vcgt": "videoCardGammaTableTag",
	"rXYZ": "redPrimaryXYZData",
	"gXYZ": "greenPrimaryXYZData",
	"bXYZ": "bluePrimaryXYZData",
	"rTRC": "redTRCTag",
	"gTRC": "greenTRCTag",
	"bTRC": "blueTRCTag",
	"wtpt": "mediaWhitePointTag",
}

// TagName returns the long-form name for a tag signature, or the signature
// itself when it has no well-known name.
func TagName(signature string) string {
	if name, ok := tagNames[signature]; ok {
		return name
	}
	return signature
}
