package iccraw

import (
	"fmt"
	"io"
)

type DecodeMode uint8

const (
	DecodeFull DecodeMode = iota
	DecodeHeaderAndDirectory
	DecodeHeaderOnly
)

// DecodeOptions represents the decoding options passed to Decode
type DecodeOptions struct {
	// Mode determines how much of the profile to decode
	//
	// the default is DecodeFull - header, tag directory and all payloads
	//
	// DecodeHeaderAndDirectory stops after the tag directory,
	// DecodeHeaderOnly after the 128-byte header
	Mode DecodeMode
	// MaxTagCount, when non-zero, rejects profiles whose declared tag count
	// exceeds it. Zero (the default) accepts any declared count; truncation
	// is then detected by the directory read itself.
	MaxTagCount uint32
}

// Profile represents the contents of an ICC profile file: the fixed header,
// the tag directory in file order, and the raw payload bytes for each entry,
// index-aligned with Tags.
type Profile struct {
	Header   Header
	Tags     []TagEntry
	Payloads [][]byte
}

// Entry retrieves the first directory entry with the given signature.
func (p *Profile) Entry(signature string) (TagEntry, bool) {
	for _, e := range p.Tags {
		if e.Signature == signature {
			return e, true
		}
	}
	return TagEntry{}, false
}

// Payload retrieves the payload of the first directory entry with the given
// signature.
func (p *Profile) Payload(signature string) ([]byte, bool) {
	for i, e := range p.Tags {
		if e.Signature == signature && i < len(p.Payloads) {
			return p.Payloads[i], true
		}
	}
	return nil, false
}

// Decode reads an ICC profile from r in a single forward pass: the 128-byte
// header, the 4-byte tag count, count 12-byte directory records, then one
// payload per record. It never seeks and never reads past the last payload;
// r is not closed.
//
// Payloads are consumed sequentially in directory order from the current
// stream position. TagEntry.Offset is decoded but never used for
// addressing, so a profile whose payloads are stored out of directory order
// or non-contiguously decodes differently than offset-addressed reading per
// the ICC specification would.
//
// On any error no partial Profile is returned. A nil opts decodes fully
// with no tag count limit.
func Decode(r io.Reader, opts *DecodeOptions) (*Profile, error) {
	if opts == nil {
		opts = &DecodeOptions{Mode: DecodeFull}
	}
	result := &Profile{}
	var err error
	if result.Header, err = parseHeader(r); err == nil && opts.Mode < DecodeHeaderOnly {
		if result.Tags, err = parseTagDirectory(r, opts); err == nil && opts.Mode < DecodeHeaderAndDirectory {
			result.Payloads, err = readPayloads(r, result.Tags)
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// readPayloads consumes entry.Size bytes for each directory entry in order.
func readPayloads(r io.Reader, entries []TagEntry) ([][]byte, error) {
	// stream position is just past the directory
	offset := int64(HeaderSize + 4 + tagEntrySize*len(entries))
	payloads := make([][]byte, len(entries))
	for i, entry := range entries {
		buf := make([]byte, entry.Size)
		n, err := io.ReadFull(r, buf)
		if err != nil {
			return nil, &TruncatedError{
				Section: fmt.Sprintf("tag %q payload", entry.Signature),
				Offset:  offset,
				Need:    int(entry.Size),
				Got:     n,
			}
		}
		payloads[i] = buf
		offset += int64(entry.Size)
	}
	return payloads, nil
}
