package iccraw

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	bst "github.com/mixcode/binarystruct"
)

// ErrNoProfile reports that an image container held no embedded ICC profile.
var ErrNoProfile = errors.New("no ICC profile found")

// ExtractFromPNG extracts and decodes the ICC profile embedded in a PNG
// iCCP chunk. The reader is consumed sequentially, never seeked.
func ExtractFromPNG(r io.Reader, opts *DecodeOptions) (*Profile, error) {
	var pngSignature = []byte{137, 80, 78, 71, 13, 10, 26, 10}
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("failed to read PNG signature: %w", err)
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errors.New("not a valid PNG file")
	}
	for {
		var chunk struct {
			Length uint32
			Type   string `binary:"[4]byte"`
		}
		if _, err := bst.Read(r, bst.BigEndian, &chunk); err != nil {
			return nil, fmt.Errorf("failed to read PNG chunk header: %w", err)
		}
		data := make([]byte, chunk.Length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("failed to read PNG chunk %q: %w", chunk.Type, err)
		}
		if _, err := io.CopyN(io.Discard, r, 4); err != nil {
			return nil, fmt.Errorf("failed to discard CRC for chunk %q: %w", chunk.Type, err)
		}
		switch chunk.Type {
		case "iCCP":
			name, rest, ok := bytes.Cut(data, []byte{0})
			if !ok || len(rest) < 1 {
				return nil, errors.New("invalid iCCP chunk format")
			}
			if rest[0] != 0 {
				return nil, fmt.Errorf("unknown iCCP compression method %d for profile %q", rest[0], name)
			}
			raw, err := inflate(rest[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to decompress ICC profile %q: %w", name, err)
			}
			return Decode(bytes.NewReader(raw), opts)
		case "IEND":
			return nil, ErrNoProfile
		}
	}
}

// ExtractFromJPEG extracts and decodes the ICC profile carried in JPEG APP2
// marker segments, reassembling multi-segment profiles by sequence number.
func ExtractFromJPEG(r io.Reader, opts *DecodeOptions) (*Profile, error) {
	const segmentSignature = "ICC_PROFILE\x00"
	var marker [2]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return nil, fmt.Errorf("failed to read JPEG marker: %w", err)
	}
	if marker[0] != 0xFF || marker[1] != 0xD8 {
		return nil, errors.New("not a JPEG file")
	}
	chunks := make(map[int][]byte)
	total := 0
	for {
		if _, err := io.ReadFull(r, marker[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read JPEG marker: %w", err)
		}
		if marker[0] != 0xFF || marker[1] == 0xD9 {
			break
		}
		var length uint16
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, fmt.Errorf("failed to read JPEG segment length: %w", err)
		}
		if length < 2 {
			return nil, errors.New("invalid JPEG segment length")
		}
		data := make([]byte, length-2)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("failed to read JPEG segment: %w", err)
		}
		if marker[1] != 0xE2 || !bytes.HasPrefix(data, []byte(segmentSignature)) {
			continue
		}
		// signature is followed by a 1-based sequence number and chunk total
		if len(data) < len(segmentSignature)+2 {
			return nil, errors.New("invalid ICC_PROFILE segment length")
		}
		seq := int(data[len(segmentSignature)])
		chunk := data[len(segmentSignature)+2:]
		chunks[seq] = chunk
		total += len(chunk)
	}
	if len(chunks) == 0 {
		return nil, ErrNoProfile
	}
	combined := make([]byte, 0, total)
	for i := 1; i <= len(chunks); i++ {
		chunk, ok := chunks[i]
		if !ok {
			return nil, fmt.Errorf("missing ICC_PROFILE chunk #%d", i)
		}
		combined = append(combined, chunk...)
	}
	return Decode(bytes.NewReader(combined), opts)
}

// ExtractFromTIFF extracts and decodes the ICC profile stored under TIFF tag
// 34675 in the first image file directory. Both byte orders are handled.
func ExtractFromTIFF(r io.Reader, opts *DecodeOptions) (*Profile, error) {
	const tagICCProfile = 34675
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read TIFF header: %w", err)
	}
	var bo binary.ByteOrder
	switch string(header[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, errors.New("invalid TIFF byte order")
	}
	if bo.Uint16(header[2:4]) != 42 {
		return nil, errors.New("not a valid TIFF file")
	}
	ifdOffset := bo.Uint32(header[4:8])
	if _, err := io.CopyN(io.Discard, r, int64(ifdOffset)-8); err != nil {
		return nil, fmt.Errorf("failed to skip to IFD: %w", err)
	}
	var count uint16
	if err := binary.Read(r, bo, &count); err != nil {
		return nil, fmt.Errorf("failed to read IFD entry count: %w", err)
	}
	var iccOffset, iccLength uint32
	entry := make([]byte, 12)
	for i := 0; i < int(count); i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return nil, fmt.Errorf("failed to read IFD entry: %w", err)
		}
		if bo.Uint16(entry[0:2]) == tagICCProfile {
			iccLength = bo.Uint32(entry[4:8])
			iccOffset = bo.Uint32(entry[8:12])
			break
		}
	}
	if iccLength == 0 {
		return nil, ErrNoProfile
	}
	skip := int64(iccOffset) - (int64(ifdOffset) + 2 + 12*int64(count))
	if skip < 0 {
		return nil, fmt.Errorf("ICC profile offset 0x%X precedes current position", iccOffset)
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return nil, fmt.Errorf("failed to skip to ICC profile: %w", err)
	}
	raw := make([]byte, iccLength)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read ICC profile: %w", err)
	}
	return Decode(bytes.NewReader(raw), opts)
}

// ExtractFromWebP extracts and decodes the ICC profile held in a WebP RIFF
// ICCP chunk.
func ExtractFromWebP(r io.Reader, opts *DecodeOptions) (*Profile, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if !bytes.Equal(header[:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WEBP")) {
		return nil, errors.New("not a valid WebP file")
	}
	for {
		var chunk struct {
			Type string `binary:"[4]byte"`
			Size uint32
		}
		if _, err := bst.Read(r, bst.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoProfile
			}
			return nil, fmt.Errorf("failed to read RIFF chunk header: %w", err)
		}
		padded := int64(chunk.Size) + int64(chunk.Size%2)
		if chunk.Type == "ICCP" {
			raw := make([]byte, chunk.Size)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, fmt.Errorf("failed to read ICCP chunk: %w", err)
			}
			return Decode(bytes.NewReader(raw), opts)
		}
		if _, err := io.CopyN(io.Discard, r, padded); err != nil {
			return nil, fmt.Errorf("failed to skip chunk %q: %w", chunk.Type, err)
		}
	}
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()
	return io.ReadAll(zr)
}
