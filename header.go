package iccraw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	bst "github.com/mixcode/binarystruct"
)

// HeaderSize is the fixed size of an ICC profile header in bytes.
const HeaderSize = 128

// headerLayout is the 128-byte wire form of the profile header, big-endian
// throughout, read in a single packed pass. Field order and widths follow
// ICC.1 with the ICC.2 spectral extensions filling the tail.
type headerLayout struct {
	ProfileSize     uint32
	CMMType         string `binary:"[4]byte"`
	Version         [4]byte
	DeviceClass     string `binary:"[4]byte"`
	ColorSpace      string `binary:"[4]byte"`
	PCS             string `binary:"[4]byte"`
	Created         [12]byte
	Signature       string `binary:"[4]byte"`
	Platform        string `binary:"[4]byte"`
	Flags           uint32
	Manufacturer    string `binary:"[4]byte"`
	Model           string `binary:"[4]byte"`
	Attributes      uint64
	RenderingIntent uint32
	Illuminant      [12]byte
	Creator         string `binary:"[4]byte"`
	ProfileID       [16]byte
	SpectralPCS     string `binary:"[4]byte"`
	SpectralRange   [6]byte
	BispectralRange [6]byte
	MCS             string `binary:"[4]byte"`
	SubclassVersion uint32
	Reserved        uint32
}

// Header represents the decoded ICC profile header (128 bytes).
//
// No field is validated at decode time. In particular Signature is not
// checked against "acsp"; callers that care can inspect it themselves.
type Header struct {
	ProfileSize     uint32
	CMMType         string
	VersionRaw      [4]byte
	Version         Version
	DeviceClass     string
	ColorSpace      string
	PCS             string
	Created         time.Time
	Signature       string
	Platform        string
	Flags           uint32
	Manufacturer    string
	Model           string
	Attributes      uint64
	RenderingIntent uint32
	Illuminant      [3]float64
	Creator         string
	ProfileID       [16]byte
	SpectralPCS     string
	SpectralRange   [6]byte
	BispectralRange [6]byte
	MCS             string
	SubclassVersion uint32
}

func parseHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return Header{}, &TruncatedError{Section: "header", Offset: 0, Need: HeaderSize, Got: n}
	}
	var layout headerLayout
	if _, err = bst.Read(bytes.NewReader(buf[:]), bst.BigEndian, &layout); err != nil {
		return Header{}, fmt.Errorf("failed to decode header layout: %w", err)
	}
	return Header{
		ProfileSize:     layout.ProfileSize,
		CMMType:         stringed(layout.CMMType),
		VersionRaw:      layout.Version,
		Version:         versionFromRaw(layout.Version),
		DeviceClass:     stringed(layout.DeviceClass),
		ColorSpace:      stringed(layout.ColorSpace),
		PCS:             stringed(layout.PCS),
		Created:         dateTimeNumber(layout.Created),
		Signature:       stringed(layout.Signature),
		Platform:        stringed(layout.Platform),
		Flags:           layout.Flags,
		Manufacturer:    stringed(layout.Manufacturer),
		Model:           stringed(layout.Model),
		Attributes:      layout.Attributes,
		RenderingIntent: layout.RenderingIntent,
		Illuminant: [3]float64{
			s15Fixed16(layout.Illuminant[0:4]),
			s15Fixed16(layout.Illuminant[4:8]),
			s15Fixed16(layout.Illuminant[8:12]),
		},
		Creator:         stringed(layout.Creator),
		ProfileID:       layout.ProfileID,
		SpectralPCS:     stringed(layout.SpectralPCS),
		SpectralRange:   layout.SpectralRange,
		BispectralRange: layout.BispectralRange,
		MCS:             stringed(layout.MCS),
		SubclassVersion: layout.SubclassVersion,
	}, nil
}

// Version is the profile version, unpacked from its 4 raw header bytes:
// major, then minor in the high nibble and bug-fix in the low nibble of the
// second byte, then the sub-class major and minor.
type Version struct {
	Major    int
	Minor    int
	BugFix   int
	SubMajor int
	SubMinor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d sub %d.%d", v.Major, v.Minor, v.BugFix, v.SubMajor, v.SubMinor)
}

func versionFromRaw(raw [4]byte) Version {
	return Version{
		Major:    int(raw[0]),
		Minor:    int(raw[1] >> 4),
		BugFix:   int(raw[1] & 0x0F),
		SubMajor: int(raw[2]),
		SubMinor: int(raw[3]),
	}
}

// dateTimeNumber converts the 12-byte header timestamp (six big-endian
// uint16s: year, month, day, hour, minute, second) to a UTC time.
func dateTimeNumber(raw [12]byte) time.Time {
	return time.Date(
		int(binary.BigEndian.Uint16(raw[0:2])),
		time.Month(binary.BigEndian.Uint16(raw[2:4])),
		int(binary.BigEndian.Uint16(raw[4:6])),
		int(binary.BigEndian.Uint16(raw[6:8])),
		int(binary.BigEndian.Uint16(raw[8:10])),
		int(binary.BigEndian.Uint16(raw[10:12])),
		0, time.UTC)
}

// s15Fixed16 converts a big-endian s15Fixed16Number to its float64 value.
func s15Fixed16(data []byte) float64 {
	return float64(int32(binary.BigEndian.Uint32(data))) / 65536.0
}

// stringed renders a 4-byte signature field: trailing NULs and spaces
// trimmed, non-printable content in raw hex form.
func stringed(s string) string {
	trimmed := strings.TrimRight(s, "\x00 ")
	for _, c := range trimmed {
		if c < 32 || c > 126 {
			return "0x" + fmt.Sprintf("%X", []byte(s))
		}
	}
	return trimmed
}
