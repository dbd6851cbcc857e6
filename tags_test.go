package iccraw

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagDirectory(t *testing.T) {
	buf := append(
		[]byte{0, 0, 0, 2}, // count = 2
		[]byte{
			'd', 'e', 's', 'c', 0, 0, 0, 168, 0, 0, 0, 48,
			'r', 'X', 'Y', 'Z', 0, 0, 0, 216, 0, 0, 0, 20,
		}...,
	)
	entries, err := parseTagDirectory(bytes.NewReader(buf), &DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, TagEntry{Signature: "desc", Offset: 168, Size: 48}, entries[0])
	assert.Equal(t, TagEntry{Signature: "rXYZ", Offset: 216, Size: 20}, entries[1])
}

func TestParseTagDirectory_Truncated(t *testing.T) {
	_, err := parseTagDirectory(bytes.NewReader([]byte{}), &DecodeOptions{})
	require.ErrorIs(t, err, ErrTruncated)
	var te *TruncatedError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "tag count", te.Section)

	// declared count of 2, only one full record supplied
	buf := append(
		[]byte{0, 0, 0, 2},
		[]byte{'d', 'e', 's', 'c', 0, 0, 0, 168, 0, 0, 0, 48}...,
	)
	_, err = parseTagDirectory(bytes.NewReader(buf), &DecodeOptions{})
	require.ErrorIs(t, err, ErrTruncated)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "tag directory entry 1", te.Section)
	assert.Equal(t, int64(HeaderSize+4+tagEntrySize), te.Offset)
}

func TestParseTagDirectory_MaxTagCount(t *testing.T) {
	buf := []byte{0, 1, 0, 1}
	_, err := parseTagDirectory(bytes.NewReader(buf), &DecodeOptions{MaxTagCount: 1024})
	require.Error(t, err)
	assert.Equal(t, "tag count 65537 exceeds max allowed (1024)", err.Error())

	// zero means no limit; the read loop reports the truncation instead
	_, err = parseTagDirectory(bytes.NewReader(buf), &DecodeOptions{})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "videoCardGammaTableTag", TagName("vcgt"))
	assert.Equal(t, "descriptionTag", TagName("desc"))
	assert.Equal(t, "mediaWhitePointTag", TagName("wtpt"))
	// unrecognized signatures fall through to their raw form
	assert.Equal(t, "xyz1", TagName("xyz1"))
}
