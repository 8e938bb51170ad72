package audio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func padded(prefix string) []byte {
	return append([]byte(prefix), bytes.Repeat([]byte{0}, 512)...)
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{name: "id3", head: padded("ID3\x03\x00\x00\x00\x00\x00\x00\x00"), want: FormatMP3},
		{name: "flac", head: padded("fLaC"), want: FormatFLAC},
		{name: "ogg", head: padded("OggS"), want: FormatOgg},
		{name: "m4a", head: padded("\x00\x00\x00\x20ftypM4A "), want: FormatMP4},
		{name: "wav", head: padded("RIFF\x24\x00\x00\x00WAVEfmt "), want: FormatWAV},
		{name: "mpeg frame", head: padded("\xFF\xFB\x90\x64"), want: FormatMP3},
		{name: "html", head: padded("<!doctype html>"), want: FormatUnknown},
		{name: "short", head: []byte("ID3"), want: FormatUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Sniff(tc.head))
		})
	}
}

func TestDetectFormatFallbacks(t *testing.T) {
	unknown := padded("????")
	require.Equal(t, FormatMP4, DetectFormat(unknown, "", "https://cdn.test/a/preview.aac.p.m4a?x=1"))
	require.Equal(t, FormatFLAC, DetectFormat(unknown, "", "https://cdn.test/a.FLAC"))
	require.Equal(t, FormatMP3, DetectFormat(unknown, "audio/mpeg", "https://cdn.test/stream"))
	require.Equal(t, FormatOgg, DetectFormat(unknown, "audio/ogg; codecs=vorbis", "https://cdn.test/stream"))
	require.Equal(t, FormatUnknown, DetectFormat(unknown, "text/html", "https://cdn.test/page"))
	require.Equal(t, FormatWAV, DetectFormat(padded("RIFF\x00\x00\x00\x00WAVE"), "text/html", "https://cdn.test/a.mp3"))
}

func TestFormatString(t *testing.T) {
	require.Equal(t, "mp3", FormatMP3.String())
	require.Equal(t, "unknown", Format(42).String())
}
