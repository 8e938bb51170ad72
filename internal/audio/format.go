package audio

import (
	"bytes"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/dhowden/tag"
)

// Format is an audio container family.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP3
	FormatFLAC
	FormatWAV
	FormatOgg
	FormatMP4
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	case FormatWAV:
		return "wav"
	case FormatOgg:
		return "ogg"
	case FormatMP4:
		return "mp4"
	default:
		return "unknown"
	}
}

// Sniff identifies a container from the leading bytes of a resource.
func Sniff(head []byte) Format {
	if len(head) < 11 {
		return FormatUnknown
	}
	if isRIFFWave(head) {
		return FormatWAV
	}
	format, fileType, err := tag.Identify(bytes.NewReader(head))
	if err == nil {
		switch {
		case fileType == tag.FLAC:
			return FormatFLAC
		case fileType == tag.OGG:
			return FormatOgg
		case fileType == tag.MP3:
			return FormatMP3
		case format == tag.MP4:
			return FormatMP4
		}
	}
	if isMPEGFrame(head) {
		return FormatMP3
	}
	return FormatUnknown
}

// DetectFormat sniffs head, then falls back to the URL extension and the
// content type.
func DetectFormat(head []byte, contentType, rawURL string) Format {
	if f := Sniff(head); f != FormatUnknown {
		return f
	}
	if f := formatFromExt(rawURL); f != FormatUnknown {
		return f
	}
	return formatFromContentType(contentType)
}

func isMPEGFrame(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0 && b[1]&0x06 != 0
}

func isRIFFWave(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}

func formatFromExt(rawURL string) Format {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatUnknown
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	case ".wav":
		return FormatWAV
	case ".ogg", ".oga":
		return FormatOgg
	case ".m4a", ".mp4", ".aac":
		return FormatMP4
	default:
		return FormatUnknown
	}
}

func formatFromContentType(value string) Format {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return FormatUnknown
	}
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		return FormatMP3
	case "audio/flac", "audio/x-flac":
		return FormatFLAC
	case "audio/wav", "audio/x-wav", "audio/wave":
		return FormatWAV
	case "audio/ogg", "audio/vorbis":
		return FormatOgg
	case "audio/mp4", "audio/x-m4a", "audio/aac":
		return FormatMP4
	default:
		return FormatUnknown
	}
}
