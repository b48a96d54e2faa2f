package analysis

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/dustin/go-humanize"
)

// MaxAdvisedImageSize is the largest upload the page recommends. Larger files
// are accepted with a warning.
const MaxAdvisedImageSize = 10 << 20

// Upload is a file handed over by the page: dropped or picked.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// exifTags are the EXIF fields kept on the decoded image.
var exifTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"Software":         true,
	"DateTimeOriginal": true,
	"DateTime":         true,
	"Orientation":      true,
	"LensModel":        true,
}

// decodeImage turns an upload into its displayable form. It is pure: no I/O,
// no session state.
func decodeImage(u Upload) (*Image, error) {
	mediaType := strings.ToLower(strings.TrimSpace(u.MediaType))
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: media type %q is not an image", ErrInvalidImage, u.MediaType)
	}
	if len(u.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}

	format, width, height, err := probe(u.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img := &Image{
		Filename:  u.Filename,
		MediaType: mediaType,
		Format:    format,
		Size:      len(u.Data),
		Width:     width,
		Height:    height,
		Metadata:  readExif(u.Data),
		DataURL:   "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(u.Data),
		data:      bytes.Clone(u.Data),
	}
	if img.Size > MaxAdvisedImageSize {
		img.Warnings = append(img.Warnings, fmt.Sprintf("image is %s, above the advised %s",
			humanize.Bytes(uint64(img.Size)), humanize.Bytes(MaxAdvisedImageSize)))
	}
	return img, nil
}

// probe reads just enough of the file to learn its format and dimensions.
func probe(data []byte) (format string, width, height int, err error) {
	if w, h, ok := probeWebP(data); ok {
		return "webp", w, h, nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", 0, 0, errors.New("image has no pixels")
	}
	return format, cfg.Width, cfg.Height, nil
}

// probeWebP parses the RIFF header of lossy (VP8), lossless (VP8L) and
// extended (VP8X) WebP files.
func probeWebP(b []byte) (width, height int, ok bool) {
	if len(b) < 30 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		return 0, 0, false
	}
	switch string(b[12:16]) {
	case "VP8 ":
		if b[23] != 0x9d || b[24] != 0x01 || b[25] != 0x2a {
			return 0, 0, false
		}
		width = int(binary.LittleEndian.Uint16(b[26:28]) & 0x3fff)
		height = int(binary.LittleEndian.Uint16(b[28:30]) & 0x3fff)
	case "VP8L":
		if b[20] != 0x2f {
			return 0, 0, false
		}
		bits := binary.LittleEndian.Uint32(b[21:25])
		width = int(bits&0x3fff) + 1
		height = int((bits>>14)&0x3fff) + 1
	case "VP8X":
		width = int(uint32(b[24])|uint32(b[25])<<8|uint32(b[26])<<16) + 1
		height = int(uint32(b[27])|uint32(b[28])<<8|uint32(b[29])<<16) + 1
	default:
		return 0, 0, false
	}
	return width, height, width > 0 && height > 0
}

// readExif returns the interesting EXIF tags, or nil when there are none.
func readExif(data []byte) map[string]string {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil
	}
	var out map[string]string
	for _, e := range entries {
		if !exifTags[e.TagName] || e.Formatted == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		if _, dup := out[e.TagName]; !dup {
			out[e.TagName] = e.Formatted
		}
	}
	return out
}
