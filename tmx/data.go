package tmx

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/milk9111/tileworlds/tile"
)

// Tiles decodes the layer data into one decoded tile per cell in row-major
// order. The cell count must equal width*height of the map.
func (l *Layer) Tiles(width, height int) ([]tile.Decoded, error) {
	if l.Data == nil {
		return nil, fmt.Errorf("%w: layer %q has no data", ErrMalformedMap, l.Name)
	}
	want := width * height

	var out []tile.Decoded
	switch strings.ToLower(strings.TrimSpace(l.Data.Encoding)) {
	case "csv":
		cells := strings.FieldsFunc(l.Data.Text, func(r rune) bool {
			return r == ',' || r == '\n' || r == '\r'
		})
		out = make([]tile.Decoded, 0, len(cells))
		for _, cell := range cells {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			d, err := tile.ParseGID(cell)
			if err != nil {
				return nil, fmt.Errorf("tmx: layer %q: %w", l.Name, err)
			}
			out = append(out, d)
		}
	case "base64":
		raw, err := decodeBase64(l.Data)
		if err != nil {
			return nil, fmt.Errorf("tmx: layer %q: %w", l.Name, err)
		}
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("%w: layer %q: %d bytes is not a whole number of gids", ErrMalformedMap, l.Name, len(raw))
		}
		out = make([]tile.Decoded, 0, len(raw)/4)
		for i := 0; i < len(raw); i += 4 {
			d, err := tile.Decode(binary.LittleEndian.Uint32(raw[i:]))
			if err != nil {
				return nil, fmt.Errorf("tmx: layer %q: %w", l.Name, err)
			}
			out = append(out, d)
		}
	case "":
		out = make([]tile.Decoded, 0, len(l.Data.Tiles))
		for _, t := range l.Data.Tiles {
			d, err := tile.Decode(t.GID)
			if err != nil {
				return nil, fmt.Errorf("tmx: layer %q: %w", l.Name, err)
			}
			out = append(out, d)
		}
	default:
		return nil, fmt.Errorf("%w: layer %q: unsupported encoding %q", ErrMalformedMap, l.Name, l.Data.Encoding)
	}

	if len(out) != want {
		return nil, fmt.Errorf("%w: layer %q has %d cells, want %d", ErrMalformedMap, l.Name, len(out), want)
	}
	return out, nil
}

func decodeBase64(d *Data) ([]byte, error) {
	packed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(d.Text))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformedMap, err)
	}

	switch strings.ToLower(strings.TrimSpace(d.Compression)) {
	case "":
		return packed, nil
	case "zlib":
		r, err := zlib.NewReader(bytes.NewReader(packed))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrMalformedMap, err)
		}
		defer r.Close()
		return readAll(r, "zlib")
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(packed))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrMalformedMap, err)
		}
		defer r.Close()
		return readAll(r, "gzip")
	case "zstd":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("tmx: zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(packed, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrMalformedMap, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported compression %q", ErrMalformedMap, d.Compression)
	}
}

func readAll(r io.Reader, codec string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMap, codec, err)
	}
	return out, nil
}
