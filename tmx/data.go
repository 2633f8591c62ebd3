package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// decodeData returns the n raw gids (flip bits included) stored in a <data>
// element.
func decodeData(el *etree.Element, n int) ([]uint32, error) {
	if len(el.SelectElements("chunk")) > 0 {
		return nil, fmt.Errorf("infinite maps are not supported")
	}

	encoding := el.SelectAttrValue("encoding", "")
	compression := el.SelectAttrValue("compression", "")

	var gids []uint32
	var err error
	switch encoding {
	case "":
		if compression != "" {
			return nil, fmt.Errorf("compression %q requires base64 encoding", compression)
		}
		gids, err = decodeXMLTiles(el)
	case "csv":
		if compression != "" {
			return nil, fmt.Errorf("compression %q requires base64 encoding", compression)
		}
		gids, err = decodeCSV(el.Text())
	case "base64":
		gids, err = decodeBase64(el.Text(), compression)
	default:
		return nil, fmt.Errorf("unknown data encoding %q", encoding)
	}
	if err != nil {
		return nil, err
	}

	if len(gids) != n {
		return nil, fmt.Errorf("layer data has %d cells, expected %d", len(gids), n)
	}
	return gids, nil
}

func decodeXMLTiles(el *etree.Element) ([]uint32, error) {
	tiles := el.SelectElements("tile")
	gids := make([]uint32, 0, len(tiles))
	for i, t := range tiles {
		v := t.SelectAttrValue("gid", "0")
		gid, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("tile %d: bad gid %q: %w", i, v, err)
		}
		gids = append(gids, uint32(gid))
	}
	return gids, nil
}

func decodeCSV(text string) ([]uint32, error) {
	fields := strings.Split(strings.TrimSpace(text), ",")
	gids := make([]uint32, 0, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			// tolerate a trailing comma
			if i == len(fields)-1 {
				break
			}
			return nil, fmt.Errorf("csv cell %d is empty", i)
		}
		gid, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("csv cell %d: %w", i, err)
		}
		gids = append(gids, uint32(gid))
	}
	return gids, nil
}

func decodeBase64(text, compression string) ([]uint32, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("base64 data: %w", err)
	}

	var rd io.Reader
	switch compression {
	case "":
		rd = bytes.NewReader(raw)
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip data: %w", err)
		}
		defer zr.Close()
		rd = zr
	case "zlib":
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("zlib data: %w", err)
		}
		defer zr.Close()
		rd = zr
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}

	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("%s data: %w", compressionName(compression), err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("layer data length %d is not a multiple of 4", len(b))
	}

	gids := make([]uint32, len(b)/4)
	for i := range gids {
		gids[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return gids, nil
}

func compressionName(c string) string {
	if c == "" {
		return "base64"
	}
	return c
}
