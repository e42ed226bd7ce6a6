package survey

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type decoderFunc func([]byte) (string, error)

func lookupDecoder(name string) (decoderFunc, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return decodeUTF8, true
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmapDecoder(charmap.ISO8859_1), true
	case "cp1252", "windows-1252":
		return charmapDecoder(charmap.Windows1252), true
	}
	return nil, false
}

func decodeUTF8(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8 byte sequence")
	}
	return string(b), nil
}

func charmapDecoder(cm *charmap.Charmap) decoderFunc {
	return func(b []byte) (string, error) {
		out, _, err := transform.Bytes(cm.NewDecoder(), b)
		if err != nil {
			return "", err
		}
		// undefined code points decode to U+FFFD rather than failing
		if bytes.ContainsRune(out, utf8.RuneError) {
			return "", fmt.Errorf("undefined byte for %s", cm)
		}
		return string(out), nil
	}
}

// Decode converts raw bytes to text with the first encoding in order that
// succeeds. It returns the text and the name of the encoding used.
func Decode(source string, data []byte, order []string) (string, string, error) {
	if len(order) == 0 {
		order = DefaultConfig().Encodings
	}
	var errs []error
	for _, name := range order {
		dec, ok := lookupDecoder(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unsupported encoding", name))
			continue
		}
		text, err := dec(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		return text, name, nil
	}
	return "", "", &DecodingError{Source: source, Attempted: order, Err: errors.Join(errs...)}
}
