package txt

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// utf8BOM is the byte order mark some editors prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeBytes converts raw song file content to a string. A UTF-8 BOM is
// stripped; valid UTF-8 passes through unchanged; anything else is treated
// as legacy Windows-1252 text, the code page the source ecosystem's older
// files were written in.
func DecodeBytes(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode legacy code page: %w", err)
	}
	return string(decoded), nil
}
