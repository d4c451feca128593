// Package framedump renders decoded frames for operators and downstream
// tooling.
package framedump

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/danmuck/framectl/internal/protocol/frame"
)

type Format int

const (
	FormatJSON Format = iota
	FormatText
	FormatCBOR
	FormatMsgpack
)

var ErrUnknownFormat = errors.New("framedump: unknown format")

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatCBOR:
		return "cbor"
	case FormatMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Binary reports whether the format produces non-printable output.
func (f Format) Binary() bool {
	return f == FormatCBOR || f == FormatMsgpack
}

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "cbor":
		return FormatCBOR, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Document is the serialized shape shared by the structured formats.
type Document struct {
	Counts frame.Counts `json:"counts"`
	Frame  frame.Frame  `json:"frame"`
}

func NewDocument(f frame.Frame) Document {
	return Document{Counts: f.Counts(), Frame: f}
}

// Write renders f to w. JSON output is one object per line; non-finite
// floats appear there as "NaN", "+Inf" or "-Inf".
func Write(w io.Writer, format Format, f frame.Frame) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(newJSONDocument(f))
	case FormatText:
		return writeText(w, f)
	case FormatCBOR:
		return cbor.NewEncoder(w).Encode(NewDocument(f))
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(NewDocument(f))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Marshal is Write into a fresh buffer.
func Marshal(format Format, f frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
