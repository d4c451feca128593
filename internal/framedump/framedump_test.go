package framedump

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/danmuck/framectl/internal/protocol/frame"
	"github.com/danmuck/framectl/internal/testutil/testlog"
)

func sample() frame.Frame {
	return frame.Frame{
		ClientID:  1,
		Timestamp: 4200,
		Score:     31337,
		Stage:     frame.Stage{ID: 3, NextStage: 4},
		Players:   []frame.Player{{ID: 1, Lives: 2, Pos: frame.Position{X: 1.5, Y: -2}}},
		Bullets: []frame.Bullet{
			{ID: 900, Damage: 5, Owner: 1},
			{ID: 901, Damage: 7, Owner: 1},
		},
		Items: []frame.Item{{ID: 9, Score: 12.5}},
	}
}

func TestParseFormat(t *testing.T) {
	testlog.Start(t)
	cases := map[string]Format{
		"":        FormatJSON,
		"JSON":    FormatJSON,
		" text ":  FormatText,
		"cbor":    FormatCBOR,
		"msgpack": FormatMsgpack,
	}
	for raw, want := range cases {
		got, err := ParseFormat(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q = %s want %s", raw, got, want)
		}
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteJSONCarriesCountsAndGroups(t *testing.T) {
	testlog.Start(t)
	out, err := Marshal(FormatJSON, sample())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc struct {
		Counts map[string]int             `json:"counts"`
		Frame  map[string]json.RawMessage `json:"frame"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if doc.Counts["bullet_count"] != 2 || doc.Counts["player_count"] != 1 || doc.Counts["enemy_count"] != 0 {
		t.Fatalf("unexpected counts: %v", doc.Counts)
	}
	if string(doc.Frame["timestamp"]) != "4200" {
		t.Fatalf("unexpected timestamp: %s", doc.Frame["timestamp"])
	}
	if _, ok := doc.Frame["reserved"]; ok {
		t.Fatalf("reserved bytes must not be rendered")
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		t.Fatalf("expected newline-terminated record")
	}
}

func TestWriteJSONRendersNonFiniteFloats(t *testing.T) {
	testlog.Start(t)
	f := sample()
	f.Items[0].Score = float32(math.NaN())
	f.Players[0].Pos.X = float32(math.Inf(1))
	f.Bullets[1].Angle = float32(math.Inf(-1))

	out, err := Marshal(FormatJSON, f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc struct {
		Frame struct {
			Players []struct {
				Pos struct {
					X any `json:"x"`
					Y any `json:"y"`
				} `json:"pos"`
			} `json:"players"`
			Bullets []struct {
				Angle any `json:"angle"`
			} `json:"bullets"`
			Items []struct {
				Score any `json:"score"`
			} `json:"items"`
		} `json:"frame"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if doc.Frame.Items[0].Score != "NaN" || doc.Frame.Players[0].Pos.X != "+Inf" || doc.Frame.Bullets[1].Angle != "-Inf" {
		t.Fatalf("unexpected non-finite rendering: %s", out)
	}
	if doc.Frame.Players[0].Pos.Y != -2.0 {
		t.Fatalf("finite float altered: %v", doc.Frame.Players[0].Pos.Y)
	}
}

func TestWriteJSONFloatsKeepFloat32Precision(t *testing.T) {
	testlog.Start(t)
	out, err := Marshal(FormatJSON, frame.Frame{Items: []frame.Item{{Score: 0.1}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(out, []byte(`"score":0.1`)) {
		t.Fatalf("expected shortest float32 form: %s", out)
	}
}

func TestWriteStructuredFormatsDecodeBack(t *testing.T) {
	testlog.Start(t)
	in := sample()

	raw, err := Marshal(FormatCBOR, in)
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}
	var fromCBOR Document
	if err := cbor.Unmarshal(raw, &fromCBOR); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if !fromCBOR.Frame.Equal(in) || fromCBOR.Counts != in.Counts() {
		t.Fatalf("cbor mismatch: %+v", fromCBOR)
	}

	raw, err = Marshal(FormatMsgpack, in)
	if err != nil {
		t.Fatalf("msgpack marshal: %v", err)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.SetCustomStructTag("json")
	var fromMsgpack Document
	if err := dec.Decode(&fromMsgpack); err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if !fromMsgpack.Frame.Equal(in) || fromMsgpack.Counts != in.Counts() {
		t.Fatalf("msgpack mismatch: %+v", fromMsgpack)
	}
}

func TestWriteText(t *testing.T) {
	testlog.Start(t)
	out, err := Marshal(FormatText, sample())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(out)
	for _, want := range []string{"ts=4200", "players=1", "bullets=2", "PLAYER", "BULLET", "ITEM", "(1.5,-2)", "12.5"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "ENEMY") || strings.Contains(text, "BOSS") {
		t.Fatalf("empty groups should not print a table:\n%s", text)
	}
}

func TestFormatBinary(t *testing.T) {
	testlog.Start(t)
	if FormatJSON.Binary() || FormatText.Binary() {
		t.Fatalf("json and text are printable")
	}
	if !FormatCBOR.Binary() || !FormatMsgpack.Binary() {
		t.Fatalf("cbor and msgpack are binary")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := Write(&buf, Format(42), frame.Frame{}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
