package survey

import (
	"errors"
	"testing"
)

func TestDecodeOrder(t *testing.T) {
	text, enc, err := Decode("a", []byte("\xEF\xBB\xBFcaf\xC3\xA9"), nil)
	if err != nil || enc != "utf-8" || text != "café" {
		t.Fatalf("utf-8 with BOM: %q %s %v", text, enc, err)
	}
	text, enc, err = Decode("b", []byte("caf\xE9"), nil)
	if err != nil || enc != "latin-1" || text != "café" {
		t.Fatalf("latin-1: %q %s %v", text, enc, err)
	}
	// 0x80 is the euro sign in cp1252
	text, enc, err = Decode("c", []byte("\x80 5"), []string{"utf-8", "cp1252"})
	if err != nil || enc != "cp1252" || text != "€ 5" {
		t.Fatalf("cp1252: %q %s %v", text, enc, err)
	}
}

func TestDecodeFailsWhenNothingFits(t *testing.T) {
	_, _, err := Decode("d", []byte("\x81"), []string{"utf-8", "utf8"})
	var de *DecodingError
	if !errors.As(err, &de) {
		t.Fatalf("want DecodingError, got %v", err)
	}
	if len(de.Attempted) != 2 || de.Source != "d" {
		t.Fatalf("attempts = %v", de.Attempted)
	}
}
