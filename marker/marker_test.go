package marker

import (
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/wire"
)

func TestRoundTripVersion1(t *testing.T) {
	m := &Marker{
		Tag:        TagOpenAssets,
		Version:    Version1,
		Quantities: []uint64{0, 1, 12345, MaxQuantity},
		Metadata:   []byte("hello"),
	}
	payload, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestRoundTripVersion2ExchangeOperation(t *testing.T) {
	m := &Marker{
		Tag:        TagColored,
		Version:    Version2,
		Opcode:     OpcodeExchangeOperation,
		Quantities: []uint64{10, 20, 30},
		Metadata:   []byte{0xde, 0xad, 0xbe, 0xef},
	}
	payload, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestRoundTripVersion2TransferToExchange(t *testing.T) {
	m := &Marker{
		Tag:           TagOpenAssets,
		Version:       Version2,
		Opcode:        OpcodeTransferToExchange,
		Quantities:    []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9},
		ExchangeFlags: []bool{true, false, true, true, false, false, true, false, true},
		Metadata:      []byte("note"),
	}
	payload, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestRoundTripEmptyQuantities(t *testing.T) {
	m := &Marker{Tag: TagColored, Version: Version1}
	payload, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	got, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if len(got.Quantities) != 0 || len(got.Metadata) != 0 {
		t.Fatalf("expected empty marker, got %+v", got)
	}
}

func TestEncodeRejectsBadTag(t *testing.T) {
	m := &Marker{Tag: 0xffff, Version: Version1}
	if _, err := m.Encode(); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestEncodeRejectsBadVersion(t *testing.T) {
	m := &Marker{Tag: TagColored, Version: 3}
	if _, err := m.Encode(); err != ErrBadVersion {
		t.Fatalf("expected ErrBadVersion, got %v", err)
	}
}

func TestEncodeRejectsOverflowQuantity(t *testing.T) {
	m := &Marker{Tag: TagColored, Version: Version1, Quantities: []uint64{MaxQuantity + 1}}
	if _, err := m.Encode(); err != ErrQuantityOverflow {
		t.Fatalf("expected ErrQuantityOverflow, got %v", err)
	}
}

func TestEncodeRejectsExchangeFlagsMismatch(t *testing.T) {
	m := &Marker{
		Tag:           TagColored,
		Version:       Version2,
		Opcode:        OpcodeTransferToExchange,
		Quantities:    []uint64{1, 2},
		ExchangeFlags: []bool{true},
	}
	if _, err := m.Encode(); err != ErrExchangeFlagsMismatch {
		t.Fatalf("expected ErrExchangeFlagsMismatch, got %v", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	m := &Marker{Tag: TagColored, Version: Version1, Quantities: []uint64{1}}
	payload, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	payload = append(payload, 0x00)
	if _, err := Decode(payload); err != ErrTrailingBytes {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestScriptRoundTrip(t *testing.T) {
	m := &Marker{
		Tag:        TagOpenAssets,
		Version:    Version1,
		Quantities: []uint64{7, 8},
		Metadata:   []byte("x"),
	}
	script, err := m.ToScript()
	if err != nil {
		t.Fatalf("ToScript: %s", err)
	}
	decoded, ok, err := FromScript(script)
	if err != nil {
		t.Fatalf("FromScript: %s", err)
	}
	if !ok {
		t.Fatalf("expected null-data script to be recognized")
	}
	if !reflect.DeepEqual(decoded, m) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, m)
	}
}

func TestFromScriptIgnoresNonNullData(t *testing.T) {
	script := []byte{0x76, 0xa9, 0x14}
	_, ok, err := FromScript(script)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if ok {
		t.Fatalf("expected non-null-data script to be ignored")
	}
}

func TestLocateFindsFirstMarkerOutput(t *testing.T) {
	m := &Marker{Tag: TagColored, Version: Version1, Quantities: []uint64{1}}
	script, err := m.ToScript()
	if err != nil {
		t.Fatalf("ToScript: %s", err)
	}
	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(0, []byte{0x76, 0xa9}))
	tx.AddTxOut(wire.NewTxOut(0, script))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x76, 0xa9}))

	idx, decoded, err := Locate(tx)
	if err != nil {
		t.Fatalf("Locate: %s", err)
	}
	if idx != 1 {
		t.Fatalf("expected marker at index 1, got %d", idx)
	}
	if !reflect.DeepEqual(decoded, m) {
		t.Fatalf("decoded mismatch: got %+v, want %+v", decoded, m)
	}
	if err := Validate(decoded, tx); err != nil {
		t.Fatalf("Validate: %s", err)
	}
}

func TestLocateReturnsErrNoMarker(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x76, 0xa9}))
	if _, _, err := Locate(tx); err != ErrNoMarker {
		t.Fatalf("expected ErrNoMarker, got %v", err)
	}
}

func TestValidateRejectsTooManyQuantities(t *testing.T) {
	m := &Marker{Tag: TagColored, Version: Version1, Quantities: []uint64{1, 2, 3}}
	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(0, nil))
	tx.AddTxOut(wire.NewTxOut(1000, nil))
	if err := Validate(m, tx); err != ErrTooManyQuantities {
		t.Fatalf("expected ErrTooManyQuantities, got %v", err)
	}
}
