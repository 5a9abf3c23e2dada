package marker

import "github.com/btcsuite/btcd/wire"

// ErrNoMarker is returned when a transaction carries no valid marker
// output at all.
var ErrNoMarker = errNoMarker{}

type errNoMarker struct{}

func (errNoMarker) Error() string { return "marker: transaction carries no marker output" }

// ErrTooManyQuantities is returned when a marker's quantity count
// exceeds the number of outputs it could possibly be describing (spec
// §4.2: "quantity count ≤ (output count − 1) of the enclosing
// transaction for the marker to be considered valid within a
// transaction").
var ErrTooManyQuantities = errTooManyQuantities{}

type errTooManyQuantities struct{}

func (errTooManyQuantities) Error() string {
	return "marker: quantity count exceeds output count - 1"
}

// Locate returns the index and decoded contents of the first output in
// tx whose script decodes as a valid marker (spec §4.2: "Marker
// location in a transaction"). It does not validate the quantity-count
// invariant; call Validate for that.
func Locate(tx *wire.MsgTx) (index int, m *Marker, err error) {
	for i, out := range tx.TxOut {
		decoded, ok, decErr := FromScript(out.PkScript)
		if !ok || decErr != nil {
			continue
		}
		return i, decoded, nil
	}
	return 0, nil, ErrNoMarker
}

// Validate checks the quantity-count-vs-output-count invariant for a
// marker already located within tx.
func Validate(m *Marker, tx *wire.MsgTx) error {
	if len(m.Quantities) > len(tx.TxOut)-1 {
		return ErrTooManyQuantities
	}
	return nil
}
