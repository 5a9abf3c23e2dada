package money

import "github.com/btcsuite/btcd/wire"

// DustFor computes the relay dust threshold for an output carrying
// script, at relayFeeRate sat/kvB: 3 times the cost of relaying the
// output itself (value field + script length prefix + script bytes),
// the historical btcd txrules.GetDustThreshold shape (see
// SPEC_FULL.md "Relay dust formula"). The result is this script's dust
// threshold (spec §4.3/§4.4: "dust-for(script)" / "the script's dust
// threshold"); an output valued below it is dust.
func DustFor(script []byte, relayFeeRate int64) NativeMoney {
	outputSize := 8 + wire.VarIntSerializeSize(uint64(len(script))) + len(script)
	return NativeMoney(3 * int64(outputSize) * relayFeeRate / 1000)
}
