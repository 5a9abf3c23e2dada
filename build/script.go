package build

import "github.com/btcsuite/btcd/txscript"

// opReturnPush wraps payload in a standard null-data script: OP_RETURN
// PUSH(payload), the same idiom marker.ToScript uses for color
// markers, reused here for the stealth-send ephemeral-key payload.
func opReturnPush(payload []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(payload).
		Script()
}
