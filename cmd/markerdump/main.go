package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/lykke-go/coloredcoin/marker"
)

var cmdlineFlags struct {
	payload string
	script  string
}

func main() {
	flag.StringVar(&cmdlineFlags.payload, "payload", "", "hex-encoded marker payload (the OP_RETURN push data)")
	flag.StringVar(&cmdlineFlags.script, "script", "", "hex-encoded candidate output script to decode a marker from")
	flag.Parse()

	if cmdlineFlags.payload == "" && cmdlineFlags.script == "" {
		fmt.Printf("ERROR: you must specify either -payload or -script\n")
		os.Exit(1)
	}

	var m *marker.Marker
	if cmdlineFlags.script != "" {
		script, err := hex.DecodeString(cmdlineFlags.script)
		if err != nil {
			fmt.Printf("ERROR: failed to decode script: %s\n", err)
			os.Exit(1)
		}
		decoded, ok, err := marker.FromScript(script)
		if err != nil {
			fmt.Printf("ERROR: failed to decode marker: %s\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Printf("ERROR: script is not a marker output\n")
			os.Exit(1)
		}
		m = decoded
	} else {
		payload, err := hex.DecodeString(cmdlineFlags.payload)
		if err != nil {
			fmt.Printf("ERROR: failed to decode payload: %s\n", err)
			os.Exit(1)
		}
		decoded, err := marker.Decode(payload)
		if err != nil {
			fmt.Printf("ERROR: failed to decode marker: %s\n", err)
			os.Exit(1)
		}
		m = decoded
	}

	fmt.Printf("Tag:         0x%04x\n", m.Tag)
	fmt.Printf("Version:     %d\n", m.Version)
	if m.Version == marker.Version2 {
		fmt.Printf("Opcode:      0x%02x\n", m.Opcode)
	}
	fmt.Printf("Quantities:  %v\n", m.Quantities)
	if len(m.ExchangeFlags) > 0 {
		fmt.Printf("Exchange flags: %v\n", m.ExchangeFlags)
	}
	fmt.Printf("Metadata:    %s\n", hex.EncodeToString(m.Metadata))
}
