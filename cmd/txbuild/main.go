package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	"github.com/lykke-go/coloredcoin/build"
	"github.com/lykke-go/coloredcoin/internal/config"
	"github.com/lykke-go/coloredcoin/internal/logging"
	"github.com/lykke-go/coloredcoin/internal/version"
	"github.com/lykke-go/coloredcoin/marker"
	"github.com/lykke-go/coloredcoin/money"
	"github.com/lykke-go/coloredcoin/selector"
	"github.com/lykke-go/coloredcoin/sign"

	_ "go.uber.org/automaxprocs"
)

const programName = "txbuild"

var cmdlineFlags struct {
	configFile string
	fixture    string
	seed       int64
	sign       bool
	version    bool
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.StringVar(&cmdlineFlags.fixture, "fixture", "", "path to a JSON build fixture")
	flag.Int64Var(&cmdlineFlags.seed, "seed", 0, "PRNG seed for coin selection (0 = time-based)")
	flag.BoolVar(&cmdlineFlags.sign, "sign", false, "sign every input with the fixture's keys after building")
	flag.BoolVar(&cmdlineFlags.version, "version", false, "show version")
	flag.Parse()

	if cmdlineFlags.version {
		fmt.Printf("%s %s\n", programName, version.GetVersionString())
		os.Exit(0)
	}

	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}
	logging.Configure()
	sessionID := uuid.NewString()
	logger := logging.GetLogger().With("session", sessionID)
	defer func() {
		_ = logger.Sync()
	}()

	if cmdlineFlags.fixture == "" {
		fmt.Println("ERROR: -fixture is required")
		os.Exit(1)
	}
	data, err := os.ReadFile(cmdlineFlags.fixture)
	if err != nil {
		logger.Fatalf("reading fixture: %s", err)
	}
	fx, err := loadFixture(data)
	if err != nil {
		logger.Fatalf("loading fixture: %s", err)
	}

	markerTag := marker.TagOpenAssets
	if cfg.Marker.Tag == "colored" {
		markerTag = marker.TagColored
	}
	switch fx.MarkerTag {
	case "colored":
		markerTag = marker.TagColored
	case "open-assets":
		markerTag = marker.TagOpenAssets
	}
	markerVersion := fx.MarkerVersion
	if markerVersion == 0 {
		markerVersion = cfg.Marker.DefaultVersion
	}
	nativeDust := money.NativeMoney(fx.NativeDust)
	if nativeDust == 0 {
		nativeDust = money.NativeMoney(546)
	}

	groups := make([]*build.Group, 0, len(fx.Groups))
	for _, fg := range fx.Groups {
		g, err := buildGroup(fg)
		if err != nil {
			logger.Fatalf("fixture: %s", err)
		}
		groups = append(groups, g)
	}

	seed := cmdlineFlags.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	selectFn := func(candidates []selector.Coin, target money.Money) ([]selector.Coin, error) {
		return selector.Select(candidates, target, rnd)
	}

	ctx := build.NewContext(nil, markerTag, markerVersion, nativeDust, cfg.Fee.RelayFeeRateSatPerKvB)
	if err := build.Build(ctx, groups, selectFn); err != nil {
		logger.Fatalf("build: %s", err)
	}

	if cmdlineFlags.sign {
		keys, err := parseKeys(fx.Keys)
		if err != nil {
			logger.Fatalf("parsing keys: %s", err)
		}
		for _, g := range groups {
			ctx.RegisterCoins(g.Coins...)
		}
		signer := sign.New(cfg.ChainParams(), keys...)
		if err := signer.Sign(ctx); err != nil {
			logger.Fatalf("sign: %s", err)
		}
	}

	raw, err := serialize(ctx.Tx)
	if err != nil {
		logger.Fatalf("serializing transaction: %s", err)
	}
	fmt.Printf("session: %s\n", sessionID)
	fmt.Printf("tx: %s\n", hex.EncodeToString(raw))
	fmt.Printf("inputs: %d outputs: %d fee accumulator: %d\n", len(ctx.Tx.TxIn), len(ctx.Tx.TxOut), int64(ctx.FeeAccumulator))
}

func serialize(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseKeys(wifs []string) ([]*btcec.PrivateKey, error) {
	keys := make([]*btcec.PrivateKey, 0, len(wifs))
	for _, w := range wifs {
		raw, err := hex.DecodeString(w)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", w, err)
		}
		priv, _ := btcec.PrivKeyFromBytes(raw)
		keys = append(keys, priv)
	}
	return keys, nil
}
