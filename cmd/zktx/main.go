package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethaccount/zksync/signature"
	"github.com/ethaccount/zksync/src/service"
	"github.com/ethaccount/zksync/zktx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var Version = "v0.1.0"

var (
	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "trace, debug, info, warn, error or disabled",
		Value:   "warn",
		EnvVars: []string{"LOG_LEVEL"},
	}
	TxFlag = &cli.StringFlag{
		Name:  "tx",
		Usage: "path to a transaction JSON document, - for stdin",
		Value: "-",
	}
	RawFlag = &cli.StringFlag{
		Name:     "raw",
		Usage:    "hex encoded 0x71 envelope",
		Required: true,
	}
	SignatureFlag = &cli.StringFlag{
		Name:  "signature",
		Usage: "65-byte hex signature to attach",
	}
	AmountFlag = &cli.StringFlag{
		Name:  "amount",
		Usage: "value in ETH, overrides the transaction value",
	}
	BroadcastFlag = &cli.BoolFlag{
		Name:  "broadcast",
		Usage: "send the signed transaction to the L2 node",
	}
	NameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "ENS name to resolve",
		Required: true,
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:    "private-key",
		Usage:   "hex private key of the signer",
		EnvVars: []string{"PRIVATE_KEY"},
	}
	L2RPCFlag = &cli.StringFlag{
		Name:    "l2-rpc",
		Usage:   "zkSync node URL",
		EnvVars: []string{"L2_RPC_URL"},
	}
	L1RPCFlag = &cli.StringFlag{
		Name:    "l1-rpc",
		Usage:   "Ethereum node URL used for ENS",
		EnvVars: []string{"L1_RPC_URL"},
	}
	RegistryFlag = &cli.StringFlag{
		Name:    "ens-registry",
		Usage:   "ENS registry address",
		Value:   service.DefaultENSRegistryAddress,
		EnvVars: []string{"ENS_REGISTRY_ADDRESS"},
	}
)

func main() {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	app := cli.NewApp()
	app.Name = "zktx"
	app.Version = Version
	app.Usage = "build, sign and inspect zkSync 0x71 transactions"
	app.Flags = []cli.Flag{LogLevelFlag}
	app.Before = func(c *cli.Context) error {
		level, err := zerolog.ParseLevel(c.String(LogLevelFlag.Name))
		if err != nil {
			level = zerolog.WarnLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(level).With().Timestamp().Str("service", app.Name).Logger()
		c.Context = logger.WithContext(c.Context)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:   "typed-data",
			Usage:  "print the EIP-712 document and digest the sender signs",
			Flags:  []cli.Flag{TxFlag},
			Action: typedDataAction,
		},
		{
			Name:   "serialize",
			Usage:  "encode a transaction as a 0x71 envelope",
			Flags:  []cli.Flag{TxFlag, SignatureFlag},
			Action: serializeAction,
		},
		{
			Name:   "parse",
			Usage:  "decode a 0x71 envelope",
			Flags:  []cli.Flag{RawFlag},
			Action: parseAction,
		},
		{
			Name:   "sign",
			Usage:  "fill, sign and optionally broadcast a transaction",
			Flags:  []cli.Flag{TxFlag, AmountFlag, BroadcastFlag, PrivateKeyFlag, L2RPCFlag},
			Action: signAction,
		},
		{
			Name:   "resolve",
			Usage:  "resolve an ENS name",
			Flags:  []cli.Flag{NameFlag, L1RPCFlag, RegistryFlag},
			Action: resolveAction,
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func readTransaction(path string) (*zktx.Transaction, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var tx zktx.Transaction
	if err := json.NewDecoder(r).Decode(&tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return &tx, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func typedDataAction(c *cli.Context) error {
	tx, err := readTransaction(c.String(TxFlag.Name))
	if err != nil {
		return err
	}

	codec := service.NewCodecService(nil, nil)
	typedData, digest, err := codec.TransactionTypedData(c.Context, tx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"typedData": typedData,
		"digest":    digest,
	})
}

func serializeAction(c *cli.Context) error {
	tx, err := readTransaction(c.String(TxFlag.Name))
	if err != nil {
		return err
	}

	var sig *signature.Signature
	if s := c.String(SignatureFlag.Name); s != "" {
		parsed, err := signature.FromHex(s)
		if err != nil {
			return fmt.Errorf("invalid signature: %w", err)
		}
		sig = &parsed
	}

	codec := service.NewCodecService(nil, nil)
	raw, _, err := codec.SerializeTransaction(c.Context, tx, sig)
	if err != nil {
		return err
	}
	fmt.Println(hexutil.Encode(raw))
	return nil
}

func parseAction(c *cli.Context) error {
	raw, err := hexutil.Decode(c.String(RawFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid raw transaction: %w", err)
	}

	codec := service.NewCodecService(nil, nil)
	tx, err := codec.ParseTransaction(c.Context, raw)
	if err != nil {
		return err
	}
	return printJSON(tx)
}

func signAction(c *cli.Context) error {
	privateKey := c.String(PrivateKeyFlag.Name)
	if privateKey == "" {
		return errors.New("PRIVATE_KEY or --private-key is required")
	}
	l2RPC := c.String(L2RPCFlag.Name)
	if l2RPC == "" {
		return errors.New("L2_RPC_URL or --l2-rpc is required")
	}

	tx, err := readTransaction(c.String(TxFlag.Name))
	if err != nil {
		return err
	}
	if amount := c.String(AmountFlag.Name); amount != "" {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		value, err := service.ParseUnits(d, service.EtherDecimals)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		tx.Value = value
	}

	provider := service.NewProviderService(service.ProviderConfig{L2RPCURL: l2RPC})
	defer provider.Close()

	codec := service.NewCodecService(nil, nil)
	signer, err := service.NewSignerService(provider, codec, privateKey)
	if err != nil {
		return err
	}

	var signed *service.SignedTransaction
	if c.Bool(BroadcastFlag.Name) {
		signed, err = signer.SendTransaction(c.Context, tx)
	} else {
		signed, err = signer.SignTransaction(c.Context, tx)
	}
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"transaction": signed.Transaction,
		"raw":         hexutil.Bytes(signed.Raw),
		"hash":        signed.Hash,
		"signature":   signed.Signature,
		"broadcast":   c.Bool(BroadcastFlag.Name),
	})
}

func resolveAction(c *cli.Context) error {
	l1RPC := c.String(L1RPCFlag.Name)
	if l1RPC == "" {
		return errors.New("L1_RPC_URL or --l1-rpc is required")
	}
	registry := c.String(RegistryFlag.Name)
	if !common.IsHexAddress(registry) {
		return fmt.Errorf("invalid ENS registry address %q", registry)
	}

	provider := service.NewProviderService(service.ProviderConfig{L1RPCURL: l1RPC})
	defer provider.Close()

	resolver := service.NewNameResolverService(provider, nil, common.HexToAddress(registry))
	name := c.String(NameFlag.Name)
	addr, err := resolver.ResolveName(c.Context, name)
	if err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return fmt.Errorf("%s does not resolve to an address", name)
	}
	fmt.Println(addr.Hex())
	return nil
}
