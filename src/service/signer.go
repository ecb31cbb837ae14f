package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethaccount/zksync/eip712"
	"github.com/ethaccount/zksync/signature"
	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/zktx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// SignedTransaction is a signed 0x71 envelope. Record is nil when no
// journal is configured.
type SignedTransaction struct {
	Transaction *zktx.Transaction
	Raw         []byte
	Hash        common.Hash
	Signature   signature.Signature
	Record      *domain.TransactionModel
}

// SignerService signs typed data and transactions with a server-held key.
type SignerService struct {
	provider   ChainProvider
	codec      *CodecService
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func NewSignerService(provider ChainProvider, codec *CodecService, privateKeyHex string) (*SignerService, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &SignerService{
		provider:   provider,
		codec:      codec,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

func (s *SignerService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "signer").Logger()
	return &l
}

// Address returns the account of the signing key.
func (s *SignerService) Address() common.Address {
	return s.address
}

// SignTypedData signs the digest of message under d. V is 27 or 28.
func (s *SignerService) SignTypedData(ctx context.Context, d eip712.Domain, types eip712.Types, message any) (signature.Signature, common.Hash, error) {
	logger := s.logger(ctx).With().Str("func", "SignTypedData").Logger()

	digest, err := eip712.Hash(d, withoutDomainType(types), message)
	if err != nil {
		logger.Debug().Err(err).Msg("invalid typed data")
		return signature.Signature{}, common.Hash{}, invalidInput(err, "invalid typed data")
	}

	sig, err := signature.Sign(digest, s.privateKey)
	if err != nil {
		logger.Error().Err(err).Msg("failed to sign typed data")
		return signature.Signature{}, common.Hash{}, internalError(err, "failed to sign typed data")
	}

	logger.Info().
		Str("digest", digest.Hex()).
		Str("signer", s.address.Hex()).
		Msg("typed data signed")

	return sig, digest, nil
}

// PrepareTransaction returns a copy of tx with the sender set to the signer
// and chain id, nonce, max fee and gas limit filled from the node when
// absent.
func (s *SignerService) PrepareTransaction(ctx context.Context, tx *zktx.Transaction) (*zktx.Transaction, error) {
	logger := s.logger(ctx).With().Str("func", "PrepareTransaction").Logger()

	if tx.From != nil && *tx.From != s.address {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("from %s does not match signer %s", tx.From.Hex(), s.address.Hex()),
			domain.WithMsg("from does not match the signing account"))
	}
	if len(tx.CustomSignature) > 0 {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid,
			errors.New("transaction already carries a custom signature"),
			domain.WithMsg("transaction with a custom signature cannot be signed"))
	}

	prepared := *tx
	from := s.address
	prepared.From = &from

	if prepared.ChainID == nil {
		chainID, err := s.provider.ChainID(ctx)
		if err != nil {
			return nil, err
		}
		prepared.ChainID = chainID
	}

	if prepared.Nonce == nil {
		nonce, err := s.provider.PendingNonce(ctx, s.address)
		if err != nil {
			return nil, err
		}
		prepared.Nonce = new(big.Int).SetUint64(nonce)
	}

	if prepared.MaxFeePerGas == nil && prepared.GasPrice == nil {
		gasPrice, err := s.provider.SuggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}
		prepared.MaxFeePerGas = gasPrice
	}

	if prepared.GasLimit == nil {
		gas, err := s.provider.EstimateGas(ctx, &prepared)
		if err != nil {
			return nil, err
		}
		prepared.GasLimit = new(big.Int).SetUint64(gas)
	}

	logger.Debug().
		Str("chain_id", prepared.ChainID.String()).
		Str("nonce", prepared.Nonce.String()).
		Str("max_fee_per_gas", prepared.EffectiveMaxFeePerGas().String()).
		Str("gas_limit", prepared.GasLimit.String()).
		Str("value_eth", FormatUnits(prepared.Value, EtherDecimals).String()).
		Msg("transaction prepared")

	return &prepared, nil
}

// SignTransaction prepares, signs and serializes tx.
func (s *SignerService) SignTransaction(ctx context.Context, tx *zktx.Transaction) (*SignedTransaction, error) {
	logger := s.logger(ctx).With().Str("func", "SignTransaction").Logger()

	prepared, err := s.PrepareTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	sig, err := zktx.Sign(prepared, s.privateKey)
	if err != nil {
		logger.Debug().Err(err).Msg("failed to sign transaction")
		return nil, invalidInput(err, "invalid transaction")
	}

	raw, record, err := s.codec.SerializeTransaction(ctx, prepared, sig)
	if err != nil {
		return nil, err
	}

	hash, err := zktx.TxHash(prepared, sig)
	if err != nil {
		return nil, invalidInput(err, "invalid transaction")
	}

	logger.Info().
		Str("tx_hash", hash.Hex()).
		Str("signer", s.address.Hex()).
		Msg("transaction signed")

	return &SignedTransaction{
		Transaction: prepared,
		Raw:         raw,
		Hash:        hash,
		Signature:   *sig,
		Record:      record,
	}, nil
}

// SendTransaction signs tx and submits it to the L2 node, recording the
// outcome in the journal.
func (s *SignerService) SendTransaction(ctx context.Context, tx *zktx.Transaction) (*SignedTransaction, error) {
	logger := s.logger(ctx).With().Str("func", "SendTransaction").Logger()

	signed, err := s.SignTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	sent, err := s.provider.SendRawTransaction(ctx, signed.Raw)
	if err != nil {
		errMsg := err.Error()
		s.codec.updateStatus(ctx, signed.Record, domain.TxStatusFailed, nil, &errMsg)
		return nil, err
	}

	if sent != signed.Hash {
		logger.Warn().
			Str("expected", signed.Hash.Hex()).
			Str("node", sent.Hex()).
			Msg("node returned a different transaction hash")
	}

	s.codec.updateStatus(ctx, signed.Record, domain.TxStatusBroadcast, &sent, nil)

	logger.Info().Str("tx_hash", sent.Hex()).Msg("transaction broadcast")
	return signed, nil
}
