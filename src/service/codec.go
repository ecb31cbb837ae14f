package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethaccount/zksync/eip712"
	"github.com/ethaccount/zksync/signature"
	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/zktx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TransactionJournal records serialized envelopes.
type TransactionJournal interface {
	Create(ctx context.Context, tx *domain.TransactionModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TransactionModel, error)
	FindByHash(ctx context.Context, hash common.Hash) (*domain.TransactionModel, error)
	FindBySender(ctx context.Context, sender common.Address, limit int) ([]*domain.TransactionModel, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TxStatus, hash *common.Hash, errMsg *string) error
}

// TypedDataHash is the breakdown of a typed-data signing digest.
type TypedDataHash struct {
	Hash            common.Hash `json:"hash"`
	DomainSeparator common.Hash `json:"domainSeparator"`
	StructHash      common.Hash `json:"structHash"`
	PrimaryType     string      `json:"primaryType"`
	EncodedType     string      `json:"encodedType"`
}

// CodecService exposes the typed-data and envelope codecs to the API,
// journaling every serialized envelope when a journal is configured.
type CodecService struct {
	resolver eip712.NameResolver
	journal  TransactionJournal
}

// NewCodecService returns a codec service. resolver and journal may be nil.
func NewCodecService(resolver eip712.NameResolver, journal TransactionJournal) *CodecService {
	return &CodecService{
		resolver: resolver,
		journal:  journal,
	}
}

func (s *CodecService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "codec").Logger()
	return &l
}

// withoutDomainType drops a client-supplied EIP712Domain declaration; the
// domain struct is always derived from the domain's set fields.
func withoutDomainType(types eip712.Types) eip712.Types {
	if _, ok := types[eip712.DomainTypeName]; !ok {
		return types
	}
	out := types.Copy()
	delete(out, eip712.DomainTypeName)
	return out
}

func (s *CodecService) HashTypedData(ctx context.Context, d eip712.Domain, types eip712.Types, message any) (*TypedDataHash, error) {
	logger := s.logger(ctx).With().Str("func", "HashTypedData").Logger()

	enc, err := eip712.NewEncoder(withoutDomainType(types))
	if err != nil {
		logger.Debug().Err(err).Msg("invalid types")
		return nil, invalidInput(err, "invalid types")
	}

	domainSeparator, err := eip712.HashDomain(d)
	if err != nil {
		return nil, invalidInput(err, "invalid domain")
	}
	structHash, err := enc.Hash(message)
	if err != nil {
		logger.Debug().Err(err).Msg("invalid message")
		return nil, invalidInput(err, "invalid message")
	}
	digest, err := enc.Digest(d, message)
	if err != nil {
		return nil, invalidInput(err, "invalid message")
	}
	encodedType, err := enc.EncodeType(enc.PrimaryType())
	if err != nil {
		return nil, internalError(err, "failed to encode type")
	}

	logger.Debug().
		Str("primary_type", enc.PrimaryType()).
		Str("digest", digest.Hex()).
		Msg("typed data hashed")

	return &TypedDataHash{
		Hash:            digest,
		DomainSeparator: domainSeparator,
		StructHash:      structHash,
		PrimaryType:     enc.PrimaryType(),
		EncodedType:     encodedType,
	}, nil
}

func (s *CodecService) TypedDataPayload(ctx context.Context, d eip712.Domain, types eip712.Types, message any) (*eip712.TypedData, error) {
	payload, err := eip712.GetPayload(d, withoutDomainType(types), message)
	if err != nil {
		s.logger(ctx).Debug().Err(err).Str("func", "TypedDataPayload").Msg("invalid typed data")
		return nil, invalidInput(err, "invalid typed data")
	}
	return payload, nil
}

// ResolveTypedData replaces names in address positions of the domain and
// message with the addresses they resolve to.
func (s *CodecService) ResolveTypedData(ctx context.Context, d eip712.Domain, types eip712.Types, message any) (eip712.Domain, any, error) {
	logger := s.logger(ctx).With().Str("func", "ResolveTypedData").Logger()

	if s.resolver == nil {
		return eip712.Domain{}, nil, internalError(errors.New("no name resolver configured"), "name resolution is not available")
	}

	resolvedDomain, resolved, err := eip712.ResolveNames(ctx, d, withoutDomainType(types), message, s.resolver)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to resolve names")
		return eip712.Domain{}, nil, invalidInput(err, "invalid typed data")
	}
	return resolvedDomain, resolved, nil
}

// SerializeTransaction encodes tx as a 0x71 envelope and journals it. The
// returned record is nil when no journal is configured.
func (s *CodecService) SerializeTransaction(ctx context.Context, tx *zktx.Transaction, sig *signature.Signature) ([]byte, *domain.TransactionModel, error) {
	logger := s.logger(ctx).With().Str("func", "SerializeTransaction").Logger()

	raw, err := zktx.Serialize(tx, sig)
	if err != nil {
		logger.Debug().Err(err).Msg("invalid transaction")
		return nil, nil, invalidInput(err, "invalid transaction")
	}

	status := domain.TxStatusSerialized
	var hash *common.Hash
	if sig != nil || len(tx.CustomSignature) > 0 {
		h, err := zktx.TxHash(tx, sig)
		if err != nil {
			return nil, nil, invalidInput(err, "invalid transaction")
		}
		status = domain.TxStatusSigned
		hash = &h
	}

	record, err := s.record(ctx, tx, raw, status, hash)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug().
		Int("size", len(raw)).
		Str("status", string(status)).
		Msg("transaction serialized")

	return raw, record, nil
}

func (s *CodecService) ParseTransaction(ctx context.Context, raw []byte) (*zktx.Transaction, error) {
	tx, err := zktx.Parse(raw)
	if err != nil {
		s.logger(ctx).Debug().Err(err).Str("func", "ParseTransaction").Msg("invalid envelope")
		return nil, invalidInput(err, "invalid transaction envelope")
	}
	return tx, nil
}

// TransactionTypedData returns the typed data the sender of tx signs and its
// digest.
func (s *CodecService) TransactionTypedData(ctx context.Context, tx *zktx.Transaction) (*eip712.TypedData, common.Hash, error) {
	typedData, err := zktx.TypedData(tx)
	if err != nil {
		s.logger(ctx).Debug().Err(err).Str("func", "TransactionTypedData").Msg("invalid transaction")
		return nil, common.Hash{}, invalidInput(err, "invalid transaction")
	}
	digest, err := zktx.SignedDigest(tx)
	if err != nil {
		return nil, common.Hash{}, invalidInput(err, "invalid transaction")
	}
	return typedData, digest, nil
}

func (s *CodecService) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.TransactionModel, error) {
	if s.journal == nil {
		return nil, domain.NewError(domain.ErrorCodeResourceNotFound, errors.New("no transaction journal configured"), domain.WithMsg("transaction not found"))
	}
	record, err := s.journal.FindByID(ctx, id)
	if err != nil {
		return nil, journalLookupError(err)
	}
	return record, nil
}

func (s *CodecService) GetTransactionByHash(ctx context.Context, hash common.Hash) (*domain.TransactionModel, error) {
	if s.journal == nil {
		return nil, domain.NewError(domain.ErrorCodeResourceNotFound, errors.New("no transaction journal configured"), domain.WithMsg("transaction not found"))
	}
	record, err := s.journal.FindByHash(ctx, hash)
	if err != nil {
		return nil, journalLookupError(err)
	}
	return record, nil
}

func (s *CodecService) ListTransactions(ctx context.Context, sender common.Address, limit int) ([]*domain.TransactionModel, error) {
	if s.journal == nil {
		return []*domain.TransactionModel{}, nil
	}
	records, err := s.journal.FindBySender(ctx, sender, limit)
	if err != nil {
		s.logger(ctx).Error().Err(err).Str("sender", sender.Hex()).Msg("failed to list transactions")
		return nil, internalError(err, "failed to list transactions")
	}
	return records, nil
}

func (s *CodecService) record(ctx context.Context, tx *zktx.Transaction, raw []byte, status domain.TxStatus, hash *common.Hash) (*domain.TransactionModel, error) {
	if s.journal == nil {
		return nil, nil
	}

	record := &domain.TransactionModel{
		Nonce:  orZeroString(tx),
		Raw:    raw,
		Status: status,
	}
	if tx.ChainID != nil {
		record.ChainID = tx.ChainID.Int64()
	}
	if tx.From != nil {
		record.FromAddress = tx.From.Hex()
	}
	if tx.To != nil {
		to := tx.To.Hex()
		record.ToAddress = &to
	}
	if hash != nil {
		h := hash.Hex()
		record.TxHash = &h
	}

	if err := s.journal.Create(ctx, record); err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to journal transaction")
		return nil, internalError(err, "failed to record transaction")
	}
	return record, nil
}

// updateStatus is best effort: the envelope has already left the service.
func (s *CodecService) updateStatus(ctx context.Context, record *domain.TransactionModel, status domain.TxStatus, hash *common.Hash, errMsg *string) {
	if s.journal == nil || record == nil {
		return
	}
	if err := s.journal.UpdateStatus(ctx, record.ID, status, hash, errMsg); err != nil {
		s.logger(ctx).Error().Err(err).
			Str("id", record.ID.String()).
			Str("status", string(status)).
			Msg("failed to update transaction status")
		return
	}
	record.Status = status
	if hash != nil {
		h := hash.Hex()
		record.TxHash = &h
	}
	if status == domain.TxStatusFailed {
		record.ErrMsg = errMsg
	}
}

func orZeroString(tx *zktx.Transaction) string {
	if tx.Nonce == nil {
		return "0"
	}
	return tx.Nonce.String()
}

func journalLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewError(domain.ErrorCodeResourceNotFound, err, domain.WithMsg("transaction not found"))
	}
	return internalError(fmt.Errorf("journal lookup: %w", err), "failed to load transaction")
}
