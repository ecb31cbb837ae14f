package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethaccount/zksync/eip712"
	"github.com/ethaccount/zksync/signature"
	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/src/service"
	"github.com/ethaccount/zksync/zktx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	codec  *service.CodecService
	signer *service.SignerService
}

func NewTransactionHandler(codec *service.CodecService, signer *service.SignerService) *TransactionHandler {
	return &TransactionHandler{
		codec:  codec,
		signer: signer,
	}
}

func (h *TransactionHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "transaction").Logger()
	return &l
}

// SerializeTransactionRequest represents the request payload for serialization
type SerializeTransactionRequest struct {
	Transaction *zktx.Transaction    `json:"transaction" binding:"required"`
	Signature   *signature.Signature `json:"signature"`
}

// SerializeTransactionResponse represents the serialized envelope
type SerializeTransactionResponse struct {
	Raw  hexutil.Bytes `json:"raw"`
	ID   *uuid.UUID    `json:"id,omitempty"`
	Hash *common.Hash  `json:"hash,omitempty"`
}

// ParseTransactionRequest represents the request payload for parsing
type ParseTransactionRequest struct {
	Raw hexutil.Bytes `json:"raw" binding:"required"`
}

// ParseTransactionResponse represents a decoded envelope
type ParseTransactionResponse struct {
	Transaction *zktx.Transaction    `json:"transaction"`
	Hash        *common.Hash         `json:"hash,omitempty"`
	Signature   *signature.Signature `json:"signature,omitempty"`
}

// TransactionTypedDataRequest represents the request payload for the signing payload
type TransactionTypedDataRequest struct {
	Transaction *zktx.Transaction `json:"transaction" binding:"required"`
}

// TransactionTypedDataResponse is the typed data of a transaction and its digest
type TransactionTypedDataResponse struct {
	TypedData *eip712.TypedData `json:"typedData"`
	Digest    common.Hash       `json:"digest"`
}

// SignTransactionRequest represents the request payload for server-side signing.
// Amount, in ETH, overrides the transaction value when set.
type SignTransactionRequest struct {
	Transaction *zktx.Transaction `json:"transaction" binding:"required"`
	Amount      *decimal.Decimal  `json:"amount" binding:"omitempty,numeric"`
}

// SignTransactionResponse represents a signed, and possibly broadcast, transaction
type SignTransactionResponse struct {
	Transaction *zktx.Transaction   `json:"transaction"`
	Raw         hexutil.Bytes       `json:"raw"`
	Hash        common.Hash         `json:"hash"`
	Signature   signature.Signature `json:"signature"`
	ID          *uuid.UUID          `json:"id,omitempty"`
	Broadcast   bool                `json:"broadcast"`
}

// ListTransactionsQuery filters journal records
type ListTransactionsQuery struct {
	Sender string `form:"sender" binding:"omitempty,eth_addr"`
	Hash   string `form:"hash" binding:"omitempty,hexadecimal,len=66"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func invalidPayload(err error) error {
	return domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("Invalid request payload"))
}

// Serialize godoc
// @Summary Serialize a transaction
// @Description Encodes a transaction as a 0x71 envelope, signed when a signature or custom signature is given
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body SerializeTransactionRequest true "Transaction"
// @Success 201 {object} StandardResponse{data=SerializeTransactionResponse}
// @Failure 400 {object} StandardResponse
// @Router /transactions/serialize [post]
func (h *TransactionHandler) Serialize(c *gin.Context) {
	ctx := c.Request.Context()
	logger := h.logger(ctx).With().Str("func", "Serialize").Logger()

	var req SerializeTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug().Err(err).Msg("invalid request payload")
		respondWithError(c, invalidPayload(err))
		return
	}

	raw, record, err := h.codec.SerializeTransaction(ctx, req.Transaction, req.Signature)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response := SerializeTransactionResponse{Raw: raw}
	if record != nil {
		response.ID = &record.ID
		if record.TxHash != nil {
			hash := common.HexToHash(*record.TxHash)
			response.Hash = &hash
		}
	} else if req.Signature != nil || len(req.Transaction.CustomSignature) > 0 {
		hash, err := zktx.TxHash(req.Transaction, req.Signature)
		if err == nil {
			response.Hash = &hash
		}
	}

	respondWithSuccessAndStatus(c, http.StatusCreated, response)
}

// Parse godoc
// @Summary Parse a transaction envelope
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body ParseTransactionRequest true "Raw envelope"
// @Success 200 {object} StandardResponse{data=ParseTransactionResponse}
// @Failure 400 {object} StandardResponse
// @Router /transactions/parse [post]
func (h *TransactionHandler) Parse(c *gin.Context) {
	ctx := c.Request.Context()

	var req ParseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidPayload(err))
		return
	}

	tx, err := h.codec.ParseTransaction(ctx, req.Raw)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, ParseTransactionResponse{
		Transaction: tx,
		Hash:        tx.Hash,
		Signature:   tx.Signature,
	})
}

// TypedData godoc
// @Summary Build the signing payload of a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body TransactionTypedDataRequest true "Transaction"
// @Success 200 {object} StandardResponse{data=TransactionTypedDataResponse}
// @Failure 400 {object} StandardResponse
// @Router /transactions/typed-data [post]
func (h *TransactionHandler) TypedData(c *gin.Context) {
	ctx := c.Request.Context()

	var req TransactionTypedDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidPayload(err))
		return
	}

	typedData, digest, err := h.codec.TransactionTypedData(ctx, req.Transaction)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, TransactionTypedDataResponse{
		TypedData: typedData,
		Digest:    digest,
	})
}

// Sign godoc
// @Summary Sign a transaction with the server key
// @Description Fills sender, chain id, nonce, fee and gas limit from the node when absent, signs and serializes. With broadcast=true the envelope is sent to the L2 node.
// @Tags transactions
// @Accept json
// @Produce json
// @Param X-API-Secret header string false "API secret, when one is configured"
// @Param broadcast query bool false "Send the signed transaction"
// @Param request body SignTransactionRequest true "Transaction"
// @Success 200 {object} StandardResponse{data=SignTransactionResponse}
// @Failure 400 {object} StandardResponse
// @Failure 401 {object} StandardResponse
// @Failure 502 {object} StandardResponse
// @Router /transactions/sign [post]
func (h *TransactionHandler) Sign(c *gin.Context) {
	ctx := c.Request.Context()
	logger := h.logger(ctx).With().Str("func", "Sign").Logger()

	var req SignTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug().Err(err).Msg("invalid request payload")
		respondWithError(c, invalidPayload(err))
		return
	}

	broadcast := false
	if raw := c.Query("broadcast"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("broadcast must be a boolean")))
			return
		}
		broadcast = parsed
	}

	tx := req.Transaction
	if req.Amount != nil {
		value, err := service.ParseUnits(*req.Amount, service.EtherDecimals)
		if err != nil {
			respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("invalid amount")))
			return
		}
		withValue := *tx
		withValue.Value = value
		tx = &withValue
	}

	var signed *service.SignedTransaction
	var err error
	if broadcast {
		signed, err = h.signer.SendTransaction(ctx, tx)
	} else {
		signed, err = h.signer.SignTransaction(ctx, tx)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	response := SignTransactionResponse{
		Transaction: signed.Transaction,
		Raw:         signed.Raw,
		Hash:        signed.Hash,
		Signature:   signed.Signature,
		Broadcast:   broadcast,
	}
	if signed.Record != nil {
		response.ID = &signed.Record.ID
	}

	logger.Info().
		Str("tx_hash", signed.Hash.Hex()).
		Bool("broadcast", broadcast).
		Msg("transaction signed")

	respondWithSuccess(c, response)
}

// GetTransaction godoc
// @Summary Get a journaled transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} StandardResponse{data=domain.TransactionModel}
// @Failure 400 {object} StandardResponse
// @Failure 404 {object} StandardResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("invalid transaction id")))
		return
	}

	record, err := h.codec.GetTransaction(ctx, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, record)
}

// ListTransactions godoc
// @Summary List journaled transactions
// @Description Filters by sender, or looks up a single transaction by hash
// @Tags transactions
// @Produce json
// @Param sender query string false "Sender address"
// @Param hash query string false "Transaction hash"
// @Param limit query int false "Maximum number of records"
// @Success 200 {object} StandardResponse{data=[]domain.TransactionModel}
// @Failure 400 {object} StandardResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("invalid query")))
		return
	}

	switch {
	case query.Hash != "":
		record, err := h.codec.GetTransactionByHash(ctx, common.HexToHash(query.Hash))
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithSuccess(c, []*domain.TransactionModel{record})
	case query.Sender != "":
		records, err := h.codec.ListTransactions(ctx, common.HexToAddress(query.Sender), query.Limit)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondWithSuccess(c, records)
	default:
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("missing filter"), domain.WithMsg("sender or hash is required")))
	}
}
