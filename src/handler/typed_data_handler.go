package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethaccount/zksync/eip712"
	"github.com/ethaccount/zksync/signature"
	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/src/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type TypedDataHandler struct {
	codec  *service.CodecService
	signer *service.SignerService
}

func NewTypedDataHandler(codec *service.CodecService, signer *service.SignerService) *TypedDataHandler {
	return &TypedDataHandler{
		codec:  codec,
		signer: signer,
	}
}

func (h *TypedDataHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "typed_data").Logger()
	return &l
}

// ResolveTypedDataResponse is the typed data with names replaced by addresses.
type ResolveTypedDataResponse struct {
	Domain  eip712.Domain `json:"domain"`
	Message interface{}   `json:"message"`
}

// SignTypedDataResponse carries the server signature over a typed-data digest.
type SignTypedDataResponse struct {
	Digest    common.Hash         `json:"digest"`
	Signature signature.Signature `json:"signature"`
	Signer    common.Address      `json:"signer"`
}

// bindTypedData decodes an eth_signTypedData_v4 document. Message numbers
// are kept as json.Number.
func bindTypedData(c *gin.Context) (*eip712.TypedData, error) {
	var req eip712.TypedData
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("Invalid request payload"))
	}
	if len(req.Types) == 0 {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("missing types"), domain.WithMsg("types is required"))
	}
	if req.Message == nil {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("missing message"), domain.WithMsg("message is required"))
	}
	return &req, nil
}

func checkPrimaryType(req *eip712.TypedData, derived string) error {
	if req.PrimaryType == "" || req.PrimaryType == derived {
		return nil
	}
	return domain.NewError(domain.ErrorCodeParameterInvalid,
		fmt.Errorf("primaryType %q does not match derived primary type %q", req.PrimaryType, derived),
		domain.WithMsg(fmt.Sprintf("primaryType must be %s", derived)))
}

// Hash godoc
// @Summary Hash typed data
// @Description Returns the EIP-712 digest of a typed-data document with its domain separator, struct hash and encoded type
// @Tags typed-data
// @Accept json
// @Produce json
// @Param request body eip712.TypedData true "Typed data"
// @Success 200 {object} StandardResponse{data=service.TypedDataHash}
// @Failure 400 {object} StandardResponse
// @Router /typed-data/hash [post]
func (h *TypedDataHandler) Hash(c *gin.Context) {
	ctx := c.Request.Context()
	logger := h.logger(ctx).With().Str("func", "Hash").Logger()

	req, err := bindTypedData(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.codec.HashTypedData(ctx, req.Domain, req.Types, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := checkPrimaryType(req, result.PrimaryType); err != nil {
		respondWithError(c, err)
		return
	}

	logger.Debug().Str("digest", result.Hash.Hex()).Msg("typed data hashed")
	respondWithSuccess(c, result)
}

// Payload godoc
// @Summary Build a wallet signing payload
// @Description Validates typed data and returns the document eth_signTypedData_v4 expects
// @Tags typed-data
// @Accept json
// @Produce json
// @Param request body eip712.TypedData true "Typed data"
// @Success 200 {object} StandardResponse{data=eip712.TypedData}
// @Failure 400 {object} StandardResponse
// @Router /typed-data/payload [post]
func (h *TypedDataHandler) Payload(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := bindTypedData(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payload, err := h.codec.TypedDataPayload(ctx, req.Domain, req.Types, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := checkPrimaryType(req, payload.PrimaryType); err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, payload)
}

// Resolve godoc
// @Summary Resolve names in typed data
// @Description Replaces ENS names in address fields and the verifying contract with their addresses
// @Tags typed-data
// @Accept json
// @Produce json
// @Param request body eip712.TypedData true "Typed data"
// @Success 200 {object} StandardResponse{data=ResolveTypedDataResponse}
// @Failure 400 {object} StandardResponse
// @Failure 422 {object} StandardResponse
// @Failure 502 {object} StandardResponse
// @Router /typed-data/resolve [post]
func (h *TypedDataHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()
	logger := h.logger(ctx).With().Str("func", "Resolve").Logger()

	req, err := bindTypedData(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resolvedDomain, message, err := h.codec.ResolveTypedData(ctx, req.Domain, req.Types, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Debug().Msg("typed data names resolved")
	respondWithSuccess(c, ResolveTypedDataResponse{
		Domain:  resolvedDomain,
		Message: message,
	})
}

// Sign godoc
// @Summary Sign typed data with the server key
// @Tags typed-data
// @Accept json
// @Produce json
// @Param X-API-Secret header string false "API secret, when one is configured"
// @Param request body eip712.TypedData true "Typed data"
// @Success 200 {object} StandardResponse{data=SignTypedDataResponse}
// @Failure 400 {object} StandardResponse
// @Failure 401 {object} StandardResponse
// @Router /typed-data/sign [post]
func (h *TypedDataHandler) Sign(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := bindTypedData(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sig, digest, err := h.signer.SignTypedData(ctx, req.Domain, req.Types, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, SignTypedDataResponse{
		Digest:    digest,
		Signature: sig,
		Signer:    h.signer.Address(),
	})
}
