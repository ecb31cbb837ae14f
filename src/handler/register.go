package handler

import (
	"context"
	"net/http"

	"github.com/ethaccount/zksync/src/service"
	"github.com/gin-gonic/gin"
)

// Services are the dependencies of the API routes. A nil Signer disables
// the signing routes; an empty APISecret leaves them unauthenticated.
type Services struct {
	Codec     *service.CodecService
	Signer    *service.SignerService
	APISecret string
}

func RegisterRoutes(ctx context.Context, router *gin.Engine, services Services) {
	RegisterValidators()

	SetMiddlewares(ctx, router)

	router.NoRoute(func(c *gin.Context) {
		respondWithCustomError(c, http.StatusNotFound, 1002, "route not found", gin.H{"path": c.Request.URL.Path})
	})

	typedDataHandler := NewTypedDataHandler(services.Codec, services.Signer)
	transactionHandler := NewTransactionHandler(services.Codec, services.Signer)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HandleHealthCheck)

		v1.POST("/typed-data/hash", typedDataHandler.Hash)
		v1.POST("/typed-data/payload", typedDataHandler.Payload)
		v1.POST("/typed-data/resolve", typedDataHandler.Resolve)

		v1.GET("/transactions", transactionHandler.ListTransactions)
		v1.GET("/transactions/:id", transactionHandler.GetTransaction)
		v1.POST("/transactions/serialize", transactionHandler.Serialize)
		v1.POST("/transactions/parse", transactionHandler.Parse)
		v1.POST("/transactions/typed-data", transactionHandler.TypedData)

		if services.Signer != nil {
			signing := v1.Group("")
			if services.APISecret != "" {
				signing.Use(SharedSecretMiddleware(services.APISecret))
			}
			signing.POST("/typed-data/sign", typedDataHandler.Sign)
			signing.POST("/transactions/sign", transactionHandler.Sign)
		} else {
			disabled := func(c *gin.Context) {
				respondWithCustomError(c, http.StatusNotImplemented, 1005, "signing is disabled: no private key configured", nil)
			}
			v1.POST("/typed-data/sign", disabled)
			v1.POST("/transactions/sign", disabled)
		}
	}
}
