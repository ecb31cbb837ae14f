package service

import (
	"errors"
	"fmt"

	"github.com/ethaccount/zksync/eip712"
	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/zktx"
)

// invalidInput classifies an error returned by the core codecs. Domain
// errors pass through, unresolved names become NameUnresolved and anything
// else is a bad parameter.
func invalidInput(err error, msg string) error {
	var domainErr domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var unresolved *eip712.UnresolvedNameError
	if errors.As(err, &unresolved) {
		return domain.NewError(domain.ErrorCodeNameUnresolved, err,
			domain.WithMsg(unresolved.Error()),
			domain.WithDetail(map[string]interface{}{"name": unresolved.Name}))
	}

	opts := []domain.ErrorOption{domain.WithMsg(fmt.Sprintf("%s: %v", msg, err))}

	var valueErr *eip712.ValueError
	var lengthErr *zktx.PaymasterParamsLengthError
	switch {
	case errors.As(err, &valueErr):
		opts = append(opts, domain.WithDetail(map[string]interface{}{
			"type": valueErr.Type,
			"path": valueErr.Path,
		}))
	case errors.As(err, &lengthErr):
		opts = append(opts, domain.WithDetail(map[string]interface{}{
			"paymasterParamsLength": lengthErr.Length,
		}))
	}

	return domain.NewError(domain.ErrorCodeParameterInvalid, err, opts...)
}

func internalError(err error, msg string) error {
	return domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg(msg))
}
