package logger

import (
	"context"

	"go.uber.org/zap"
)

type exchangeKey struct{}

// ExchangeInfo identifies a single exchange attempt in logs and sentry events
type ExchangeInfo struct {
	ExchangeID    string
	UserID        string
	WalletAddress string
	TokenTypeID   string
}

// Fields returns the non-empty identity fields
func (i ExchangeInfo) Fields() []zap.Field {
	fields := make([]zap.Field, 0, 4)
	for _, f := range []struct{ key, value string }{
		{"exchange_id", i.ExchangeID},
		{"user_id", i.UserID},
		{"wallet_address", i.WalletAddress},
		{"token_type_id", i.TokenTypeID},
	} {
		if f.value != "" {
			fields = append(fields, zap.String(f.key, f.value))
		}
	}
	return fields
}

// ContextWithExchange attaches info to ctx. Every *Ctx call made with the returned
// context, including ones in the wallet and resolver, carries the exchange fields.
// A later call replaces the previous info.
func ContextWithExchange(ctx context.Context, info ExchangeInfo) context.Context {
	return context.WithValue(ctx, exchangeKey{}, info)
}

func exchangeFromContext(ctx context.Context) (ExchangeInfo, bool) {
	info, ok := ctx.Value(exchangeKey{}).(ExchangeInfo)
	return info, ok
}
