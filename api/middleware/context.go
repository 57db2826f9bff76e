package middleware

import "context"

type contextKey string

const (
	ctxCedula     contextKey = "cedula"
	ctxEsVendedor contextKey = "es_vendedor"
	ctxVendedorID contextKey = "id_vendedor"
	ctxAccessID   contextKey = "access_id"
)

func CedulaFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCedula).(string); ok {
		return v
	}
	return ""
}

func EsVendedorFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxEsVendedor).(bool); ok {
		return v
	}
	return false
}

// VendedorIDFromContext returns nil for accounts that are not sellers.
func VendedorIDFromContext(ctx context.Context) *int64 {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxVendedorID).(int64); ok {
		return &v
	}
	return nil
}

// AccessIDFromContext returns the jti of the current access token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithCedula injects the account identifier into the context.
func WithCedula(ctx context.Context, cedula string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCedula, cedula)
}

// WithVendedorID injects the seller identifier into the context for downstream handlers.
func WithVendedorID(ctx context.Context, vendedorID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxVendedorID, vendedorID)
}
