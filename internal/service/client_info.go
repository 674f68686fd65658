package service

import "context"

type clientInfoKey struct{}

// ClientInfo describes the remote client behind a request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// WithClientInfo attaches the request's client details to ctx for audit entries.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFromContext returns the client details carried by ctx, if any.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}
