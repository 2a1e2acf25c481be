package httpx

import "context"

type ctxKey string

const (
	// CtxKeySubject holds the authenticated administrator's email.
	CtxKeySubject ctxKey = "subject"

	// CtxKeyClientIP holds the address resolved by RealIP.
	CtxKeyClientIP ctxKey = "client_ip"
)

// WithSubject stores the authenticated subject for rate limiting and logs.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CtxKeySubject, subject)
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(CtxKeySubject).(string)
	return s
}

// WithClientIP stores the resolved client address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, CtxKeyClientIP, ip)
}

// ClientIPFromContext returns the address stored by RealIP, if any.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(CtxKeyClientIP).(string)
	return ip
}
