package middleware

import (
	"context"
	"net/http"

	"snapfind/internal/common"
	"snapfind/internal/http/response"
)

type contextKey string

const (
	ContextUserIDKey    contextKey = "user_id"
	ContextCompanyIDKey contextKey = "company_id"
)

// Identity trusts the gateway-injected X-User-ID and X-Company-ID headers.
// Session issuance and verification happen upstream.
type Identity struct{}

func NewIdentity() *Identity {
	return &Identity{}
}

func (m *Identity) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := common.ParseUUID(r.Header.Get("X-User-ID"))
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing or invalid X-User-ID header", err))
			return
		}
		ctx := context.WithValue(r.Context(), ContextUserIDKey, userID)
		if companyID, err := common.ParseUUID(r.Header.Get("X-Company-ID")); err == nil {
			ctx = context.WithValue(ctx, ContextCompanyIDKey, companyID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(common.UUID)
	return id, ok
}

func CompanyIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextCompanyIDKey).(common.UUID)
	return id, ok
}
