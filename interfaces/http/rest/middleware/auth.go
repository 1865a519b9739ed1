package middleware

import (
	"net/http"
	"strings"

	"smartproduct-backend/infrastructure/config"
	"smartproduct-backend/pkg/auth"
	"smartproduct-backend/pkg/common"

	"go.uber.org/zap"
)

// Authenticate resolves the caller's ticket and attaches it to the request
// context. In Lambda mode the API Gateway authorizer has already validated
// the token, so the ticket is read from the gateway's context headers; in
// local mode the bearer token is validated directly.
func Authenticate(cfg *config.Config, logger *zap.Logger) func(next http.Handler) http.Handler {
	if cfg.IsLambda {
		return authenticateFromGateway(logger)
	}

	resolver, err := auth.NewJWTResolver(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		logger.Error("jwt resolver unavailable", zap.Error(err))
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				common.RespondError(w, http.StatusUnauthorized, "AccessDeniedException",
					"authentication unavailable")
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				common.RespondError(w, http.StatusUnauthorized, "AccessDeniedException",
					"missing or malformed authorization header")
				return
			}

			ticket, err := resolver.Resolve(token)
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized, "AccessDeniedException",
					err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithTicket(r.Context(), ticket)))
		})
	}
}

func authenticateFromGateway(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-API-Gateway-Authorized") != "true" {
				common.RespondError(w, http.StatusUnauthorized, "AccessDeniedException",
					"request not authorized by gateway")
				return
			}

			sub := r.Header.Get("X-User-Sub")
			if sub == "" {
				logger.Warn("gateway-authorized request without user context")
				common.RespondError(w, http.StatusUnauthorized, "AccessDeniedException",
					"missing user context")
				return
			}

			var groups []string
			if raw := r.Header.Get("X-User-Groups"); raw != "" {
				groups = strings.Split(raw, ",")
			}

			ticket := &auth.Ticket{Sub: sub, Groups: groups}
			next.ServeHTTP(w, r.WithContext(auth.WithTicket(r.Context(), ticket)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
