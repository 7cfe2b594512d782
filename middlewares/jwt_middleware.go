package middlewares

import (
	"context"
	"errors"
	"net/http"

	"okrproject/auth"
	"okrproject/errs"
	"okrproject/models"
	"okrproject/okr"
	"okrproject/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type contextKey string

const principalContextKey contextKey = "principal"

// UserLookup resolves the subject of a token.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Authenticator struct {
	tokens  *auth.TokenManager
	users   UserLookup
	revoker auth.Revoker
	log     *zap.Logger
}

func NewAuthenticator(tokens *auth.TokenManager, users UserLookup, revoker auth.Revoker, log *zap.Logger) *Authenticator {
	return &Authenticator{
		tokens:  tokens,
		users:   users,
		revoker: revoker,
		log:     log,
	}
}

// JWTMiddleware rejects requests without a valid, unrevoked token whose
// user still exists, and puts the resolved principal in the context.
func (a *Authenticator) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.HandleMessageResponse(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString, err := auth.ExtractToken(authHeader)
		if err != nil {
			utils.HandleMessageResponse(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := a.tokens.Validate(tokenString)
		if err != nil {
			utils.HandleMessageResponse(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		revoked, err := a.revoker.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			a.log.Error("failed to check token revocation", zap.Error(err))
			utils.HandleMessageResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if revoked {
			utils.HandleMessageResponse(w, "Token has been revoked", http.StatusUnauthorized)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.HandleMessageResponse(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		user, err := a.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				utils.HandleMessageResponse(w, "User no longer exists", http.StatusUnauthorized)
				return
			}
			utils.HandleServiceError(w, a.log, err)
			return
		}

		p := user.Principal()
		p.TokenID = claims.ID
		if claims.ExpiresAt != nil {
			p.TokenExpiresAt = claims.ExpiresAt.Time
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireAdmin must run after JWTMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := okr.RequireAdmin(PrincipalFromContext(r.Context())); err != nil {
			utils.HandleMessageResponse(w, "Admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns nil for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	if p, ok := ctx.Value(principalContextKey).(*models.Principal); ok {
		return p
	}
	return nil
}
