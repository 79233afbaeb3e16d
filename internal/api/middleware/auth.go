package middleware

import (
	"context"
	"net/http"
	"strings"

	"linux_challenge/internal/common"
	"linux_challenge/internal/common/security"
	"linux_challenge/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	ActorIDCtxKey contextKey = "actorID"
	RoleCtxKey    contextKey = "role"
)

func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		actorID, err := security.GetActorIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		role, err := security.GetRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ActorIDCtxKey, actorID)
		ctx = context.WithValue(ctx, RoleCtxKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func OperatorOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(RoleCtxKey).(string)
		if !ok || role != model.RoleOperator {
			common.RespondWithError(w, http.StatusForbidden, "Operator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ParticipantOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(RoleCtxKey).(string)
		if !ok || role != model.RoleParticipant {
			common.RespondWithError(w, http.StatusForbidden, "Participant access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetActorIDFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(ActorIDCtxKey).(string)
	return actorID, ok
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleCtxKey).(string)
	return role, ok
}
