package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"crateaudit/core/auth"
	"crateaudit/core/library"
	"crateaudit/logger"
	"crateaudit/repository"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
)

var errNoUser = errors.New("user not found in context")

// APIHandler 处理所有API请求
type APIHandler struct {
	users     repository.UserRepository
	libraries *library.Service
	tokens    *auth.TokenIssuer
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(users repository.UserRepository, libraries *library.Service, tokens *auth.TokenIssuer) *APIHandler {
	return &APIHandler{users: users, libraries: libraries, tokens: tokens}
}

// AuthMiddleware validates the bearer token and puts the user into the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	}
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	return context.WithValue(ctx, usernameKey, claims.Username)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, errNoUser
	}
	return userID, nil
}

// writeJSON 写入 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", logger.ErrorField(err))
	}
}
