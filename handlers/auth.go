package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Nerzal/gocloak/v13"
	"github.com/google/uuid"

	"github.com/kova98/userlens.api/models"
)

type AuthHandler struct {
	keycloak *gocloak.GoCloak
	realm    string
}

func NewAuthHandler(keycloak *gocloak.GoCloak, realm string) *AuthHandler {
	return &AuthHandler{
		keycloak: keycloak,
		realm:    realm,
	}
}

// GetOperator validates the bearer token against keycloak and resolves the caller.
func (h *AuthHandler) GetOperator(ctx context.Context, authHeader string) Result {
	if authHeader == "" {
		return Unauthorized("Missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Unauthorized("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return Unauthorized("Invalid token")
	}

	if _, _, err := h.keycloak.DecodeAccessToken(ctx, token, h.realm); err != nil {
		return Unauthorized("Invalid token")
	}

	userInfo, err := h.keycloak.GetUserInfo(ctx, token, h.realm)
	if err != nil {
		return InternalError(err, "Failed to get user info")
	}
	if userInfo == nil || userInfo.Sub == nil {
		return Unauthorized("User not found")
	}

	id, err := uuid.Parse(*userInfo.Sub)
	if err != nil {
		slog.Error("Failed to parse operator ID from Keycloak", "sub", *userInfo.Sub, "error", err)
		return InternalError(err, "Failed to parse operator ID from Keycloak")
	}

	operator := models.Operator{ID: id}
	switch {
	case userInfo.PreferredUsername != nil && *userInfo.PreferredUsername != "":
		operator.Name = *userInfo.PreferredUsername
	case userInfo.Email != nil:
		// fall back to the local part of the email
		operator.Name = strings.Split(*userInfo.Email, "@")[0]
	}

	return Ok(operator)
}
