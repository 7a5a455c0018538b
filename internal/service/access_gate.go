// Package service implements the routing decision engine and the
// organization management services on top of the repository layer.
package service

import (
	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/routererrors"
)

// RoutingScopes are the scopes that authorize a routing decision. The token
// needs any one of them.
var RoutingScopes = []models.Scope{
	models.ScopePromptModelSuggestion,
	models.ScopeAdmin,
}

// AuthorizeToken resolves a raw token against the organization's token list
// and checks it carries at least one of the required scopes. Token lookup is
// exact string comparison; an unknown token and an insufficient token return
// distinct unauthorized errors.
func AuthorizeToken(org *models.Organization, rawToken string, required []models.Scope) (*models.AccessToken, error) {
	token := org.FindAccessToken(rawToken)
	if token == nil {
		return nil, routererrors.ErrUnauthorizedToken
	}
	if !token.HasAnyScope(required) {
		return nil, routererrors.ErrUnauthorizedScopes
	}
	return token, nil
}
