//go:build !integration && !e2e

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/routererrors"
	"github.com/user/llm-router-go/internal/testutil"
)

func TestAuthorizeToken(t *testing.T) {
	org := testutil.NewOrganization()

	tests := []struct {
		name     string
		token    string
		scopes   []models.Scope
		required []models.Scope
		wantErr  error
	}{
		{
			name:     "routing scope grants routing",
			token:    "tok-route",
			required: RoutingScopes,
		},
		{
			name:     "admin scope grants routing",
			token:    "tok-admin",
			scopes:   []models.Scope{models.ScopeAdmin},
			required: RoutingScopes,
		},
		{
			name:     "manage_models only is insufficient",
			token:    "tok-models",
			scopes:   []models.Scope{models.ScopeManageModels},
			required: RoutingScopes,
			wantErr:  routererrors.ErrUnauthorizedScopes,
		},
		{
			name:     "unknown token",
			token:    "tok-unknown",
			required: RoutingScopes,
			wantErr:  routererrors.ErrUnauthorizedToken,
		},
		{
			name:     "empty token never matches",
			token:    "",
			required: RoutingScopes,
			wantErr:  routererrors.ErrUnauthorizedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.scopes != nil {
				org.AccessTokens = append(org.AccessTokens, models.AccessToken{
					Token:  tt.token,
					Scopes: tt.scopes,
				})
			}

			token, err := AuthorizeToken(org, tt.token, tt.required)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, routererrors.IsUnauthorized(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token.Token)
		})
	}
}

func TestAuthorizeToken_ExactMatchOnly(t *testing.T) {
	org := testutil.NewOrganization()

	// Prefixes, suffixes and case variants of a valid token must not match.
	for _, raw := range []string{"tok-rout", "tok-routee", "TOK-ROUTE", " tok-route"} {
		_, err := AuthorizeToken(org, raw, RoutingScopes)
		assert.ErrorIs(t, err, routererrors.ErrUnauthorizedToken, raw)
	}
}
