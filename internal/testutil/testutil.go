// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"

	"database/sql"

	"github.com/google/uuid"
	"github.com/user/llm-router-go/internal/database"
	"github.com/user/llm-router-go/internal/models"
)

// NewTestDB opens a migrated in-memory database that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// NewOrganization builds a populated organization fixture: two models, one
// access token with routing scope, and one active router of each strategy.
func NewOrganization() *models.Organization {
	fastID := uuid.NewString()
	smartID := uuid.NewString()

	return &models.Organization{
		ID:   uuid.NewString(),
		Name: "acme",
		Members: []models.OrgMember{
			{CustomerID: "cust-1", Role: models.MemberRoleOwner},
		},
		Models: []models.ModelObject{
			{ID: fastID, ModelName: "small-fast", DisplayName: "Small Fast", RegisteredBy: "cust-1"},
			{ID: smartID, ModelName: "large-smart", DisplayName: "Large Smart", RegisteredBy: "cust-1"},
		},
		AccessTokens: []models.AccessToken{
			{
				Token:     "tok-route",
				CreatedBy: "cust-1",
				Scopes:    []models.Scope{models.ScopePromptModelSuggestion},
			},
		},
		Routers: []models.Router{
			{
				ID:              uuid.NewString(),
				Name:            "single",
				Active:          true,
				MaxPromptLength: 2048,
				UseSingleModel:  true,
				ModelID:         fastID,
			},
			{
				ID:                      uuid.NewString(),
				Name:                    "classify",
				Active:                  true,
				MaxPromptLength:         2048,
				UsePromptClassification: true,
				Categories: []models.Category{
					{Label: "chitchat", ModelID: fastID},
					{Label: "coding", ModelID: smartID},
				},
			},
			{
				ID:                  uuid.NewString(),
				Name:                "sentences",
				Active:              true,
				MaxPromptLength:     2048,
				UseSentenceMatching: true,
				Sentences: []models.Sentence{
					{Text: "hello", Exact: true, ModelID: fastID},
					{Text: "write a function", UseCosineSimilarity: true, CosineSimilarityTemperature: 0.8, ModelID: smartID},
				},
			},
		},
	}
}
