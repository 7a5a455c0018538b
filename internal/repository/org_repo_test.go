//go:build !integration && !e2e

package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/testutil"
	"go.uber.org/zap"
)

func newRepo(t *testing.T) *OrgRepo {
	t.Helper()
	return NewOrgRepository(testutil.NewTestDB(t), zap.NewNop())
}

func TestOrgRepo_InsertAndFindByID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()

	require.NoError(t, repo.Insert(ctx, org))
	for i := range org.Models {
		require.NoError(t, repo.AddModel(ctx, org.ID, &org.Models[i]))
	}
	for i := range org.AccessTokens {
		require.NoError(t, repo.AddAccessToken(ctx, org.ID, &org.AccessTokens[i]))
	}

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, org.Name, got.Name)
	assert.False(t, got.Deleted)
	assert.Len(t, got.Models, 2)
	assert.Len(t, got.Members, 1)
	require.Len(t, got.AccessTokens, 1)
	assert.Equal(t, []models.Scope{models.ScopePromptModelSuggestion}, got.AccessTokens[0].Scopes)
}

func TestOrgRepo_FindByID_Missing(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrgRepo_RouterRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()

	require.NoError(t, repo.Insert(ctx, org))
	for i := range org.Routers {
		require.NoError(t, repo.InsertRouter(ctx, org.ID, &org.Routers[i]))
	}

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, got.Routers, 3)

	classify := got.FindRouter(org.Routers[1].ID)
	require.NotNil(t, classify)
	require.Len(t, classify.Categories, 2)
	assert.Equal(t, "chitchat", classify.Categories[0].Label)
	assert.Equal(t, "coding", classify.Categories[1].Label)

	sentences := got.FindRouter(org.Routers[2].ID)
	require.NotNil(t, sentences)
	require.Len(t, sentences.Sentences, 2)
	assert.True(t, sentences.Sentences[0].Exact)
	assert.InDelta(t, 0.8, sentences.Sentences[1].CosineSimilarityTemperature, 1e-9)
	assert.Equal(t, models.NoMatchBestEffort, sentences.NoMatchPolicyOrDefault())
}

func TestOrgRepo_UpdateRouter_ReplacesLists(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()

	require.NoError(t, repo.Insert(ctx, org))
	rt := &org.Routers[2]
	require.NoError(t, repo.InsertRouter(ctx, org.ID, rt))

	rt.Name = "sentences-v2"
	rt.OnNoMatch = models.NoMatchError
	rt.Sentences = []models.Sentence{
		{Text: "goodbye", Exact: true, ModelID: org.Models[0].ID},
	}
	require.NoError(t, repo.UpdateRouter(ctx, org.ID, rt))

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	updated := got.FindRouter(rt.ID)
	require.NotNil(t, updated)
	assert.Equal(t, "sentences-v2", updated.Name)
	assert.Equal(t, models.NoMatchError, updated.OnNoMatch)
	require.Len(t, updated.Sentences, 1)
	assert.Equal(t, "goodbye", updated.Sentences[0].Text)
}

func TestOrgRepo_UpdateRouter_MissingRouter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()
	require.NoError(t, repo.Insert(ctx, org))

	err := repo.UpdateRouter(ctx, org.ID, &org.Routers[0])
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOrgRepo_SoftDeletes(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()

	require.NoError(t, repo.Insert(ctx, org))
	require.NoError(t, repo.InsertRouter(ctx, org.ID, &org.Routers[0]))

	require.NoError(t, repo.SoftDeleteRouter(ctx, org.ID, org.Routers[0].ID))
	require.NoError(t, repo.SoftDelete(ctx, org.ID))

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "soft delete must keep the row")
	assert.True(t, got.Deleted)
	require.Len(t, got.Routers, 1)
	assert.True(t, got.Routers[0].Deleted)
	assert.False(t, got.Routers[0].Usable())
}

func TestOrgRepo_Rename(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()
	require.NoError(t, repo.Insert(ctx, org))

	require.NoError(t, repo.Rename(ctx, org.ID, "acme-renamed"))

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme-renamed", got.Name)

	assert.ErrorIs(t, repo.Rename(ctx, "nope", "x"), sql.ErrNoRows)
}

func TestOrgRepo_ModelsAndTokens(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	org := testutil.NewOrganization()
	require.NoError(t, repo.Insert(ctx, org))

	require.NoError(t, repo.AddModel(ctx, org.ID, &org.Models[0]))
	require.NoError(t, repo.AddAccessToken(ctx, org.ID, &org.AccessTokens[0]))

	require.NoError(t, repo.RemoveModel(ctx, org.ID, org.Models[0].ID))
	require.NoError(t, repo.RemoveAccessToken(ctx, org.ID, org.AccessTokens[0].Token))

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Models)
	assert.Empty(t, got.AccessTokens)

	assert.ErrorIs(t, repo.RemoveModel(ctx, org.ID, "nope"), sql.ErrNoRows)
	assert.ErrorIs(t, repo.RemoveAccessToken(ctx, org.ID, "nope"), sql.ErrNoRows)
}
