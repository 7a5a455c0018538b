//go:build !integration && !e2e

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/repository"
	"github.com/user/llm-router-go/internal/routererrors"
	"github.com/user/llm-router-go/internal/testutil"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	calls  int
	scores map[string]float64
	err    error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, candidateLabels []string) ([]models.LabelScore, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.LabelScore, len(candidateLabels))
	for i, label := range candidateLabels {
		out[i] = models.LabelScore{Label: label, Score: f.scores[label]}
	}
	return out, nil
}

type fakeSimilarity struct {
	calls      int
	score      float64
	comparable bool
	err        error
}

func (f *fakeSimilarity) Similarity(_ context.Context, _, _ string) (float64, bool, error) {
	f.calls++
	if f.err != nil {
		return 0, false, f.err
	}
	return f.score, f.comparable, nil
}

func newEngine(classifier ClassificationEngine, similarity SimilarityScorer) *RoutingEngine {
	return NewRoutingEngine(nil, classifier, similarity, nil, zap.NewNop())
}

func singleRouterID(org *models.Organization) string   { return org.Routers[0].ID }
func classifyRouterID(org *models.Organization) string { return org.Routers[1].ID }
func sentenceRouterID(org *models.Organization) string { return org.Routers[2].ID }

func TestDecide_SingleModel_IgnoresPrompt(t *testing.T) {
	org := testutil.NewOrganization()
	classifier := &fakeClassifier{}
	similarity := &fakeSimilarity{}
	engine := newEngine(classifier, similarity)

	for _, prompt := range []string{"", "hello", strings.Repeat("x", 100000)} {
		result, err := engine.Decide(context.Background(), org, singleRouterID(org), prompt)
		require.NoError(t, err)
		assert.Equal(t, models.ResultSingleModel, result.Kind)
		assert.Equal(t, org.Models[0].ID, result.Model.ID)
		assert.Equal(t, prompt, result.Prompt)
		assert.Equal(t, len(prompt), result.PromptSize)
	}
	assert.Zero(t, classifier.calls)
	assert.Zero(t, similarity.calls)
}

func TestDecide_SingleModel_DanglingModel(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[0].ModelID = "gone"
	engine := newEngine(&fakeClassifier{}, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, singleRouterID(org), "hi")
	assert.ErrorIs(t, err, routererrors.ErrModelNotFound)
}

func TestDecide_RouterResolution(t *testing.T) {
	org := testutil.NewOrganization()
	engine := newEngine(&fakeClassifier{}, &fakeSimilarity{})
	ctx := context.Background()

	_, err := engine.Decide(ctx, org, "missing", "hi")
	assert.ErrorIs(t, err, routererrors.ErrRouterNotFound)

	org.Routers[0].Active = false
	_, err = engine.Decide(ctx, org, singleRouterID(org), "hi")
	assert.ErrorIs(t, err, routererrors.ErrRouterUnavailable)

	org.Routers[0].Active = true
	org.Routers[0].Deleted = true
	_, err = engine.Decide(ctx, org, singleRouterID(org), "hi")
	assert.ErrorIs(t, err, routererrors.ErrRouterUnavailable)
}

func TestDecide_LengthGate_BeforeInference(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[1].MaxPromptLength = 10
	classifier := &fakeClassifier{scores: map[string]float64{"chitchat": 0.9}}
	engine := newEngine(classifier, &fakeSimilarity{})
	ctx := context.Background()

	_, err := engine.Decide(ctx, org, classifyRouterID(org), "")
	assert.ErrorIs(t, err, routererrors.ErrPromptLength)

	_, err = engine.Decide(ctx, org, classifyRouterID(org), strings.Repeat("x", 11))
	assert.ErrorIs(t, err, routererrors.ErrPromptLength)

	assert.Zero(t, classifier.calls, "length gate must reject before any inference")

	result, err := engine.Decide(ctx, org, classifyRouterID(org), "short")
	require.NoError(t, err)
	assert.Equal(t, models.ResultClassification, result.Kind)
}

func TestDecide_Classification_FirstLabelWinsTies(t *testing.T) {
	org := testutil.NewOrganization()
	classifier := &fakeClassifier{scores: map[string]float64{"chitchat": 0.7, "coding": 0.7}}
	engine := newEngine(classifier, &fakeSimilarity{})

	result, err := engine.Decide(context.Background(), org, classifyRouterID(org), "tied prompt")
	require.NoError(t, err)
	require.NotNil(t, result.Classification)
	assert.Equal(t, "chitchat", result.Classification.Label)
	assert.Equal(t, org.Models[0].ID, result.Model.ID)
}

func TestDecide_Classification_HigherLaterScoreWins(t *testing.T) {
	org := testutil.NewOrganization()
	classifier := &fakeClassifier{scores: map[string]float64{"chitchat": 0.2, "coding": 0.8}}
	engine := newEngine(classifier, &fakeSimilarity{})

	result, err := engine.Decide(context.Background(), org, classifyRouterID(org), "write me a parser")
	require.NoError(t, err)
	assert.Equal(t, "coding", result.Classification.Label)
	assert.InDelta(t, 0.8, result.Classification.Score, 1e-9)
	assert.Equal(t, org.Models[1].ID, result.Model.ID)
}

func TestDecide_Classification_InferenceFault(t *testing.T) {
	org := testutil.NewOrganization()
	classifier := &fakeClassifier{err: routererrors.Inference("model exploded", assert.AnError)}
	engine := newEngine(classifier, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, classifyRouterID(org), "hi")
	assert.True(t, routererrors.IsInference(err))
}

func TestDecide_Classification_DanglingCategoryModel(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[1].Categories[0].ModelID = "gone"
	classifier := &fakeClassifier{scores: map[string]float64{"chitchat": 0.9, "coding": 0.1}}
	engine := newEngine(classifier, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, classifyRouterID(org), "hi")
	assert.ErrorIs(t, err, routererrors.ErrModelNotFound)
}

func TestDecide_ExactMatch_CaseInsensitive_ShortCircuits(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[2].Sentences = []models.Sentence{
		{Text: "hi", Exact: true, ModelID: org.Models[0].ID},
		{Text: "hi there", UseCosineSimilarity: true, CosineSimilarityTemperature: 0.9, ModelID: org.Models[1].ID},
	}
	similarity := &fakeSimilarity{score: 1.0, comparable: true}
	engine := newEngine(&fakeClassifier{}, similarity)

	result, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "Hi")
	require.NoError(t, err)
	assert.Equal(t, models.ResultExactSentenceMatch, result.Kind)
	assert.Equal(t, org.Models[0].ID, result.Model.ID)
	require.NotNil(t, result.SentenceMatch)
	assert.True(t, result.SentenceMatch.Exact)
	assert.True(t, result.SentenceMatch.AppropriateMatch)
	assert.Zero(t, similarity.calls, "the cosine entry is never evaluated")
}

func TestDecide_Similarity_AboveThreshold(t *testing.T) {
	org := testutil.NewOrganization()
	similarity := &fakeSimilarity{score: 0.92, comparable: true}
	engine := newEngine(&fakeClassifier{}, similarity)

	result, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "implement quicksort please")
	require.NoError(t, err)
	assert.Equal(t, models.ResultSimilaritySentenceMatch, result.Kind)
	assert.Equal(t, org.Models[1].ID, result.Model.ID)
	require.NotNil(t, result.SentenceMatch)
	assert.True(t, result.SentenceMatch.AppropriateMatch)
	assert.InDelta(t, 0.92, result.SentenceMatch.Score, 1e-9)
	assert.InDelta(t, 0.8, result.SentenceMatch.Temperature, 1e-9)
}

func TestDecide_Similarity_NonComparableNeverSimilar(t *testing.T) {
	// A zero-norm or NaN score arrives as comparable=false and must route
	// down the best-effort path even against a zero temperature.
	org := testutil.NewOrganization()
	org.Routers[2].Sentences[1].CosineSimilarityTemperature = 0
	similarity := &fakeSimilarity{score: 0, comparable: false}
	engine := newEngine(&fakeClassifier{}, similarity)

	result, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "anything at all")
	require.NoError(t, err)
	assert.Equal(t, models.ResultSimilaritySentenceMatch, result.Kind)
	assert.False(t, result.SentenceMatch.AppropriateMatch)
}

func TestDecide_LastSentenceFallback_BestEffort(t *testing.T) {
	org := testutil.NewOrganization()
	similarity := &fakeSimilarity{score: 0.1, comparable: true}
	engine := newEngine(&fakeClassifier{}, similarity)

	result, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "nothing like the sentences")
	require.NoError(t, err)
	assert.Equal(t, models.ResultSimilaritySentenceMatch, result.Kind)
	assert.Equal(t, org.Models[1].ID, result.Model.ID, "last candidate's model is returned")
	assert.False(t, result.SentenceMatch.AppropriateMatch)
	assert.InDelta(t, 0.1, result.SentenceMatch.Score, 1e-9)
}

func TestDecide_LastSentenceFallback_ErrorPolicy(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[2].OnNoMatch = models.NoMatchError
	similarity := &fakeSimilarity{score: 0.1, comparable: true}
	engine := newEngine(&fakeClassifier{}, similarity)

	_, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "nothing like the sentences")
	assert.ErrorIs(t, err, routererrors.ErrNoSentenceMatched)
}

func TestDecide_Sentence_NoModeIsValidationError(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[2].Sentences = []models.Sentence{
		{Text: "limbo", ModelID: org.Models[0].ID},
	}
	engine := newEngine(&fakeClassifier{}, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "hi")
	require.True(t, routererrors.IsValidation(err))
	assert.Contains(t, err.Error(), "sentence 0")
}

func TestDecide_Sentence_DanglingModel(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[2].Sentences[0].ModelID = "gone"
	engine := newEngine(&fakeClassifier{}, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "hi")
	assert.ErrorIs(t, err, routererrors.ErrModelNotFound)
}

func TestDecide_ExactOnlyListExhausted(t *testing.T) {
	org := testutil.NewOrganization()
	org.Routers[2].Sentences = []models.Sentence{
		{Text: "ping", Exact: true, ModelID: org.Models[0].ID},
	}
	engine := newEngine(&fakeClassifier{}, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, sentenceRouterID(org), "pong")
	assert.ErrorIs(t, err, routererrors.ErrNoStrategyEnabled)
}

func TestDecide_NoStrategyEnabled(t *testing.T) {
	org := testutil.NewOrganization()
	rt := models.Router{
		ID:              "bare",
		Name:            "bare",
		Active:          true,
		MaxPromptLength: 100,
	}
	org.Routers = append(org.Routers, rt)
	engine := newEngine(&fakeClassifier{}, &fakeSimilarity{})

	_, err := engine.Decide(context.Background(), org, "bare", "hi")
	assert.ErrorIs(t, err, routererrors.ErrNoStrategyEnabled)
	assert.True(t, routererrors.IsValidation(err))
}

func TestDecide_PrecedenceOverlappingToggles(t *testing.T) {
	// All three toggles set: single model wins without touching inference.
	org := testutil.NewOrganization()
	rt := &org.Routers[0]
	rt.UsePromptClassification = true
	rt.Categories = org.Routers[1].Categories
	rt.UseSentenceMatching = true
	rt.Sentences = org.Routers[2].Sentences

	classifier := &fakeClassifier{}
	similarity := &fakeSimilarity{}
	engine := newEngine(classifier, similarity)

	result, err := engine.Decide(context.Background(), org, rt.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, models.ResultSingleModel, result.Kind)
	assert.Zero(t, classifier.calls)
	assert.Zero(t, similarity.calls)
}

func TestDecide_CacheHitSkipsClassifier(t *testing.T) {
	org := testutil.NewOrganization()
	classifier := &fakeClassifier{scores: map[string]float64{"chitchat": 0.3, "coding": 0.9}}
	cache := NewDecisionCache(100, time.Minute, zap.NewNop())
	engine := NewRoutingEngine(nil, classifier, &fakeSimilarity{}, cache, zap.NewNop())
	ctx := context.Background()

	first, err := engine.Decide(ctx, org, classifyRouterID(org), "Write me a parser")
	require.NoError(t, err)
	require.Equal(t, 1, classifier.calls)

	// Normalized form of the prompt matches, so the classifier is skipped.
	second, err := engine.Decide(ctx, org, classifyRouterID(org), "write me a  parser!")
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, first.Classification.Label, second.Classification.Label)
	assert.Equal(t, first.Model.ID, second.Model.ID)

	// A cache hit still resolves the model freshly: re-pointing the
	// category takes effect immediately.
	org.Routers[1].Categories[1].ModelID = org.Models[0].ID
	third, err := engine.Decide(ctx, org, classifyRouterID(org), "write me a parser")
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, org.Models[0].ID, third.Model.ID)
}

func newRoutedOrg(t *testing.T) (*RoutingEngine, *models.Organization) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := repository.NewOrgRepository(db, zap.NewNop())
	org := testutil.NewOrganization()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, org))
	for i := range org.Models {
		require.NoError(t, repo.AddModel(ctx, org.ID, &org.Models[i]))
	}
	for i := range org.AccessTokens {
		require.NoError(t, repo.AddAccessToken(ctx, org.ID, &org.AccessTokens[i]))
	}
	for i := range org.Routers {
		require.NoError(t, repo.InsertRouter(ctx, org.ID, &org.Routers[i]))
	}

	engine := NewRoutingEngine(repo, &fakeClassifier{}, &fakeSimilarity{}, nil, zap.NewNop())
	return engine, org
}

func TestRoute_EndToEnd(t *testing.T) {
	engine, org := newRoutedOrg(t)
	ctx := context.Background()

	result, err := engine.Route(ctx, org.ID, singleRouterID(org), "tok-route", "hello")
	require.NoError(t, err)
	assert.Equal(t, models.ResultSingleModel, result.Kind)
}

func TestRoute_OrganizationNotFound(t *testing.T) {
	engine, _ := newRoutedOrg(t)

	_, err := engine.Route(context.Background(), "missing", "any", "tok-route", "hello")
	assert.ErrorIs(t, err, routererrors.ErrOrganizationNotFound)
}

func TestRoute_Unauthorized(t *testing.T) {
	engine, org := newRoutedOrg(t)
	ctx := context.Background()

	_, err := engine.Route(ctx, org.ID, singleRouterID(org), "wrong-token", "hello")
	assert.ErrorIs(t, err, routererrors.ErrUnauthorizedToken)
}
