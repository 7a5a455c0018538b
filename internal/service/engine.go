package service

import (
	"context"
	"strings"

	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/repository"
	"github.com/user/llm-router-go/internal/routererrors"
	"go.uber.org/zap"
)

// ClassificationEngine scores a text against an ordered list of candidate
// labels. The returned slice preserves candidate order.
type ClassificationEngine interface {
	Classify(ctx context.Context, text string, candidateLabels []string) ([]models.LabelScore, error)
}

// SimilarityScorer computes embedding cosine similarity between two texts.
// comparable=false means the score is not meaningful and the caller must
// treat the pair as not similar.
type SimilarityScorer interface {
	Similarity(ctx context.Context, textA, textB string) (score float64, comparable bool, err error)
}

// RoutingEngine resolves prompts to models under a router's policy. It is
// stateless per call; the inference engines behind it do their own
// serialization.
type RoutingEngine struct {
	orgs       repository.OrganizationRepository
	classifier ClassificationEngine
	similarity SimilarityScorer
	cache      *DecisionCache
	logger     *zap.Logger
}

// NewRoutingEngine creates a RoutingEngine. cache may be nil.
func NewRoutingEngine(
	orgs repository.OrganizationRepository,
	classifier ClassificationEngine,
	similarity SimilarityScorer,
	cache *DecisionCache,
	logger *zap.Logger,
) *RoutingEngine {
	return &RoutingEngine{
		orgs:       orgs,
		classifier: classifier,
		similarity: similarity,
		cache:      cache,
		logger:     logger,
	}
}

// Route is the full routing operation: load the organization, authorize the
// access token, and run the decision for the named router.
func (e *RoutingEngine) Route(ctx context.Context, orgID, routerID, rawToken, prompt string) (*models.RoutingResult, error) {
	org, err := e.orgs.FindByID(ctx, orgID)
	if err != nil {
		e.logger.Error("failed to load organization", zap.String("org_id", orgID), zap.Error(err))
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to load organization", err)
	}
	if org == nil || org.Deleted {
		return nil, routererrors.ErrOrganizationNotFound
	}

	if _, err := AuthorizeToken(org, rawToken, RoutingScopes); err != nil {
		return nil, err
	}

	return e.Decide(ctx, org, routerID, prompt)
}

// Decide runs the decision state machine against an already-loaded,
// already-authorized organization. Single pass, no retries: the first
// terminal branch or error ends the decision.
func (e *RoutingEngine) Decide(ctx context.Context, org *models.Organization, routerID, prompt string) (*models.RoutingResult, error) {
	router := org.FindRouter(routerID)
	if router == nil {
		return nil, routererrors.ErrRouterNotFound
	}
	if !router.Usable() {
		return nil, routererrors.ErrRouterUnavailable
	}

	strategy := router.Strategy()

	// The single-model branch never inspects the prompt, so the length gate
	// applies only to the prompt-reading strategies.
	if strategy == models.StrategyClassification || strategy == models.StrategySentenceMatching {
		if len(prompt) < 1 || len(prompt) > router.MaxPromptLength {
			return nil, routererrors.ErrPromptLength
		}
	}

	switch strategy {
	case models.StrategySingleModel:
		return e.routeSingleModel(org, router, prompt)
	case models.StrategyClassification:
		return e.routeByClassification(ctx, org, router, prompt)
	case models.StrategySentenceMatching:
		return e.routeBySentences(ctx, org, router, prompt)
	default:
		return nil, routererrors.ErrNoStrategyEnabled
	}
}

func (e *RoutingEngine) routeSingleModel(org *models.Organization, router *models.Router, prompt string) (*models.RoutingResult, error) {
	model := org.FindModel(router.ModelID)
	if model == nil {
		return nil, routererrors.ErrModelNotFound
	}
	return &models.RoutingResult{
		Kind:       models.ResultSingleModel,
		Model:      *model,
		Prompt:     prompt,
		PromptSize: len(prompt),
	}, nil
}

func (e *RoutingEngine) routeByClassification(ctx context.Context, org *models.Organization, router *models.Router, prompt string) (*models.RoutingResult, error) {
	winner, ok := e.cachedClassification(org, router, prompt)
	if !ok {
		labels := make([]string, len(router.Categories))
		for i, c := range router.Categories {
			labels[i] = c.Label
		}

		scores, err := e.classifier.Classify(ctx, prompt, labels)
		if err != nil {
			return nil, err
		}

		// Left fold with strict >: the first label encountered wins ties.
		found := false
		for _, s := range scores {
			if !found || s.Score > winner.Score {
				winner = models.Classification{Label: s.Label, Score: s.Score}
				found = true
			}
		}
		if !found {
			return nil, routererrors.ErrCategoryNotFound
		}

		key := DecisionCacheKey(org.ID, router.ID, prompt)
		e.cache.Set(key, winner)
	}

	// The label is mapped back fresh each time so category and model edits
	// take effect even on a cache hit.
	var category *models.Category
	for i := range router.Categories {
		if router.Categories[i].Label == winner.Label {
			category = &router.Categories[i]
			break
		}
	}
	if category == nil {
		return nil, routererrors.ErrCategoryNotFound
	}
	model := org.FindModel(category.ModelID)
	if model == nil {
		return nil, routererrors.ErrModelNotFound
	}

	return &models.RoutingResult{
		Kind:           models.ResultClassification,
		Model:          *model,
		Classification: &winner,
		Prompt:         prompt,
		PromptSize:     len(prompt),
	}, nil
}

func (e *RoutingEngine) cachedClassification(org *models.Organization, router *models.Router, prompt string) (models.Classification, bool) {
	if !e.cache.Enabled() {
		return models.Classification{}, false
	}
	return e.cache.Get(DecisionCacheKey(org.ID, router.ID, prompt))
}

func (e *RoutingEngine) routeBySentences(ctx context.Context, org *models.Organization, router *models.Router, prompt string) (*models.RoutingResult, error) {
	last := len(router.Sentences) - 1
	for i, sentence := range router.Sentences {
		if !sentence.Exact && !sentence.UseCosineSimilarity {
			return nil, routererrors.InvalidSentence(i)
		}

		model := org.FindModel(sentence.ModelID)
		if model == nil {
			return nil, routererrors.ErrModelNotFound
		}

		if sentence.Exact && strings.EqualFold(sentence.Text, prompt) {
			// Short-circuits all later sentences regardless of their own
			// match potential.
			return &models.RoutingResult{
				Kind:  models.ResultExactSentenceMatch,
				Model: *model,
				SentenceMatch: &models.SentenceMatch{
					Exact:            true,
					AppropriateMatch: true,
				},
				Prompt:     prompt,
				PromptSize: len(prompt),
			}, nil
		}

		if !sentence.UseCosineSimilarity {
			continue
		}

		score, comparable, err := e.similarity.Similarity(ctx, sentence.Text, prompt)
		if err != nil {
			return nil, err
		}
		isSimilar := comparable && score >= sentence.CosineSimilarityTemperature

		if isSimilar || i == last {
			if !isSimilar && router.NoMatchPolicyOrDefault() == models.NoMatchError {
				return nil, routererrors.ErrNoSentenceMatched
			}
			return &models.RoutingResult{
				Kind:  models.ResultSimilaritySentenceMatch,
				Model: *model,
				SentenceMatch: &models.SentenceMatch{
					CosineSimilarity: true,
					Score:            score,
					Temperature:      sentence.CosineSimilarityTemperature,
					AppropriateMatch: isSimilar,
				},
				Prompt:     prompt,
				PromptSize: len(prompt),
			}, nil
		}
	}

	return nil, routererrors.ErrNoStrategyEnabled
}
