package inference

import (
	"context"
	"math"

	"github.com/user/llm-router-go/internal/routererrors"
	"go.uber.org/zap"
)

// EmbedderModel is the underlying sentence-embedding model. Implementations
// are not required to be safe for concurrent use; the engine serializes all
// calls.
type EmbedderModel interface {
	Encode(texts []string) ([][]float64, error)
}

// SimilarityEngine computes embedding cosine similarity between two texts.
// It owns one EmbedderModel behind a dedicated worker; both texts of a call
// are encoded under a single worker job.
type SimilarityEngine struct {
	model  EmbedderModel
	worker *worker
	logger *zap.Logger
}

// NewSimilarityEngine creates a SimilarityEngine and starts its worker.
// queueSize bounds the number of pending requests; values below 1 fall back
// to a default.
func NewSimilarityEngine(model EmbedderModel, queueSize int, logger *zap.Logger) *SimilarityEngine {
	return &SimilarityEngine{
		model:  model,
		worker: newWorker("embedder", queueSize, logger),
		logger: logger,
	}
}

// Similarity encodes both texts and returns their cosine similarity.
// A zero-norm embedding or a non-finite result yields (0, false, nil): the
// caller must treat comparable=false as not similar instead of receiving a
// numeric error. Model faults are surfaced as inference errors.
func (s *SimilarityEngine) Similarity(ctx context.Context, textA, textB string) (score float64, comparable bool, err error) {
	value, err := s.worker.submit(ctx, func() (any, error) {
		return s.model.Encode([]string{textA, textB})
	})
	if err != nil {
		if err == ctx.Err() || err == ErrEngineClosed {
			return 0, false, err
		}
		s.logger.Error("embedding inference failed", zap.Error(err))
		return 0, false, routererrors.Inference("sentence embedding failed", err)
	}

	embeddings := value.([][]float64)
	if len(embeddings) != 2 {
		return 0, false, routererrors.New(routererrors.ErrorTypeInference, "embedding model returned wrong vector count")
	}

	score = CosineSimilarity(embeddings[0], embeddings[1])
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false, nil
	}
	return score, true, nil
}

// Close stops the engine's worker.
func (s *SimilarityEngine) Close() {
	s.worker.close()
}

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖). A zero norm or mismatched
// dimensions produce NaN.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
