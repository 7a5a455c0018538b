package inference

import (
	"context"

	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/routererrors"
	"go.uber.org/zap"
)

// ClassifierModel is the underlying zero-shot multi-label classification
// model. Implementations are not required to be safe for concurrent use;
// the engine serializes all calls.
type ClassifierModel interface {
	Predict(text string, candidateLabels []string) ([]models.LabelScore, error)
}

// Classifier is the classification engine. It owns one ClassifierModel
// behind a dedicated worker; Classify blocks until the model is free.
type Classifier struct {
	model  ClassifierModel
	worker *worker
	logger *zap.Logger
}

// NewClassifier creates a Classifier and starts its worker. queueSize bounds
// the number of pending requests; values below 1 fall back to a default.
func NewClassifier(model ClassifierModel, queueSize int, logger *zap.Logger) *Classifier {
	return &Classifier{
		model:  model,
		worker: newWorker("classifier", queueSize, logger),
		logger: logger,
	}
}

// Classify scores the text against each candidate label. The returned slice
// preserves candidate order; scores are independent per label (multi-label).
// Any underlying model fault is surfaced as an inference error.
func (c *Classifier) Classify(ctx context.Context, text string, candidateLabels []string) ([]models.LabelScore, error) {
	value, err := c.worker.submit(ctx, func() (any, error) {
		return c.model.Predict(text, candidateLabels)
	})
	if err != nil {
		if err == ctx.Err() || err == ErrEngineClosed {
			return nil, err
		}
		c.logger.Error("classification inference failed", zap.Error(err))
		return nil, routererrors.Inference("prompt classification failed", err)
	}
	return value.([]models.LabelScore), nil
}

// Close stops the engine's worker.
func (c *Classifier) Close() {
	c.worker.close()
}
