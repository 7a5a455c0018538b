package models

// ResultKind tags the variant of a RoutingResult.
type ResultKind string

const (
	ResultSingleModel             ResultKind = "single_model"
	ResultClassification          ResultKind = "classification"
	ResultExactSentenceMatch      ResultKind = "exact_sentence_match"
	ResultSimilaritySentenceMatch ResultKind = "similarity_sentence_match"
)

// LabelScore is one (label, score) pair from the zero-shot classifier.
// Scores are independent per label and do not sum to 1.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classification carries the winning label of the classification strategy.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentenceMatch carries the similarity-strategy outcome. For an exact match
// Score and Temperature are zero and AppropriateMatch is always true.
type SentenceMatch struct {
	Exact            bool    `json:"exact"`
	CosineSimilarity bool    `json:"cosine_similarity"`
	Score            float64 `json:"similarity_level,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	AppropriateMatch bool    `json:"appropriate_match"`
}

// RoutingResult is the discriminated union returned by a routing decision.
// Model is always the resolved model object; exactly one of Classification
// or SentenceMatch is set for their respective kinds.
type RoutingResult struct {
	Kind           ResultKind      `json:"kind"`
	Model          ModelObject     `json:"model"`
	Classification *Classification `json:"classification,omitempty"`
	SentenceMatch  *SentenceMatch  `json:"sentence_matching,omitempty"`

	Prompt     string `json:"prompt"`
	PromptSize int    `json:"prompt_size"`
}
