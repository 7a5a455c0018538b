// Package models defines the domain models for the LLM prompt router.
package models

import "time"

// Scope represents a capability granted by an access token.
type Scope string

const (
	ScopeAdmin                 Scope = "admin"
	ScopeManageModels          Scope = "manage_models"
	ScopeManageRouters         Scope = "manage_routers"
	ScopeManageMembers         Scope = "manage_members"
	ScopePromptModelSuggestion Scope = "access_prompt_model_suggestion"
)

// KnownScopes lists every scope a token may carry.
var KnownScopes = []Scope{
	ScopeAdmin,
	ScopeManageModels,
	ScopeManageRouters,
	ScopeManageMembers,
	ScopePromptModelSuggestion,
}

// ParseScope validates a raw scope string.
func ParseScope(raw string) (Scope, bool) {
	for _, s := range KnownScopes {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// MemberRole represents a member's role within an organization.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
	MemberRoleViewer MemberRole = "viewer"
)

// AccessToken is a tenant-issued credential carrying capability scopes.
type AccessToken struct {
	Token     string    `json:"token"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Scopes    []Scope   `json:"scopes"`
}

// HasAnyScope reports whether the token grants at least one of the required
// scopes. Matching is any-of, not all-of.
func (t *AccessToken) HasAnyScope(required []Scope) bool {
	for _, have := range t.Scopes {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ModelObject is a tenant-registered reference to a downstream language model.
type ModelObject struct {
	ID           string    `json:"id"`
	ModelName    string    `json:"model_name"`
	DisplayName  string    `json:"display_name"`
	Description  string    `json:"description,omitempty"`
	RegisteredBy string    `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category maps a predicted classification label to a model.
type Category struct {
	Label   string `json:"label"`
	ModelID string `json:"model_id"`
}

// Sentence maps reference text to a model, either by exact comparison or by
// embedding cosine similarity against a per-sentence threshold. List order
// defines match priority and fallback.
type Sentence struct {
	Text                        string  `json:"text"`
	Exact                       bool    `json:"exact"`
	UseCosineSimilarity         bool    `json:"use_cosine_similarity"`
	CosineSimilarityTemperature float64 `json:"cosine_similarity_temperature"`
	ModelID                     string  `json:"model_id"`
}

// NoMatchPolicy controls what happens when the final sentence in a matching
// list fails its similarity threshold.
type NoMatchPolicy string

const (
	// NoMatchBestEffort returns the last candidate's model with
	// appropriate_match=false.
	NoMatchBestEffort NoMatchPolicy = "best_effort"
	// NoMatchError fails the request with a validation error.
	NoMatchError NoMatchPolicy = "error"
)

// Router is a tenant-configured policy mapping prompts to models.
// The strategy toggles are independent in storage; Strategy() imposes the
// engine's fixed precedence.
type Router struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Active  bool `json:"active"`
	Deleted bool `json:"deleted"`

	MaxPromptLength int `json:"max_prompt_length"`

	UseSingleModel bool   `json:"use_single_model"`
	ModelID        string `json:"model_id,omitempty"`

	UsePromptClassification bool       `json:"use_prompt_classification"`
	Categories              []Category `json:"categories,omitempty"`

	UseSentenceMatching bool          `json:"use_sentence_matching"`
	Sentences           []Sentence    `json:"sentences,omitempty"`
	OnNoMatch           NoMatchPolicy `json:"on_no_match,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Strategy identifies the routing strategy a router resolves to.
type Strategy string

const (
	StrategySingleModel      Strategy = "single_model"
	StrategyClassification   Strategy = "classification"
	StrategySentenceMatching Strategy = "sentence_matching"
	StrategyNone             Strategy = "none"
)

// Strategy normalizes the storage toggles into the engine's precedence order:
// single model, then classification, then sentence matching.
func (r *Router) Strategy() Strategy {
	switch {
	case r.UseSingleModel:
		return StrategySingleModel
	case r.UsePromptClassification:
		return StrategyClassification
	case r.UseSentenceMatching:
		return StrategySentenceMatching
	default:
		return StrategyNone
	}
}

// NoMatchPolicyOrDefault returns the configured policy, defaulting to
// best-effort for routers created before the field existed.
func (r *Router) NoMatchPolicyOrDefault() NoMatchPolicy {
	if r.OnNoMatch == NoMatchError {
		return NoMatchError
	}
	return NoMatchBestEffort
}

// Usable reports whether the router may serve routing requests.
func (r *Router) Usable() bool {
	return r.Active && !r.Deleted
}

// OrgMember ties a customer id to a role within an organization.
type OrgMember struct {
	CustomerID string     `json:"id"`
	Role       MemberRole `json:"role"`
}

// Organization is a tenant owning routers, models, members and access tokens.
type Organization struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Models       []ModelObject `json:"models"`
	Routers      []Router      `json:"routers"`
	Members      []OrgMember   `json:"members"`
	AccessTokens []AccessToken `json:"access_tokens"`
	Deleted      bool          `json:"deleted"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// FindModel resolves a model id against the organization's model list.
func (o *Organization) FindModel(id string) *ModelObject {
	for i := range o.Models {
		if o.Models[i].ID == id {
			return &o.Models[i]
		}
	}
	return nil
}

// FindRouter resolves a router id against the organization's router list.
func (o *Organization) FindRouter(id string) *Router {
	for i := range o.Routers {
		if o.Routers[i].ID == id {
			return &o.Routers[i]
		}
	}
	return nil
}

// FindAccessToken resolves a raw token string by exact match.
func (o *Organization) FindAccessToken(token string) *AccessToken {
	for i := range o.AccessTokens {
		if o.AccessTokens[i].Token == token {
			return &o.AccessTokens[i]
		}
	}
	return nil
}
