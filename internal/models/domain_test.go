//go:build !integration && !e2e

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScope(t *testing.T) {
	for _, s := range KnownScopes {
		got, ok := ParseScope(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	_, ok := ParseScope("launch_rockets")
	assert.False(t, ok)
	_, ok = ParseScope("")
	assert.False(t, ok)
	// Scope matching is case-sensitive.
	_, ok = ParseScope("Admin")
	assert.False(t, ok)
}

func TestAccessToken_HasAnyScope(t *testing.T) {
	token := AccessToken{Scopes: []Scope{ScopeManageModels, ScopePromptModelSuggestion}}

	assert.True(t, token.HasAnyScope([]Scope{ScopePromptModelSuggestion, ScopeAdmin}))
	assert.True(t, token.HasAnyScope([]Scope{ScopeManageModels}))
	assert.False(t, token.HasAnyScope([]Scope{ScopeAdmin}))
	assert.False(t, token.HasAnyScope(nil))

	empty := AccessToken{}
	assert.False(t, empty.HasAnyScope([]Scope{ScopeAdmin}))
}

func TestRouter_Strategy(t *testing.T) {
	tests := []struct {
		name                            string
		single, classification, matcher bool
		want                            Strategy
	}{
		{"all off", false, false, false, StrategyNone},
		{"single only", true, false, false, StrategySingleModel},
		{"classification only", false, true, false, StrategyClassification},
		{"sentences only", false, false, true, StrategySentenceMatching},
		{"single beats classification", true, true, false, StrategySingleModel},
		{"single beats everything", true, true, true, StrategySingleModel},
		{"classification beats sentences", false, true, true, StrategyClassification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Router{
				UseSingleModel:          tt.single,
				UsePromptClassification: tt.classification,
				UseSentenceMatching:     tt.matcher,
			}
			assert.Equal(t, tt.want, r.Strategy())
		})
	}
}

func TestRouter_NoMatchPolicyOrDefault(t *testing.T) {
	assert.Equal(t, NoMatchBestEffort, (&Router{}).NoMatchPolicyOrDefault())
	assert.Equal(t, NoMatchBestEffort, (&Router{OnNoMatch: NoMatchBestEffort}).NoMatchPolicyOrDefault())
	assert.Equal(t, NoMatchError, (&Router{OnNoMatch: NoMatchError}).NoMatchPolicyOrDefault())
	assert.Equal(t, NoMatchBestEffort, (&Router{OnNoMatch: "garbage"}).NoMatchPolicyOrDefault())
}

func TestRouter_Usable(t *testing.T) {
	assert.True(t, (&Router{Active: true}).Usable())
	assert.False(t, (&Router{Active: false}).Usable())
	assert.False(t, (&Router{Active: true, Deleted: true}).Usable())
}

func TestOrganization_Finders(t *testing.T) {
	org := Organization{
		Models:  []ModelObject{{ID: "m1"}, {ID: "m2"}},
		Routers: []Router{{ID: "r1"}},
		AccessTokens: []AccessToken{
			{Token: "t1"},
		},
	}

	assert.NotNil(t, org.FindModel("m2"))
	assert.Nil(t, org.FindModel("m3"))
	assert.NotNil(t, org.FindRouter("r1"))
	assert.Nil(t, org.FindRouter("r2"))
	assert.NotNil(t, org.FindAccessToken("t1"))
	assert.Nil(t, org.FindAccessToken("T1"))

	// Finders return pointers into the slices, not copies.
	org.FindModel("m1").ModelName = "edited"
	assert.Equal(t, "edited", org.Models[0].ModelName)
}
