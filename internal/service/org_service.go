package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/llm-router-go/internal/models"
	"github.com/user/llm-router-go/internal/repository"
	"github.com/user/llm-router-go/internal/routererrors"
	"go.uber.org/zap"
)

// OrgService is the management surface for organizations, models, routers
// and access tokens. All referential model_id checks happen here at write
// time; the routing engine re-validates defensively at read time.
type OrgService struct {
	orgs   repository.OrganizationRepository
	logger *zap.Logger
}

// NewOrgService creates an OrgService.
func NewOrgService(orgs repository.OrganizationRepository, logger *zap.Logger) *OrgService {
	return &OrgService{orgs: orgs, logger: logger}
}

// CreateOrganization creates an organization with the given owner.
func (s *OrgService) CreateOrganization(ctx context.Context, name, ownerCustomerID string) (*models.Organization, error) {
	if name == "" {
		return nil, routererrors.New(routererrors.ErrorTypeValidation, "organization name is required")
	}

	org := &models.Organization{
		ID:   uuid.NewString(),
		Name: name,
		Members: []models.OrgMember{
			{CustomerID: ownerCustomerID, Role: models.MemberRoleOwner},
		},
	}
	if err := s.orgs.Insert(ctx, org); err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to create organization", err)
	}

	s.logger.Info("organization created",
		zap.String("org_id", org.ID),
		zap.String("name", name))
	return org, nil
}

// GetOrganization loads an organization; deleted organizations are absent.
func (s *OrgService) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	org, err := s.orgs.FindByID(ctx, id)
	if err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to load organization", err)
	}
	if org == nil || org.Deleted {
		return nil, routererrors.ErrOrganizationNotFound
	}
	return org, nil
}

// RenameOrganization changes the organization's name.
func (s *OrgService) RenameOrganization(ctx context.Context, id, name string) error {
	if name == "" {
		return routererrors.New(routererrors.ErrorTypeValidation, "organization name is required")
	}
	if _, err := s.GetOrganization(ctx, id); err != nil {
		return err
	}
	if err := s.orgs.Rename(ctx, id, name); err != nil {
		return s.mapRepoError(err, routererrors.ErrOrganizationNotFound, "failed to rename organization")
	}
	return nil
}

// DeleteOrganization soft-deletes the organization; its routers stop
// serving immediately because routing refuses deleted organizations.
func (s *OrgService) DeleteOrganization(ctx context.Context, id string) error {
	if _, err := s.GetOrganization(ctx, id); err != nil {
		return err
	}
	if err := s.orgs.SoftDelete(ctx, id); err != nil {
		return s.mapRepoError(err, routererrors.ErrOrganizationNotFound, "failed to delete organization")
	}
	s.logger.Info("organization deleted", zap.String("org_id", id))
	return nil
}

// ModelInput carries the fields of a model registration.
type ModelInput struct {
	ModelName    string `json:"model_name" binding:"required"`
	DisplayName  string `json:"display_name" binding:"required"`
	Description  string `json:"description"`
	RegisteredBy string `json:"registered_by"`
}

// RegisterModel adds a model reference to the organization.
func (s *OrgService) RegisterModel(ctx context.Context, orgID string, in ModelInput) (*models.ModelObject, error) {
	if in.ModelName == "" || in.DisplayName == "" {
		return nil, routererrors.New(routererrors.ErrorTypeValidation, "model_name and display_name are required")
	}
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	model := &models.ModelObject{
		ID:           uuid.NewString(),
		ModelName:    in.ModelName,
		DisplayName:  in.DisplayName,
		Description:  in.Description,
		RegisteredBy: in.RegisteredBy,
	}
	if err := s.orgs.AddModel(ctx, orgID, model); err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to register model", err)
	}
	return model, nil
}

// DeregisterModel removes a model reference. Routers referencing the model
// keep their configuration; routing resolves the dangling reference as a
// not-found at decision time.
func (s *OrgService) DeregisterModel(ctx context.Context, orgID, modelID string) error {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return err
	}
	if err := s.orgs.RemoveModel(ctx, orgID, modelID); err != nil {
		return s.mapRepoError(err, routererrors.ErrModelNotFound, "failed to deregister model")
	}
	return nil
}

// RouterInput carries the configurable fields of a router.
type RouterInput struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Active          bool   `json:"active"`
	MaxPromptLength int    `json:"max_prompt_length"`

	UseSingleModel bool   `json:"use_single_model"`
	ModelID        string `json:"model_id"`

	UsePromptClassification bool              `json:"use_prompt_classification"`
	Categories              []models.Category `json:"categories"`

	UseSentenceMatching bool                 `json:"use_sentence_matching"`
	Sentences           []models.Sentence    `json:"sentences"`
	OnNoMatch           models.NoMatchPolicy `json:"on_no_match"`
}

// CreateRouter validates and stores a new router.
func (s *OrgService) CreateRouter(ctx context.Context, orgID string, in RouterInput) (*models.Router, error) {
	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	router := routerFromInput(uuid.NewString(), in)
	if err := validateRouter(org, router); err != nil {
		return nil, err
	}

	if err := s.orgs.InsertRouter(ctx, orgID, router); err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to create router", err)
	}
	s.logger.Info("router created",
		zap.String("org_id", orgID),
		zap.String("router_id", router.ID),
		zap.String("strategy", string(router.Strategy())))
	return router, nil
}

// UpdateRouter validates and rewrites an existing router, replacing its
// categories and sentences wholesale.
func (s *OrgService) UpdateRouter(ctx context.Context, orgID, routerID string, in RouterInput) (*models.Router, error) {
	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	existing := org.FindRouter(routerID)
	if existing == nil || existing.Deleted {
		return nil, routererrors.ErrRouterNotFound
	}

	router := routerFromInput(routerID, in)
	if err := validateRouter(org, router); err != nil {
		return nil, err
	}

	if err := s.orgs.UpdateRouter(ctx, orgID, router); err != nil {
		return nil, s.mapRepoError(err, routererrors.ErrRouterNotFound, "failed to update router")
	}
	return router, nil
}

// DeleteRouter soft-deletes a router.
func (s *OrgService) DeleteRouter(ctx context.Context, orgID, routerID string) error {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return err
	}
	if err := s.orgs.SoftDeleteRouter(ctx, orgID, routerID); err != nil {
		return s.mapRepoError(err, routererrors.ErrRouterNotFound, "failed to delete router")
	}
	return nil
}

// MintAccessToken generates and stores a new access token with the given
// scopes. Scope strings are validated against the known set.
func (s *OrgService) MintAccessToken(ctx context.Context, orgID, createdBy string, scopes []string) (*models.AccessToken, error) {
	if len(scopes) == 0 {
		return nil, routererrors.New(routererrors.ErrorTypeValidation, "at least one scope is required")
	}
	parsed := make([]models.Scope, 0, len(scopes))
	for _, raw := range scopes {
		scope, ok := models.ParseScope(raw)
		if !ok {
			return nil, routererrors.New(routererrors.ErrorTypeValidation,
				fmt.Sprintf("unknown scope %q", raw))
		}
		parsed = append(parsed, scope)
	}

	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	raw, err := generateToken()
	if err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to generate token", err)
	}

	token := &models.AccessToken{
		Token:     raw,
		CreatedBy: createdBy,
		Scopes:    parsed,
	}
	if err := s.orgs.AddAccessToken(ctx, orgID, token); err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to store token", err)
	}
	return token, nil
}

// RevokeAccessToken deletes a token.
func (s *OrgService) RevokeAccessToken(ctx context.Context, orgID, token string) error {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return err
	}
	if err := s.orgs.RemoveAccessToken(ctx, orgID, token); err != nil {
		return s.mapRepoError(err, routererrors.ErrUnauthorizedToken, "failed to revoke token")
	}
	return nil
}

func routerFromInput(id string, in RouterInput) *models.Router {
	maxLen := in.MaxPromptLength
	if maxLen <= 0 {
		maxLen = 2048
	}
	return &models.Router{
		ID:                      id,
		Name:                    in.Name,
		Description:             in.Description,
		Active:                  in.Active,
		MaxPromptLength:         maxLen,
		UseSingleModel:          in.UseSingleModel,
		ModelID:                 in.ModelID,
		UsePromptClassification: in.UsePromptClassification,
		Categories:              in.Categories,
		UseSentenceMatching:     in.UseSentenceMatching,
		Sentences:               in.Sentences,
		OnNoMatch:               in.OnNoMatch,
	}
}

// validateRouter enforces the write-time invariants: every referenced model
// exists, every sentence has a matching mode, and the no-match policy is a
// known value.
func validateRouter(org *models.Organization, router *models.Router) error {
	if router.Name == "" {
		return routererrors.New(routererrors.ErrorTypeValidation, "router name is required")
	}
	switch router.OnNoMatch {
	case "", models.NoMatchBestEffort, models.NoMatchError:
	default:
		return routererrors.New(routererrors.ErrorTypeValidation,
			fmt.Sprintf("unknown on_no_match policy %q", router.OnNoMatch))
	}

	if router.UseSingleModel {
		if org.FindModel(router.ModelID) == nil {
			return routererrors.New(routererrors.ErrorTypeValidation,
				fmt.Sprintf("model %q is not registered in this organization", router.ModelID))
		}
	}
	for i, c := range router.Categories {
		if c.Label == "" {
			return routererrors.New(routererrors.ErrorTypeValidation,
				fmt.Sprintf("category %d has an empty label", i))
		}
		if org.FindModel(c.ModelID) == nil {
			return routererrors.New(routererrors.ErrorTypeValidation,
				fmt.Sprintf("category %d references unknown model %q", i, c.ModelID))
		}
	}
	for i, sn := range router.Sentences {
		if !sn.Exact && !sn.UseCosineSimilarity {
			return routererrors.InvalidSentence(i)
		}
		if org.FindModel(sn.ModelID) == nil {
			return routererrors.New(routererrors.ErrorTypeValidation,
				fmt.Sprintf("sentence %d references unknown model %q", i, sn.ModelID))
		}
	}
	return nil
}

func (s *OrgService) mapRepoError(err error, notFound *routererrors.DomainError, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	s.logger.Error(msg, zap.Error(err))
	return routererrors.Wrap(routererrors.ErrorTypeInternal, msg, err)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "rt_" + hex.EncodeToString(buf), nil
}
