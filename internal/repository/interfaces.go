// Package repository defines data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/user/llm-router-go/internal/models"
)

// OrganizationRepository provides access to organization aggregates.
// FindByID returns the full aggregate (models, routers with ordered
// categories/sentences, members, access tokens); it returns (nil, nil) when
// the organization does not exist.
type OrganizationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
	Insert(ctx context.Context, org *models.Organization) error
	Rename(ctx context.Context, id, name string) error
	SoftDelete(ctx context.Context, id string) error

	AddModel(ctx context.Context, orgID string, m *models.ModelObject) error
	RemoveModel(ctx context.Context, orgID, modelID string) error

	InsertRouter(ctx context.Context, orgID string, r *models.Router) error
	UpdateRouter(ctx context.Context, orgID string, r *models.Router) error
	SoftDeleteRouter(ctx context.Context, orgID, routerID string) error

	AddAccessToken(ctx context.Context, orgID string, t *models.AccessToken) error
	RemoveAccessToken(ctx context.Context, orgID, token string) error
}
