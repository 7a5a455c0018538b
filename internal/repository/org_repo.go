package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/llm-router-go/internal/models"
	"go.uber.org/zap"
)

const sqlTimeLayout = "2006-01-02 15:04:05"

// OrgRepo is the SQLite-backed OrganizationRepository.
type OrgRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrgRepository creates a new OrgRepo.
func NewOrgRepository(db *sql.DB, logger *zap.Logger) *OrgRepo {
	return &OrgRepo{db: db, logger: logger}
}

// FindByID loads the full organization aggregate.
func (r *OrgRepo) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, deleted, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id)

	var org models.Organization
	var deleted int
	var createdAt, updatedAt string
	if err := row.Scan(&org.ID, &org.Name, &deleted, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	org.Deleted = deleted == 1
	org.CreatedAt = parseSQLTime(createdAt)
	org.UpdatedAt = parseSQLTime(updatedAt)

	var err error
	if org.Models, err = r.loadModels(ctx, id); err != nil {
		return nil, err
	}
	if org.Members, err = r.loadMembers(ctx, id); err != nil {
		return nil, err
	}
	if org.AccessTokens, err = r.loadAccessTokens(ctx, id); err != nil {
		return nil, err
	}
	if org.Routers, err = r.loadRouters(ctx, id); err != nil {
		return nil, err
	}

	return &org, nil
}

func (r *OrgRepo) loadModels(ctx context.Context, orgID string) ([]models.ModelObject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, model_name, display_name, description, registered_by, created_at
		FROM org_models WHERE org_id = ? ORDER BY created_at, id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list org models: %w", err)
	}
	defer rows.Close()

	var out []models.ModelObject
	for rows.Next() {
		var m models.ModelObject
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ModelName, &m.DisplayName, &m.Description, &m.RegisteredBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan org model: %w", err)
		}
		m.CreatedAt = parseSQLTime(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *OrgRepo) loadMembers(ctx context.Context, orgID string) ([]models.OrgMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, role FROM org_members WHERE org_id = ? ORDER BY customer_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list org members: %w", err)
	}
	defer rows.Close()

	var out []models.OrgMember
	for rows.Next() {
		var m models.OrgMember
		var role string
		if err := rows.Scan(&m.CustomerID, &role); err != nil {
			return nil, fmt.Errorf("failed to scan org member: %w", err)
		}
		m.Role = models.MemberRole(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *OrgRepo) loadAccessTokens(ctx context.Context, orgID string) ([]models.AccessToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, created_by, created_at, scopes
		FROM access_tokens WHERE org_id = ? ORDER BY created_at, token
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access tokens: %w", err)
	}
	defer rows.Close()

	var out []models.AccessToken
	for rows.Next() {
		var t models.AccessToken
		var createdAt, scopesJSON string
		if err := rows.Scan(&t.Token, &t.CreatedBy, &createdAt, &scopesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan access token: %w", err)
		}
		t.CreatedAt = parseSQLTime(createdAt)
		if err := json.Unmarshal([]byte(scopesJSON), &t.Scopes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal token scopes: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *OrgRepo) loadRouters(ctx context.Context, orgID string) ([]models.Router, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, active, deleted, max_prompt_length,
			use_single_model, model_id, use_prompt_classification,
			use_sentence_matching, on_no_match, created_at, updated_at
		FROM routers WHERE org_id = ? ORDER BY created_at, id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routers: %w", err)
	}
	defer rows.Close()

	var out []models.Router
	for rows.Next() {
		var rt models.Router
		var active, deleted, useSingle, useClassification, useSentences int
		var onNoMatch, createdAt, updatedAt string
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Description, &active, &deleted,
			&rt.MaxPromptLength, &useSingle, &rt.ModelID, &useClassification,
			&useSentences, &onNoMatch, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan router: %w", err)
		}
		rt.Active = active == 1
		rt.Deleted = deleted == 1
		rt.UseSingleModel = useSingle == 1
		rt.UsePromptClassification = useClassification == 1
		rt.UseSentenceMatching = useSentences == 1
		rt.OnNoMatch = models.NoMatchPolicy(onNoMatch)
		rt.CreatedAt = parseSQLTime(createdAt)
		rt.UpdatedAt = parseSQLTime(updatedAt)
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Categories, err = r.loadCategories(ctx, out[i].ID); err != nil {
			return nil, err
		}
		if out[i].Sentences, err = r.loadSentences(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrgRepo) loadCategories(ctx context.Context, routerID string) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT label, model_id FROM router_categories
		WHERE router_id = ? ORDER BY position
	`, routerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list router categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Label, &c.ModelID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *OrgRepo) loadSentences(ctx context.Context, routerID string) ([]models.Sentence, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT text, exact, use_cosine_similarity, cosine_similarity_temperature, model_id
		FROM router_sentences WHERE router_id = ? ORDER BY position
	`, routerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list router sentences: %w", err)
	}
	defer rows.Close()

	var out []models.Sentence
	for rows.Next() {
		var s models.Sentence
		var exact, cosine int
		if err := rows.Scan(&s.Text, &exact, &cosine, &s.CosineSimilarityTemperature, &s.ModelID); err != nil {
			return nil, fmt.Errorf("failed to scan sentence: %w", err)
		}
		s.Exact = exact == 1
		s.UseCosineSimilarity = cosine == 1
		out = append(out, s)
	}
	return out, rows.Err()
}

// Insert creates the organization row with its members.
func (r *OrgRepo) Insert(ctx context.Context, org *models.Organization) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(sqlTimeLayout)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO organizations (id, name, deleted, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
	`, org.ID, org.Name, now, now); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}

	for _, m := range org.Members {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO org_members (org_id, customer_id, role) VALUES (?, ?, ?)
		`, org.ID, m.CustomerID, string(m.Role)); err != nil {
			return fmt.Errorf("failed to insert org member: %w", err)
		}
	}

	return tx.Commit()
}

// Rename updates the organization name.
func (r *OrgRepo) Rename(ctx context.Context, id, name string) error {
	return r.touchOrg(ctx, id, "name = ?", name)
}

// SoftDelete marks the organization deleted without dropping its rows.
func (r *OrgRepo) SoftDelete(ctx context.Context, id string) error {
	return r.touchOrg(ctx, id, "deleted = 1")
}

func (r *OrgRepo) touchOrg(ctx context.Context, id, setClause string, args ...any) error {
	now := time.Now().UTC().Format(sqlTimeLayout)
	params := append(args, now, id)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE organizations SET %s, updated_at = ? WHERE id = ?", setClause),
		params...)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddModel registers a model under the organization.
func (r *OrgRepo) AddModel(ctx context.Context, orgID string, m *models.ModelObject) error {
	now := time.Now().UTC().Format(sqlTimeLayout)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO org_models (id, org_id, model_name, display_name, description, registered_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, orgID, m.ModelName, m.DisplayName, m.Description, m.RegisteredBy, now)
	if err != nil {
		return fmt.Errorf("failed to add model: %w", err)
	}
	return nil
}

// RemoveModel deregisters a model.
func (r *OrgRepo) RemoveModel(ctx context.Context, orgID, modelID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM org_models WHERE org_id = ? AND id = ?`, orgID, modelID)
	if err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertRouter creates a router with its categories and sentences.
func (r *OrgRepo) InsertRouter(ctx context.Context, orgID string, rt *models.Router) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(sqlTimeLayout)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO routers (id, org_id, name, description, active, deleted,
			max_prompt_length, use_single_model, model_id,
			use_prompt_classification, use_sentence_matching, on_no_match,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rt.ID, orgID, rt.Name, rt.Description, boolToInt(rt.Active),
		rt.MaxPromptLength, boolToInt(rt.UseSingleModel), rt.ModelID,
		boolToInt(rt.UsePromptClassification), boolToInt(rt.UseSentenceMatching),
		string(rt.NoMatchPolicyOrDefault()), now, now); err != nil {
		return fmt.Errorf("failed to insert router: %w", err)
	}

	if err := replaceRouterLists(ctx, tx, rt); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateRouter rewrites the router row and replaces its categories and
// sentences wholesale; list positions come from slice order.
func (r *OrgRepo) UpdateRouter(ctx context.Context, orgID string, rt *models.Router) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(sqlTimeLayout)
	res, err := tx.ExecContext(ctx, `
		UPDATE routers SET name = ?, description = ?, active = ?,
			max_prompt_length = ?, use_single_model = ?, model_id = ?,
			use_prompt_classification = ?, use_sentence_matching = ?,
			on_no_match = ?, updated_at = ?
		WHERE id = ? AND org_id = ? AND deleted = 0
	`, rt.Name, rt.Description, boolToInt(rt.Active), rt.MaxPromptLength,
		boolToInt(rt.UseSingleModel), rt.ModelID,
		boolToInt(rt.UsePromptClassification), boolToInt(rt.UseSentenceMatching),
		string(rt.NoMatchPolicyOrDefault()), now, rt.ID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update router: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM router_categories WHERE router_id = ?`, rt.ID); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM router_sentences WHERE router_id = ?`, rt.ID); err != nil {
		return fmt.Errorf("failed to clear sentences: %w", err)
	}
	if err := replaceRouterLists(ctx, tx, rt); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceRouterLists(ctx context.Context, tx *sql.Tx, rt *models.Router) error {
	for i, c := range rt.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO router_categories (router_id, position, label, model_id)
			VALUES (?, ?, ?, ?)
		`, rt.ID, i, c.Label, c.ModelID); err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
	}
	for i, s := range rt.Sentences {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO router_sentences (router_id, position, text, exact,
				use_cosine_similarity, cosine_similarity_temperature, model_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rt.ID, i, s.Text, boolToInt(s.Exact), boolToInt(s.UseCosineSimilarity),
			s.CosineSimilarityTemperature, s.ModelID); err != nil {
			return fmt.Errorf("failed to insert sentence: %w", err)
		}
	}
	return nil
}

// SoftDeleteRouter marks a router deleted.
func (r *OrgRepo) SoftDeleteRouter(ctx context.Context, orgID, routerID string) error {
	now := time.Now().UTC().Format(sqlTimeLayout)
	res, err := r.db.ExecContext(ctx, `
		UPDATE routers SET deleted = 1, updated_at = ? WHERE id = ? AND org_id = ?
	`, now, routerID, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete router: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddAccessToken stores a minted token.
func (r *OrgRepo) AddAccessToken(ctx context.Context, orgID string, t *models.AccessToken) error {
	scopesJSON, err := json.Marshal(t.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}
	now := time.Now().UTC().Format(sqlTimeLayout)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (token, org_id, created_by, created_at, scopes)
		VALUES (?, ?, ?, ?, ?)
	`, t.Token, orgID, t.CreatedBy, now, string(scopesJSON))
	if err != nil {
		return fmt.Errorf("failed to add access token: %w", err)
	}
	return nil
}

// RemoveAccessToken revokes a token.
func (r *OrgRepo) RemoveAccessToken(ctx context.Context, orgID, token string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM access_tokens WHERE org_id = ? AND token = ?`, orgID, token)
	if err != nil {
		return fmt.Errorf("failed to remove access token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseSQLTime(s string) time.Time {
	if t, err := time.Parse(sqlTimeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
