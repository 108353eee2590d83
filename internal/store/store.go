// Package store persists brands, templates, keywords, and projects in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS brands (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	website_url TEXT NOT NULL DEFAULT '',
	brand_context TEXT NOT NULL DEFAULT '',
	products TEXT NOT NULL DEFAULT '',
	tone_of_voice TEXT NOT NULL DEFAULT '',
	target_audience TEXT NOT NULL DEFAULT '',
	image_style TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS templates (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	source_type TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	html_structure TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS keywords (
	id TEXT PRIMARY KEY,
	brand TEXT NOT NULL DEFAULT '',
	keyword TEXT NOT NULL,
	volume INTEGER NOT NULL DEFAULT 0,
	difficulty INTEGER NOT NULL DEFAULT 0,
	source TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_keywords_brand ON keywords(brand);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT 'en',
	topic TEXT NOT NULL DEFAULT '',
	keywords TEXT NOT NULL DEFAULT '[]',
	template_id TEXT NOT NULL DEFAULT '',
	brand_id TEXT NOT NULL DEFAULT '',
	ai_prompt TEXT NOT NULL DEFAULT '',
	content_html TEXT NOT NULL DEFAULT '',
	translated_versions TEXT NOT NULL DEFAULT '{}',
	images TEXT NOT NULL DEFAULT '[]',
	seo_title TEXT NOT NULL DEFAULT '',
	seo_description TEXT NOT NULL DEFAULT '',
	incomplete INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);
CREATE INDEX IF NOT EXISTS idx_projects_brand ON projects(brand_id);
`

// Store is the SQLite-backed record store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path, applying the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ==================== Brands ====================

// SaveBrand stores or updates a brand.
func (s *Store) SaveBrand(ctx context.Context, b *Brand) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, slug, website_url, brand_context, products, tone_of_voice, target_audience, image_style, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			website_url = excluded.website_url,
			brand_context = excluded.brand_context,
			products = excluded.products,
			tone_of_voice = excluded.tone_of_voice,
			target_audience = excluded.target_audience,
			image_style = excluded.image_style,
			updated_at = excluded.updated_at
	`, b.ID, b.Name, b.Slug, b.WebsiteURL, b.BrandContext, b.Products,
		b.ToneOfVoice, b.TargetAudience, b.ImageStyle, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving brand: %w", err)
	}
	return nil
}

// GetBrand retrieves a brand by ID.
func (s *Store) GetBrand(ctx context.Context, id string) (*Brand, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, website_url, brand_context, products, tone_of_voice, target_audience, image_style, created_at, updated_at
		FROM brands WHERE id = ?
	`, id)

	var b Brand
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.WebsiteURL, &b.BrandContext,
		&b.Products, &b.ToneOfVoice, &b.TargetAudience, &b.ImageStyle, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning brand: %w", err)
	}
	return &b, nil
}

// DeleteBrand removes a brand.
func (s *Store) DeleteBrand(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM brands WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting brand: %w", err)
	}
	return nil
}

// ListBrands returns all brands ordered by name.
func (s *Store) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, website_url, brand_context, products, tone_of_voice, target_audience, image_style, created_at, updated_at
		FROM brands ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying brands: %w", err)
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.WebsiteURL, &b.BrandContext,
			&b.Products, &b.ToneOfVoice, &b.TargetAudience, &b.ImageStyle, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating brands: %w", err)
	}
	return brands, nil
}

// ==================== Templates ====================

// SaveTemplate stores or updates a template.
func (s *Store) SaveTemplate(ctx context.Context, t *Template) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, type, source_type, source_url, html_structure, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			source_type = excluded.source_type,
			source_url = excluded.source_url,
			html_structure = excluded.html_structure,
			description = excluded.description
	`, t.ID, t.Name, t.Type, t.SourceType, t.SourceURL, t.HTMLStructure, t.Description, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template by ID.
func (s *Store) GetTemplate(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, source_type, source_url, html_structure, description, created_at
		FROM templates WHERE id = ?
	`, id)

	var t Template
	if err := row.Scan(&t.ID, &t.Name, &t.Type, &t.SourceType, &t.SourceURL,
		&t.HTMLStructure, &t.Description, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	return &t, nil
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

// ListTemplates returns templates, optionally filtered by type.
func (s *Store) ListTemplates(ctx context.Context, typ string) ([]Template, error) {
	query := `
		SELECT id, name, type, source_type, source_url, html_structure, description, created_at
		FROM templates`
	var args []any
	if typ != "" {
		query += " WHERE type = ?"
		args = append(args, typ)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.SourceType, &t.SourceURL,
			&t.HTMLStructure, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return templates, nil
}

// ==================== Keywords ====================

// SaveKeywords stores a batch of keywords in one transaction.
func (s *Store) SaveKeywords(ctx context.Context, keywords []Keyword) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keywords (id, brand, keyword, volume, difficulty, source, country, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			brand = excluded.brand,
			keyword = excluded.keyword,
			volume = excluded.volume,
			difficulty = excluded.difficulty,
			source = excluded.source,
			country = excluded.country,
			notes = excluded.notes
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range keywords {
		k := &keywords[i]
		if k.CreatedAt.IsZero() {
			k.CreatedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, k.ID, k.Brand, k.Keyword, k.Volume,
			k.Difficulty, k.Source, k.Country, k.Notes, k.CreatedAt); err != nil {
			return fmt.Errorf("saving keyword: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteKeyword removes a keyword.
func (s *Store) DeleteKeyword(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM keywords WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting keyword: %w", err)
	}
	return nil
}

// ListKeywords returns keywords, optionally filtered by brand slug and
// country, highest volume first.
func (s *Store) ListKeywords(ctx context.Context, brand, country string) ([]Keyword, error) {
	query := `
		SELECT id, brand, keyword, volume, difficulty, source, country, notes, created_at
		FROM keywords WHERE 1=1`
	var args []any
	if brand != "" {
		query += " AND brand = ?"
		args = append(args, brand)
	}
	if country != "" {
		query += " AND country = ?"
		args = append(args, country)
	}
	query += " ORDER BY volume DESC, keyword"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()

	var keywords []Keyword
	for rows.Next() {
		var k Keyword
		if err := rows.Scan(&k.ID, &k.Brand, &k.Keyword, &k.Volume, &k.Difficulty,
			&k.Source, &k.Country, &k.Notes, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keywords: %w", err)
	}
	return keywords, nil
}

// ==================== Projects ====================

const projectColumns = `id, type, title, status, language, topic, keywords, template_id, brand_id,
	ai_prompt, content_html, translated_versions, images, seo_title, seo_description, incomplete,
	created_at, updated_at`

// SaveProject stores or updates a project.
func (s *Store) SaveProject(ctx context.Context, p *Project) error {
	keywordsJSON, err := json.Marshal(p.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}
	translatedJSON, err := json.Marshal(p.TranslatedVersions)
	if err != nil {
		return fmt.Errorf("marshalling translated versions: %w", err)
	}
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshalling images: %w", err)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			status = excluded.status,
			language = excluded.language,
			topic = excluded.topic,
			keywords = excluded.keywords,
			template_id = excluded.template_id,
			brand_id = excluded.brand_id,
			ai_prompt = excluded.ai_prompt,
			content_html = excluded.content_html,
			translated_versions = excluded.translated_versions,
			images = excluded.images,
			seo_title = excluded.seo_title,
			seo_description = excluded.seo_description,
			incomplete = excluded.incomplete,
			updated_at = excluded.updated_at
	`, p.ID, p.Type, p.Title, p.Status, p.Language, p.Topic, string(keywordsJSON),
		p.TemplateID, p.BrandID, p.AIPrompt, p.ContentHTML, string(translatedJSON),
		string(imagesJSON), p.SEOTitle, p.SEODescription, p.Incomplete, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// ListProjects returns projects, optionally filtered by status and brand,
// most recently updated first.
func (s *Store) ListProjects(ctx context.Context, status, brandID string) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	var args []any
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if brandID != "" {
		query += " AND brand_id = ?"
		args = append(args, brandID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func scanProject(scan func(...any) error) (*Project, error) {
	var p Project
	var keywordsJSON, translatedJSON, imagesJSON string
	if err := scan(&p.ID, &p.Type, &p.Title, &p.Status, &p.Language, &p.Topic,
		&keywordsJSON, &p.TemplateID, &p.BrandID, &p.AIPrompt, &p.ContentHTML,
		&translatedJSON, &imagesJSON, &p.SEOTitle, &p.SEODescription, &p.Incomplete,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &p.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshaling keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(translatedJSON), &p.TranslatedVersions); err != nil {
		return nil, fmt.Errorf("unmarshaling translated versions: %w", err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
		return nil, fmt.Errorf("unmarshaling images: %w", err)
	}
	return &p, nil
}

// ==================== Stats ====================

// Stats returns dashboard counts.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ProjectsByStatus: make(map[string]int)}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM brands", &st.Brands},
		{"SELECT COUNT(*) FROM templates", &st.Templates},
		{"SELECT COUNT(*) FROM keywords", &st.Keywords},
		{"SELECT COUNT(*) FROM projects", &st.Projects},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM projects GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		st.ProjectsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return st, nil
}
