package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "contentforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBrandRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &Brand{
		ID:           uuid.NewString(),
		Name:         "Hevisleep",
		Slug:         "hevisleep",
		WebsiteURL:   "https://hevisleep.example",
		BrandContext: "Sleep and wellness brand selling weighted blankets.",
		ImageStyle:   "warm lifestyle",
	}
	require.NoError(t, s.SaveBrand(ctx, b))
	assert.False(t, b.CreatedAt.IsZero())

	got, err := s.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hevisleep", got.Name)
	assert.Equal(t, "warm lifestyle", got.ImageStyle)

	b.BrandContext = "Updated context."
	require.NoError(t, s.SaveBrand(ctx, b))
	got, err = s.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated context.", got.BrandContext)

	require.NoError(t, s.DeleteBrand(ctx, b.ID))
	_, err = s.GetBrand(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBrandsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha"} {
		require.NoError(t, s.SaveBrand(ctx, &Brand{ID: uuid.NewString(), Name: name, Slug: name}))
	}
	brands, err := s.ListBrands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, "Alpha", brands[0].Name)
}

func TestTemplateTypeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTemplate(ctx, &Template{ID: uuid.NewString(), Name: "Blog A", Type: "blog", HTMLStructure: "<h1></h1>"}))
	require.NoError(t, s.SaveTemplate(ctx, &Template{ID: uuid.NewString(), Name: "Presell A", Type: "presell", HTMLStructure: "<h1></h1>"}))

	all, err := s.ListTemplates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	blogs, err := s.ListTemplates(ctx, "blog")
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	assert.Equal(t, "Blog A", blogs[0].Name)
}

func TestKeywordsBatchAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []Keyword{
		{ID: uuid.NewString(), Brand: "hevisleep", Keyword: "weighted blanket", Volume: 5400, Country: "dk"},
		{ID: uuid.NewString(), Brand: "hevisleep", Keyword: "blanket for anxiety", Volume: 880, Country: "dk"},
		{ID: uuid.NewString(), Brand: "stretchfit", Keyword: "resistance bands", Volume: 2900, Country: "cz"},
	}
	require.NoError(t, s.SaveKeywords(ctx, batch))

	hevisleep, err := s.ListKeywords(ctx, "hevisleep", "")
	require.NoError(t, err)
	require.Len(t, hevisleep, 2)
	assert.Equal(t, "weighted blanket", hevisleep[0].Keyword, "ordered by volume")

	cz, err := s.ListKeywords(ctx, "", "cz")
	require.NoError(t, err)
	require.Len(t, cz, 1)
	assert.Equal(t, "resistance bands", cz[0].Keyword)
}

func TestProjectRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &Project{
		ID:       uuid.NewString(),
		Type:     "blog",
		Title:    "Best Weighted Blankets",
		Status:   StatusDraft,
		Language: "en",
		Keywords: []string{"weighted blanket", "sleep"},
		TranslatedVersions: map[string]string{
			"da": "<p>Oversat</p>",
		},
		Images:      []ProjectImage{{URL: "data:image/png;base64,x", Alt: "hero"}},
		ContentHTML: "<h1>Best Weighted Blankets</h1><p>Intro.</p>",
	}
	require.NoError(t, s.SaveProject(ctx, p))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Keywords, got.Keywords)
	assert.Equal(t, "<p>Oversat</p>", got.TranslatedVersions["da"])
	require.Len(t, got.Images, 1)
	assert.Equal(t, "hero", got.Images[0].Alt)
	assert.False(t, got.Incomplete)

	p.Status = StatusEditing
	p.Incomplete = true
	require.NoError(t, s.SaveProject(ctx, p))
	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEditing, got.Status)
	assert.True(t, got.Incomplete)
}

func TestProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProjectsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	brandID := uuid.NewString()
	require.NoError(t, s.SaveProject(ctx, &Project{ID: uuid.NewString(), Type: "blog", Title: "A", Status: StatusDraft, BrandID: brandID}))
	require.NoError(t, s.SaveProject(ctx, &Project{ID: uuid.NewString(), Type: "blog", Title: "B", Status: StatusFinalized, BrandID: brandID}))
	require.NoError(t, s.SaveProject(ctx, &Project{ID: uuid.NewString(), Type: "presell", Title: "C", Status: StatusDraft}))

	drafts, err := s.ListProjects(ctx, StatusDraft, "")
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	branded, err := s.ListProjects(ctx, StatusDraft, brandID)
	require.NoError(t, err)
	require.Len(t, branded, 1)
	assert.Equal(t, "A", branded[0].Title)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBrand(ctx, &Brand{ID: uuid.NewString(), Name: "X", Slug: "x"}))
	require.NoError(t, s.SaveProject(ctx, &Project{ID: uuid.NewString(), Type: "blog", Title: "A", Status: StatusDraft}))
	require.NoError(t, s.SaveProject(ctx, &Project{ID: uuid.NewString(), Type: "blog", Title: "B", Status: StatusDraft}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Brands)
	assert.Equal(t, 2, st.Projects)
	assert.Equal(t, 2, st.ProjectsByStatus[StatusDraft])
}
