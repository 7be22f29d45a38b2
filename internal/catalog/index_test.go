package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

func sampleCatalog() model.Catalog {
	return model.Catalog{
		Source: "catalogs/sample/catalog.json",
		Controls: []model.Control{
			{ID: "pm-1"},
		},
		Groups: []model.Group{
			{
				ID: "ac",
				Controls: []model.Control{
					{ID: "ac-1", Title: "Policy and Procedures"},
					{ID: "ac-2", Controls: []model.Control{{ID: "ac-2.1"}, {ID: "ac-2.2"}}},
				},
			},
			{
				ID: "sc",
				Groups: []model.Group{
					{ID: "sc-sub", Controls: []model.Control{{ID: "sc-7"}}},
				},
				Controls: []model.Control{{ID: "sc-1"}},
			},
		},
	}
}

func TestNewPreservesDocumentOrder(t *testing.T) {
	idx, err := New(sampleCatalog())
	require.NoError(t, err)

	want := []string{"pm-1", "ac-1", "ac-2", "ac-2.1", "ac-2.2", "sc-1", "sc-7"}
	assert.Equal(t, want, idx.IDs())
	assert.Equal(t, len(want), idx.Len())
}

func TestNewIsStable(t *testing.T) {
	a, err := New(sampleCatalog())
	require.NoError(t, err)
	b, err := New(sampleCatalog())
	require.NoError(t, err)
	assert.Equal(t, a.IDs(), b.IDs())
}

func TestIndexLookups(t *testing.T) {
	idx, err := New(sampleCatalog())
	require.NoError(t, err)

	assert.True(t, idx.Contains("ac-2.1"))
	assert.False(t, idx.Contains("ac-99"))
	assert.Equal(t, "ac", idx.Parent("ac-2.1"))
	assert.Equal(t, "sc-sub", idx.Parent("sc-7"))
	assert.Equal(t, "", idx.Parent("pm-1"))
	assert.Equal(t, "Policy and Procedures", idx.Title("ac-1"))
	assert.Equal(t, 1, idx.Position("ac-1"))
	assert.Equal(t, -1, idx.Position("nope"))
}

func TestIDsReturnsCopy(t *testing.T) {
	idx, err := New(sampleCatalog())
	require.NoError(t, err)

	ids := idx.IDs()
	ids[0] = "mutated"
	assert.Equal(t, "pm-1", idx.IDs()[0])
}

func TestNewStructureErrors(t *testing.T) {
	tests := []struct {
		name     string
		catalogs []model.Catalog
		control  string
	}{
		{
			name: "duplicate in group",
			catalogs: []model.Catalog{{Groups: []model.Group{
				{ID: "ac", Controls: []model.Control{{ID: "ac-1"}, {ID: "ac-1"}}},
			}}},
			control: "ac-1",
		},
		{
			name: "duplicate enhancement",
			catalogs: []model.Catalog{{Controls: []model.Control{
				{ID: "ac-2", Controls: []model.Control{{ID: "ac-2"}}},
			}}},
			control: "ac-2",
		},
		{
			name: "duplicate inside second catalog",
			catalogs: []model.Catalog{
				{Controls: []model.Control{{ID: "ac-1"}}},
				{Controls: []model.Control{{ID: "au-1"}, {ID: "au-1"}}},
			},
			control: "au-1",
		},
		{
			name:     "empty id",
			catalogs: []model.Catalog{{Controls: []model.Control{{ID: ""}}}},
			control:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := New(tt.catalogs...)
			require.Error(t, err)
			assert.Nil(t, idx)

			var structErr *CatalogStructureError
			require.True(t, errors.As(err, &structErr))
			assert.Equal(t, tt.control, structErr.ControlID)
		})
	}
}

func TestNewEmpty(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.IDs())
}

func TestNewMergesOverlappingCatalogs(t *testing.T) {
	full := model.Catalog{Source: "catalog.json", Groups: []model.Group{
		{ID: "ac", Controls: []model.Control{
			{ID: "ac-1", Title: "Policy"},
			{ID: "ac-2", Title: "Account Management", Controls: []model.Control{{ID: "ac-2.1"}}},
		}},
	}}
	selected := model.Catalog{Source: "profile.json", Groups: []model.Group{
		{ID: "ac", Controls: []model.Control{
			{ID: "ac-2", Title: "Account Management"},
			{ID: "ac-3", Title: "Access Enforcement"},
		}},
	}}

	idx, err := New(selected, full)
	require.NoError(t, err)
	assert.Equal(t, []string{"ac-2", "ac-3", "ac-1", "ac-2.1"}, idx.IDs())
	assert.Equal(t, 0, idx.Position("ac-2"))
	assert.Equal(t, "ac", idx.Parent("ac-1"))
}
