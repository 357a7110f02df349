package savedsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencatalog/catalog-notifier/internal/search"
)

const siteURL = "https://catalog.example.com"

func TestParseSearchStringFreeText(t *testing.T) {
	got := parseSearchString("?q=climate", siteURL)

	assert.Equal(t, "climate", got.query.Text)
	assert.Empty(t, got.query.Filters)
	assert.Equal(t, siteURL+"/dataset", got.url)
}

func TestParseSearchStringGenericFilters(t *testing.T) {
	got := parseSearchString("q=water&tags=rivers&license_id=cc-by", siteURL)

	assert.Equal(t, "water", got.query.Text)
	require.Len(t, got.query.Filters, 2)
	assert.Equal(t, search.Filter{Key: "tags", Value: "rivers", Exact: true}, got.query.Filters[0])
	assert.Equal(t, search.Filter{Key: "license_id", Value: "cc-by", Exact: true}, got.query.Filters[1])
	assert.Equal(t, siteURL+"/dataset?tags=rivers&license_id=cc-by", got.url)
}

func TestParseSearchStringOrganizationRename(t *testing.T) {
	got := parseSearchString("organization=city-of-govtown", siteURL)

	require.Len(t, got.query.Filters, 1)
	assert.Equal(t, "owner_org", got.query.Filters[0].Key)
	assert.True(t, got.query.Filters[0].Exact)
	// The reconstructed URL keeps the original parameter name.
	assert.Equal(t, siteURL+"/dataset?organization=city-of-govtown", got.url)
}

func TestParseSearchStringOrgScope(t *testing.T) {
	got := parseSearchString("_search_organization=org123&tags=health", siteURL)

	require.Len(t, got.query.Filters, 2)
	assert.Equal(t, search.Filter{Key: "owner_org", Value: "org123"}, got.query.Filters[0])
	assert.Equal(t, siteURL+"/organization/org123?tags=health", got.url)
}

func TestParseSearchStringGroupScope(t *testing.T) {
	got := parseSearchString("_search_group=env", siteURL)

	require.Len(t, got.query.Filters, 1)
	assert.Equal(t, search.Filter{Key: "groups", Value: "env"}, got.query.Filters[0])
	assert.Equal(t, siteURL+"/group/env", got.url)
}

func TestParseSearchStringScopeSentinel(t *testing.T) {
	// "0" means no scoping was selected; no filter, default base URL.
	got := parseSearchString("_search_organization=0&_search_group=0&q=x", siteURL)

	assert.Empty(t, got.query.Filters)
	assert.Equal(t, siteURL+"/dataset", got.url)
}

func TestParseSearchStringTypeScope(t *testing.T) {
	got := parseSearchString("_search_package_type=showcase", siteURL)

	require.Len(t, got.query.Filters, 1)
	assert.Equal(t, search.Filter{
		Key:     "dataset_type",
		Value:   "showcase",
		Require: true,
	}, got.query.Filters[0])
	assert.Equal(t, siteURL+"/showcase", got.url)
}

func TestParseSearchStringTypeScopeSearchAll(t *testing.T) {
	// The search-all type scopes the URL but must not add a type filter.
	got := parseSearchString("_search_package_type=all", siteURL)

	assert.Empty(t, got.query.Filters)
	assert.Equal(t, siteURL+"/all", got.url)
}

func TestParseSearchStringExtensionParams(t *testing.T) {
	got := parseSearchString("ext_bbox=1,2,3,4&tags=maps", siteURL)

	require.Len(t, got.query.Filters, 1)
	assert.Equal(t, "tags", got.query.Filters[0].Key)
	assert.Equal(t, map[string]string{"ext_bbox": "1,2,3,4"}, got.query.Extras)
	assert.Equal(t, siteURL+"/dataset?ext_bbox=1,2,3,4&tags=maps", got.url)
}

func TestParseSearchStringLenient(t *testing.T) {
	// Paging and sorting are dropped; malformed parts, empty values, and
	// unknown underscore keys silently vanish.
	got := parseSearchString(
		"page=3&sort=score+desc&tags=&_private=x&noequals&tags=ok", siteURL,
	)

	require.Len(t, got.query.Filters, 1)
	assert.Equal(t, "ok", got.query.Filters[0].Value)
	assert.Equal(t, siteURL+"/dataset?tags=ok", got.url)
}

func TestParseSearchStringEmpty(t *testing.T) {
	got := parseSearchString("", siteURL)

	assert.Empty(t, got.query.Text)
	assert.Empty(t, got.query.Filters)
	assert.Equal(t, siteURL+"/dataset", got.url)
}

func TestFilterStringRendering(t *testing.T) {
	fq := search.FilterString([]search.Filter{
		{Key: "owner_org", Value: "org123"},
		{Key: "tags", Value: "open data", Exact: true},
		{Key: "dataset_type", Value: "showcase", Require: true},
	})

	assert.Equal(t, `owner_org:org123 tags:"open data" +dataset_type:showcase`, fq)
}
