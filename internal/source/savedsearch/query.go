package savedsearch

import (
	"strings"

	"github.com/opencatalog/catalog-notifier/internal/search"
)

// paramKind classifies a saved-search parameter. Every parameter falls into
// exactly one kind, which determines whether it becomes the free-text query,
// a structured filter clause, an extension parameter handed to the backend
// verbatim, or part of the reconstructed URL only.
type paramKind int

const (
	kindFreeText  paramKind = iota // q
	kindControl                    // page, sort: dropped
	kindOrgScope                   // _search_organization
	kindGroupScope                 // _search_group
	kindTypeScope                  // _search_package_type
	kindExtension                  // ext_*: passed to the backend verbatim
	kindExact                      // anything else: exact-match filter clause
	kindIgnored                    // empty values, unknown _-prefixed keys
)

// noScope is the sentinel the web UI stores when a scoping dropdown is left
// on "no organization"/"no group".
const noScope = "0"

// searchAllType is the package-type value meaning "search across all
// dataset types"; it scopes the reconstructed URL but adds no type filter.
const searchAllType = "all"

// classify assigns a parameter to its kind.
func classify(key, value string) paramKind {
	switch key {
	case "q":
		return kindFreeText
	case "page", "sort":
		return kindControl
	case "_search_organization":
		if value == noScope {
			return kindIgnored
		}
		return kindOrgScope
	case "_search_group":
		if value == noScope {
			return kindIgnored
		}
		return kindGroupScope
	case "_search_package_type":
		if value == noScope {
			return kindIgnored
		}
		return kindTypeScope
	}
	if value == "" || strings.HasPrefix(key, "_") {
		return kindIgnored
	}
	if strings.HasPrefix(key, "ext_") {
		return kindExtension
	}
	return kindExact
}

// parsedSearch is the result of decomposing a stored search string: the
// re-executable query plus a browsable URL for the (possibly changed)
// results.
type parsedSearch struct {
	query search.Query
	url   string
}

// parseParams splits the raw &-delimited blob into ordered key/value pairs.
// Question marks are stripped and parts without an "=" are dropped; values
// are not decoded further. Parsing is deliberately lenient: a malformed
// part silently vanishes rather than failing the whole search.
func parseParams(raw string) [][2]string {
	raw = strings.ReplaceAll(raw, "?", "")

	var params [][2]string
	for _, part := range strings.Split(raw, "&") {
		s := strings.SplitN(part, "=", 2)
		if len(s) > 1 {
			params = append(params, [2]string{s[0], s[1]})
		}
	}
	return params
}

// parseSearchString rebuilds a saved search's query and browsable URL from
// its stored representation. siteURL is the catalog's public root URL.
func parseSearchString(raw, siteURL string) parsedSearch {
	siteURL = strings.TrimRight(siteURL, "/")

	var (
		q       string
		filters []search.Filter
		extras  map[string]string
	)

	// The reconstructed URL defaults to the dataset search page; scoping
	// parameters replace the base with the organization, group, or
	// type-specific page.
	base := siteURL + "/dataset"
	var trailing []string

	for _, param := range parseParams(raw) {
		key, value := param[0], param[1]

		switch classify(key, value) {
		case kindFreeText:
			q = value

		case kindControl, kindIgnored:
			// Dropped: paging and sorting are irrelevant to change
			// detection, and unknown control keys have no meaning here.

		case kindOrgScope:
			filters = append(filters, search.Filter{
				Key:   "owner_org",
				Value: value,
			})
			base = siteURL + "/organization/" + value

		case kindGroupScope:
			filters = append(filters, search.Filter{
				Key:   "groups",
				Value: value,
			})
			base = siteURL + "/group/" + value

		case kindTypeScope:
			base = siteURL + "/" + value
			if value != searchAllType {
				filters = append(filters, search.Filter{
					Key:     "dataset_type",
					Value:   value,
					Require: true,
				})
			}

		case kindExtension:
			if extras == nil {
				extras = make(map[string]string)
			}
			extras[key] = value
			trailing = append(trailing, key+"="+value)

		case kindExact:
			filterKey := key
			// Renamed for compatibility with the index schema.
			if filterKey == "organization" {
				filterKey = "owner_org"
			}
			filters = append(filters, search.Filter{
				Key:   filterKey,
				Value: value,
				Exact: true,
			})
			trailing = append(trailing, key+"="+value)
		}
	}

	url := base
	if len(trailing) > 0 {
		url += "?" + strings.Join(trailing, "&")
	}

	return parsedSearch{
		query: search.Query{
			Text:    q,
			Filters: filters,
			Extras:  extras,
		},
		url: url,
	}
}
