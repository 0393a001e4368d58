// Package search turns free-text queries into upstream filters and runs the fallback chain.
package search

import (
	"strings"
	"unicode"

	"github.com/jrsteele09/go-photos-proxy/media"
)

// Strategy names the stream a page of results came from.
type Strategy string

const (
	// StrategyListing is the unfiltered chronological listing.
	StrategyListing Strategy = "listing"
	// StrategyCategory is the category-filtered search.
	StrategyCategory Strategy = "category"
	// StrategySubstring is the listing filtered by filename.
	StrategySubstring Strategy = "substring"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyListing, StrategyCategory, StrategySubstring:
		return true
	}
	return false
}

// Plan is the translation of one query.
type Plan struct {
	Query    string       `json:"query"`
	Filter   media.Filter `json:"filter"`
	Strategy Strategy     `json:"strategy"`
}

// Translate derives categories from query and picks the first strategy to try.
func Translate(query string) Plan {
	plan := Plan{Query: strings.TrimSpace(query)}
	if plan.Query == "" {
		plan.Strategy = StrategyListing
		return plan
	}

	words := tokenize(plan.Query)
	for _, rule := range Rules {
		if matchesAny(words, rule.Keywords) {
			plan.Filter.Categories = append(plan.Filter.Categories, rule.Category)
		}
	}

	if len(plan.Filter.Categories) == 0 {
		plan.Strategy = StrategySubstring
		return plan
	}

	plan.Strategy = StrategyCategory
	plan.Filter.MediaType = DefaultMediaType
	for _, rule := range MediaRules {
		if matchesAny(words, rule.Keywords) {
			plan.Filter.MediaType = rule.MediaType
			break
		}
	}
	return plan
}

func tokenize(query string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = struct{}{}
	}
	return words
}

func matchesAny(words map[string]struct{}, keywords []string) bool {
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return true
		}
	}
	return false
}
