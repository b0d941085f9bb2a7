// Package extract pulls structured candidate records out of raw listing
// fragments using ordered selector fallback rules.
package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobboard-api/pkg/models"
	"jobboard-api/pkg/utils"
)

// Sentinel defaults applied when a field cannot be extracted
const (
	UnknownTitle       = "Unknown Title"
	UnknownCompany     = "Unknown Company"
	DefaultLocation    = "Remote"
	DefaultDescription = "No description available"
)

// Minimum description length that counts toward the confidence score
const descriptionBonusLength = 50

// Fragment is one un-extracted listing's raw markup within a fetched page
type Fragment struct {
	Selection *goquery.Selection
}

// Rule selects one candidate value for a field. When Attr is set the
// attribute value is taken instead of the element text.
type Rule struct {
	Selector string
	Attr     string
}

// Ruleset is the ordered fallback chain for every field of one source.
// The first rule per field that yields non-empty text wins.
type Ruleset struct {
	Source  string
	BaseURL string

	Title       []Rule
	Company     []Rule
	Location    []Rule
	Salary      []Rule
	Description []Rule
	Link        []Rule
}

// Extractor turns fragments into candidate records for a single source
type Extractor struct {
	rules Ruleset
}

// New creates an extractor for the given ruleset
func New(rules Ruleset) *Extractor {
	return &Extractor{rules: rules}
}

// Extract attempts to build a candidate record from a fragment. The second
// return value is false when the fragment is noise: neither a title nor a
// company could be found.
func (e *Extractor) Extract(frag Fragment) (*models.CandidateRecord, bool) {
	title := firstText(frag, e.rules.Title)
	company := firstText(frag, e.rules.Company)

	// A fragment with neither signal is advertising chrome or layout
	// scaffolding, not a listing
	if title == "" && company == "" {
		return nil, false
	}

	if title == "" {
		title = UnknownTitle
	}
	if company == "" {
		company = UnknownCompany
	}

	location := firstText(frag, e.rules.Location)
	if location == "" {
		location = DefaultLocation
	}

	var salary *string
	if s := firstText(frag, e.rules.Salary); s != "" {
		salary = &s
	}

	description := firstText(frag, e.rules.Description)
	if description == "" {
		description = DefaultDescription
	}

	var externalURL *string
	if href := firstText(frag, e.rules.Link); href != "" {
		resolved := AbsoluteURL(e.rules.BaseURL, href)
		externalURL = &resolved
	}

	return &models.CandidateRecord{
		Title:           title,
		Company:         company,
		Location:        location,
		SalaryRange:     salary,
		Description:     description,
		SourceName:      e.rules.Source,
		ExternalURL:     externalURL,
		ScrapedAt:       time.Now().UTC(),
		ConfidenceScore: confidence(title, company, description, salary),
	}, true
}

// confidence scores data completeness: base 60 plus fixed bonuses per field
// present above its sentinel default, capped at 100. Advisory only.
func confidence(title, company, description string, salary *string) int {
	score := 60

	if title != "" && title != UnknownTitle {
		score += 20
	}
	if company != "" && company != UnknownCompany {
		score += 15
	}
	if description != DefaultDescription && len(description) > descriptionBonusLength {
		score += 10
	}
	if salary != nil {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// firstText walks the fallback chain and returns the first non-empty value
func firstText(frag Fragment, rules []Rule) string {
	for _, rule := range rules {
		sel := frag.Selection.Find(rule.Selector).First()
		if sel.Length() == 0 {
			continue
		}

		var value string
		if rule.Attr != "" {
			value, _ = sel.Attr(rule.Attr)
		} else {
			value = sel.Text()
		}

		if value = utils.CleanText(value); value != "" {
			return value
		}
	}
	return ""
}

// AbsoluteURL joins a relative href with the source base URL. Absolute
// URLs pass through unchanged.
func AbsoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
