package source

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest/extract"
	"jobboard-api/pkg/models"
)

const (
	SiteIndeed     = "indeed"
	indeedPageSize = 10

	// Card container classes vary across board redesigns; all three
	// generations are matched
	indeedCardSelector = "div.job_seen_beacon, div.slider_container, div.jobsearch-SerpJobCard"
)

// Indeed scrapes the Indeed search results page
type Indeed struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	policy    retryPolicy
}

// NewIndeed creates an Indeed adapter with its own rate-limiter state
func NewIndeed(cfg *config.Config, src *models.SourceConfig) *Indeed {
	return &Indeed{
		baseURL:   src.BaseURL,
		userAgent: cfg.Scraper.UserAgent,
		client:    &http.Client{Timeout: cfg.Scraper.RequestTimeout},
		limiter:   rate.NewLimiter(rate.Every(src.RateLimit()), 1),
		policy: retryPolicy{
			maxRetries:  cfg.Scraper.MaxRetries,
			backoffBase: cfg.Scraper.BackoffBase,
		},
	}
}

func (s *Indeed) Name() string {
	return SiteIndeed
}

func (s *Indeed) PageSize() int {
	return indeedPageSize
}

// FetchPage fetches one results page. It blocks until the adapter's
// minimum inter-request interval has elapsed.
func (s *Indeed) FetchPage(ctx context.Context, query, location string, offset int) ([]extract.Fragment, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := buildSearchURL(s.baseURL, query, location, offset)
	return fetchFragments(ctx, s.client, target, s.userAgent, indeedCardSelector, SiteIndeed, offset, s.policy)
}

// IndeedRules is the fallback selector chain for Indeed listing cards
func IndeedRules(baseURL string) extract.Ruleset {
	return extract.Ruleset{
		Source:  "Indeed",
		BaseURL: baseURL,
		Title: []Rule{
			{Selector: "h2.jobTitle"},
			{Selector: "a[data-jk]"},
			{Selector: "span[title]", Attr: "title"},
		},
		Company: []Rule{
			{Selector: "span.companyName"},
			{Selector: "div.company"},
			{Selector: "a.companyOverviewLink"},
		},
		Location: []Rule{
			{Selector: "div.companyLocation"},
			{Selector: "span.location"},
		},
		Salary: []Rule{
			{Selector: "span.salary-snippet"},
			{Selector: "span.estimated-salary"},
		},
		Description: []Rule{
			{Selector: "div.job-snippet"},
			{Selector: "div.summary"},
		},
		Link: []Rule{
			{Selector: "h2.jobTitle a", Attr: "href"},
			{Selector: "a[data-jk]", Attr: "href"},
		},
	}
}

// Rule is re-exported so source files can declare rulesets compactly
type Rule = extract.Rule
