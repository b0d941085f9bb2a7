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
	SiteRemoteOK     = "remoteok"
	remoteOKPageSize = 10

	remoteOKCardSelector = "tr.job"
)

// RemoteOK scrapes the Remote OK listings table
type RemoteOK struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	policy    retryPolicy
}

// NewRemoteOK creates a Remote OK adapter with its own rate-limiter state
func NewRemoteOK(cfg *config.Config, src *models.SourceConfig) *RemoteOK {
	return &RemoteOK{
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

func (s *RemoteOK) Name() string {
	return SiteRemoteOK
}

func (s *RemoteOK) PageSize() int {
	return remoteOKPageSize
}

// FetchPage fetches one results page under the adapter's rate limit
func (s *RemoteOK) FetchPage(ctx context.Context, query, location string, offset int) ([]extract.Fragment, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := buildSearchURL(s.baseURL, query, location, offset)
	return fetchFragments(ctx, s.client, target, s.userAgent, remoteOKCardSelector, SiteRemoteOK, offset, s.policy)
}

// RemoteOKRules is the fallback selector chain for Remote OK listing rows
func RemoteOKRules(baseURL string) extract.Ruleset {
	return extract.Ruleset{
		Source:  "Remote OK",
		BaseURL: baseURL,
		Title: []Rule{
			{Selector: "h2[itemprop='title']"},
			{Selector: "td.position h2"},
		},
		Company: []Rule{
			{Selector: "h3[itemprop='name']"},
			{Selector: "span.companyLink h3"},
		},
		Location: []Rule{
			{Selector: "div.location"},
		},
		Salary: []Rule{
			{Selector: "div.salary"},
		},
		Description: []Rule{
			{Selector: "div.description"},
			{Selector: "td.description"},
		},
		Link: []Rule{
			{Selector: "a.preventLink", Attr: "href"},
			{Selector: "td.position a", Attr: "href"},
		},
	}
}
