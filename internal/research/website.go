package research

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// WebsiteFinder discovers a company's main website
type WebsiteFinder interface {
	FindWebsite(ctx context.Context, company string) (string, error)
}

// SearchFinder finds websites with the Google Programmable Search API
type SearchFinder struct {
	svc *customsearch.Service
	cx  string
}

// NewSearchFinder creates a SearchFinder for the given search engine ID
func NewSearchFinder(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*SearchFinder, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search API key and engine ID are required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &SearchFinder{svc: svc, cx: cx}, nil
}

// FindWebsite returns the first search result that is not a third-party profile page
func (f *SearchFinder) FindWebsite(ctx context.Context, company string) (string, error) {
	query := fmt.Sprintf("%s official website", company)
	resp, err := f.svc.Cse.List().Cx(f.cx).Q(query).Num(5).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	for _, item := range resp.Items {
		if !IsThirdParty(item.Link) {
			return item.Link, nil
		}
	}
	return "", fmt.Errorf("no company website found for %s", company)
}

// thirdPartyHosts are profile aggregators that never count as the company site
var thirdPartyHosts = []string{
	"linkedin.com",
	"crunchbase.com",
	"wikipedia.org",
	"glassdoor.com",
	"pitchbook.com",
	"tracxn.com",
	"twitter.com",
	"x.com",
	"facebook.com",
	"bloomberg.com",
}

// IsThirdParty reports whether a URL points at a profile aggregator
func IsThirdParty(link string) bool {
	host := Domain(link)
	for _, tp := range thirdPartyHosts {
		if host == tp || strings.HasSuffix(host, "."+tp) {
			return true
		}
	}
	return false
}

// Domain reduces a URL to its bare host, without scheme, "www." or path
func Domain(link string) string {
	link = strings.TrimSpace(strings.ToLower(link))
	link = strings.TrimPrefix(link, "https://")
	link = strings.TrimPrefix(link, "http://")
	link = strings.TrimPrefix(link, "www.")
	if idx := strings.IndexAny(link, "/?#"); idx >= 0 {
		link = link[:idx]
	}
	return link
}
