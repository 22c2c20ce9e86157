// Package collect discovers candidate articles from configured RSS/Atom
// feeds. It only gathers candidates; deduplication and relevance decisions
// happen downstream in the pipeline.
package collect

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxPerFeed = 20

// Candidate is a discovered article awaiting the pipeline.
type Candidate struct {
	URL           string
	Title         string
	PublishedDate string // YYYY-MM-DD or empty
	Content       string // feed-provided excerpt, HTML stripped
	Source        string
	SourceURL     string // the feed it came from
}

// FeedConfig identifies one feed to poll.
type FeedConfig struct {
	URL  string
	Name string
}

// Collector polls the configured feeds.
type Collector struct {
	feeds []FeedConfig
}

// NewCollector creates a Collector over the given feeds.
func NewCollector(feeds []FeedConfig) *Collector {
	return &Collector{feeds: feeds}
}

// CollectAll polls every feed and returns candidates published within
// daysBack days. A failing feed is logged and skipped; the rest still run.
func (c *Collector) CollectAll(daysBack int) []Candidate {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var all []Candidate

	parser := gofeed.NewParser()
	for _, fc := range c.feeds {
		name := fc.Name
		if name == "" {
			name = extractSourceName(fc.URL)
		}

		candidates, err := collectFeed(parser, fc.URL, name, cutoff)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, candidates...)
		log.Printf("Collected %d candidates from %s (within %d days)", len(candidates), name, daysBack)
	}

	return all
}

func collectFeed(parser *gofeed.Parser, feedURL, sourceName string, cutoff time.Time) ([]Candidate, error) {
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, item := range feed.Items {
		if len(candidates) >= maxPerFeed {
			break
		}

		candidate := parseItem(item, sourceName, feedURL)
		if candidate == nil {
			continue
		}
		if isWithinWindow(candidate.PublishedDate, cutoff) {
			candidates = append(candidates, *candidate)
		}
	}

	return candidates, nil
}

func parseItem(item *gofeed.Item, source, feedURL string) *Candidate {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	var publishedDate string
	if item.PublishedParsed != nil {
		publishedDate = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		publishedDate = item.UpdatedParsed.Format("2006-01-02")
	}

	var content string
	if item.Content != "" {
		content = StripHTML(item.Content)
	} else if item.Description != "" {
		content = StripHTML(item.Description)
	}

	return &Candidate{
		URL:           itemURL,
		Title:         title,
		PublishedDate: publishedDate,
		Content:       content,
		Source:        source,
		SourceURL:     feedURL,
	}
}

// isWithinWindow keeps undated or unparseable entries: a missing date is not
// evidence the entry is old.
func isWithinWindow(publishedDate string, cutoff time.Time) bool {
	if publishedDate == "" {
		return true
	}
	pub, err := time.Parse("2006-01-02", publishedDate)
	if err != nil {
		return true
	}
	return !pub.Before(cutoff)
}

// StripHTML removes tags, decodes common entities, and collapses whitespace.
// Good enough for feed excerpts; full articles go through readability instead.
func StripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	return strings.Join(strings.Fields(s), " ")
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	if host == "" {
		return feedURL
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
