// Package roadmap builds a week-by-week learning plan for skills a candidate lacks.
package roadmap

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/fetch"
)

// ErrNoSkills is returned when a roadmap is requested for an empty skill list.
var ErrNoSkills = errors.New("no skills to build a roadmap for")

// DefaultCoursesPerProvider bounds the course links kept per search page in live mode.
const DefaultCoursesPerProvider = 3

// Searcher collects course links for each skill.
type Searcher struct {
	live      bool
	fetchOpts *fetch.Options
	perSite   int
	log       logrus.FieldLogger
}

// SearchOption configures a Searcher
type SearchOption func(*Searcher)

// WithLiveSearch fetches every search page and adds the course links found on it.
// A nil opts uses fetch.DefaultOptions.
func WithLiveSearch(opts *fetch.Options) SearchOption {
	return func(s *Searcher) {
		s.live = true
		s.fetchOpts = opts
	}
}

// WithCoursesPerProvider sets how many course links are kept per search page.
func WithCoursesPerProvider(n int) SearchOption {
	return func(s *Searcher) {
		if n > 0 {
			s.perSite = n
		}
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(log logrus.FieldLogger) SearchOption {
	return func(s *Searcher) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSearcher creates a searcher. Without WithLiveSearch it only builds
// search page links and never touches the network.
func NewSearcher(opts ...SearchOption) *Searcher {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := &Searcher{perSite: DefaultCoursesPerProvider, log: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns, per skill, the provider search links followed by any
// course links found on them. A search page that cannot be fetched keeps
// only its search link.
func (s *Searcher) Search(ctx context.Context, skills []string) (map[string][]string, error) {
	skills = CleanSkills(skills)
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}

	results := make(map[string][]string, len(skills))
	for _, skill := range skills {
		var links []string
		var courses []string
		for _, provider := range fetch.Providers() {
			searchURL := fetch.SearchURL(provider, skill)
			links = append(links, searchURL)
			if !s.live {
				continue
			}
			found, err := s.courses(ctx, provider, searchURL)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.log.WithError(err).WithFields(logrus.Fields{
					"skill":    skill,
					"provider": provider,
				}).Warn("course search failed, keeping search link")
				continue
			}
			courses = append(courses, found...)
		}
		results[skill] = append(links, courses...)
		s.log.WithFields(logrus.Fields{"skill": skill, "links": len(results[skill])}).Debug("search complete")
	}
	return results, nil
}

func (s *Searcher) courses(ctx context.Context, provider fetch.Provider, searchURL string) ([]string, error) {
	page, err := fetch.URL(ctx, searchURL, s.fetchOpts)
	if err != nil {
		return nil, err
	}
	links, err := fetch.ExtractLinks(page.HTML, searchURL, fetch.CourseLinkSelectors(provider), s.perSite)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	return urls, nil
}

// CleanSkills trims skills, drops blanks and removes case-insensitive duplicates.
func CleanSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	var out []string
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}

// ParseSkillList splits a comma separated skill list.
func ParseSkillList(input string) []string {
	return CleanSkills(strings.Split(input, ","))
}
