package fetch

import (
	"net/url"
	"strings"
)

// Provider represents a known course platform.
type Provider string

const (
	// ProviderCoursera is coursera.org
	ProviderCoursera Provider = "coursera"
	// ProviderUdemy is udemy.com
	ProviderUdemy Provider = "udemy"
	// ProviderEdX is edx.org
	ProviderEdX Provider = "edx"
	// ProviderUnknown is an unrecognized site
	ProviderUnknown Provider = "unknown"
)

// Providers lists the searched platforms in result order.
func Providers() []Provider {
	return []Provider{ProviderCoursera, ProviderUdemy, ProviderEdX}
}

// SearchURL returns the course search page of provider for query.
func SearchURL(provider Provider, query string) string {
	q := url.QueryEscape(strings.TrimSpace(query))
	switch provider {
	case ProviderCoursera:
		return "https://www.coursera.org/search?query=" + q
	case ProviderUdemy:
		return "https://www.udemy.com/courses/search/?q=" + q
	case ProviderEdX:
		return "https://www.edx.org/search?q=" + q
	default:
		return ""
	}
}

// DetectProvider identifies the course platform from a URL.
func DetectProvider(urlStr string) Provider {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ProviderUnknown
	}
	host := strings.ToLower(parsed.Host)

	switch {
	case host == "coursera.org" || strings.HasSuffix(host, ".coursera.org"):
		return ProviderCoursera
	case host == "udemy.com" || strings.HasSuffix(host, ".udemy.com"):
		return ProviderUdemy
	case host == "edx.org" || strings.HasSuffix(host, ".edx.org"):
		return ProviderEdX
	default:
		return ProviderUnknown
	}
}

// CourseLinkSelectors returns anchor selectors that point at course pages for a provider.
func CourseLinkSelectors(provider Provider) []string {
	switch provider {
	case ProviderCoursera:
		return []string{
			"a[href^='/learn/']",
			"a[href^='/specializations/']",
			"a[href^='/professional-certificates/']",
		}
	case ProviderUdemy:
		return []string{"a[href^='/course/']"}
	case ProviderEdX:
		return []string{
			"a[href^='/learn/']",
			"a[href*='/course/']",
		}
	default:
		return []string{"a[href]"}
	}
}
