package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, userAgent)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusTooManyRequests, result.StatusCode)
	assert.Contains(t, err.Error(), "429")
}

func TestExtractLinks(t *testing.T) {
	html := `<html><body>
		<nav><a href="/learn/nav-course">Nav</a></nav>
		<main>
			<a href="/learn/go-basics">  Go
				Basics </a>
			<a href="/learn/go-basics#reviews">Go Basics again</a>
			<a href="/about">About</a>
			<a href="https://www.coursera.org/learn/advanced-go">Advanced Go</a>
		</main>
	</body></html>`

	links, err := ExtractLinks(html, "https://www.coursera.org/search?query=Go", CourseLinkSelectors(ProviderCoursera), 0)
	require.NoError(t, err)
	assert.Equal(t, []Link{
		{Title: "Go Basics", URL: "https://www.coursera.org/learn/go-basics"},
		{Title: "Advanced Go", URL: "https://www.coursera.org/learn/advanced-go"},
	}, links)
}

func TestExtractLinks_Limit(t *testing.T) {
	html := `<a href="/course/a">A</a><a href="/course/b">B</a><a href="/course/c">C</a>`
	links, err := ExtractLinks(html, "https://www.udemy.com/", CourseLinkSelectors(ProviderUdemy), 2)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "https://www.udemy.com/course/b", links[1].URL)
}
