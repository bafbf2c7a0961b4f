package sharepoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPage = `<html><body>
<a href="/sites/huc/Shared%20Documents/SSR-2025.pdf">Self-Study Report</a>
<a href="/sites/huc/Shared%20Documents/syllabus.docx?web=1">   Course Syllabus  </a>
<a href="/sites/huc/Shared%20Documents/SSR-2025.pdf">Self-Study Report (again)</a>
<a href="/sites/huc/Pages/home.aspx">Home</a>
<a href="https://other.example.com/budget.xlsx"></a>
<a href="mailto:dean@huc.edu">Contact</a>
</body></html>`

func TestScrapeDocumentsFiltersAndResolves(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(listPage))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL+"/sites/huc/page.aspx", "FedAuth=abc123")
	links, err := s.ScrapeDocuments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "FedAuth=abc123", gotCookie)
	require.Len(t, links, 3)

	assert.Equal(t, "Self-Study Report", links[0].Title)
	assert.Equal(t, srv.URL+"/sites/huc/Shared%20Documents/SSR-2025.pdf", links[0].URL)
	assert.Equal(t, "pdf", links[0].Type)

	// query string stripped before the extension check, title trimmed
	assert.Equal(t, "Course Syllabus", links[1].Title)
	assert.Equal(t, "docx", links[1].Type)

	// empty anchor text falls back to the file name
	assert.Equal(t, "budget.xlsx", links[2].Title)
	assert.Equal(t, "https://other.example.com/budget.xlsx", links[2].URL)
}

func TestScrapeDocumentsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewScraper(srv.URL, "")
	_, err := s.ScrapeDocuments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pdf bytes"))
	}))
	defer srv.Close()

	s := NewScraper(srv.URL, "")
	dest := t.TempDir()

	local, err := s.Download(context.Background(), DocumentLink{
		Title: "Report",
		URL:   srv.URL + "/docs/report.pdf?web=1",
		Type:  "pdf",
	}, dest)
	require.NoError(t, err)

	b, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(b))
	assert.Contains(t, local, "report.pdf")
}
