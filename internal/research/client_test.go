package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/medlens/internal/cache"
	"github.com/ppiankov/medlens/internal/model"
)

const esearchBody = `{"esearchresult":{"idlist":["30073260"]}}`

const esummaryBody = `{"result":{"uids":["30073260"],"30073260":{
	"uid":"30073260",
	"title":"Machine Learning and Health Care Disparities in <i>Dermatology</i>",
	"pubdate":"2018 Nov 1",
	"elocationid":"doi: 10.1001/jamadermatol.2018.2348",
	"authors":[{"name":"Adamson AS"},{"name":"Smith S"}]}}}`

const openAlexBody = `{"results":[{
	"id":"https://openalex.org/W4225566401",
	"title":"Disparities in dermatology AI performance",
	"publication_year":2022,
	"doi":"https://doi.org/10.1126/sciadv.abq6147",
	"abstract_inverted_index":{"Models":[0],"underperform":[1],"on":[2],"darker":[3],"skin":[4]},
	"authorships":[{"author":{"display_name":"Roxana Daneshjou"}}]}]}`

const arxivBody = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2111.08006v2</id>
    <title>Disparities in   Dermatology AI:
  Assessments Using a Diverse Clinical Image Set</title>
    <summary>We assess model performance across skin tones.</summary>
    <published>2021-11-15T18:01:33Z</published>
    <author><name>Roxana Daneshjou</name></author>
    <author><name>Kailas Vodrahalli</name></author>
  </entry>
</feed>`

func testClient(t *testing.T, serverURL string, store cache.Cache) *Client {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.RateLimiting.RequestsPerSecond = 1000
	cfg.RateLimiting.BurstSize = 100
	cfg.Research.MaxResults = 10

	c := NewClient(cfg, store)
	c.pubmedBase = serverURL + "/entrez/eutils"
	c.openAlexBase = serverURL
	c.arxivBase = serverURL + "/api/query"
	return c
}

func literatureServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil && r.URL.Path != "/robots.txt" {
			*hits++
		}
		switch {
		case r.URL.Path == "/robots.txt":
			http.NotFound(w, r)
		case r.URL.Path == "/entrez/eutils/esearch.fcgi":
			_, _ = w.Write([]byte(esearchBody))
		case r.URL.Path == "/entrez/eutils/esummary.fcgi":
			_, _ = w.Write([]byte(esummaryBody))
		case r.URL.Path == "/works":
			_, _ = w.Write([]byte(openAlexBody))
		case r.URL.Path == "/api/query":
			_, _ = w.Write([]byte(arxivBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestSearchPubMed(t *testing.T) {
	server := literatureServer(t, nil)
	defer server.Close()

	papers, err := testClient(t, server.URL, nil).SearchPubMed(context.Background(), "dermatology bias")
	if err != nil {
		t.Fatalf("SearchPubMed: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("papers = %d, want 1", len(papers))
	}

	p := papers[0]
	if p.ID != "pmid:30073260" || p.Source != "pubmed" {
		t.Errorf("identity wrong: %+v", p)
	}
	if p.Title != "Machine Learning and Health Care Disparities in Dermatology" {
		t.Errorf("markup not stripped from title: %q", p.Title)
	}
	if p.Year != 2018 {
		t.Errorf("year = %d, want 2018", p.Year)
	}
	if p.DOI != "10.1001/jamadermatol.2018.2348" {
		t.Errorf("DOI not normalized: %q", p.DOI)
	}
	if p.URL != "https://pubmed.ncbi.nlm.nih.gov/30073260/" {
		t.Errorf("URL wrong: %q", p.URL)
	}
}

func TestSearchOpenAlex(t *testing.T) {
	server := literatureServer(t, nil)
	defer server.Close()

	papers, err := testClient(t, server.URL, nil).SearchOpenAlex(context.Background(), "dermatology bias")
	if err != nil {
		t.Fatalf("SearchOpenAlex: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("papers = %d, want 1", len(papers))
	}

	p := papers[0]
	if p.Abstract != "Models underperform on darker skin" {
		t.Errorf("inverted index not reassembled: %q", p.Abstract)
	}
	if p.DOI != "10.1126/sciadv.abq6147" {
		t.Errorf("DOI not normalized: %q", p.DOI)
	}
	if p.Authors != "Roxana Daneshjou" {
		t.Errorf("authors wrong: %q", p.Authors)
	}
}

func TestSearchArxiv(t *testing.T) {
	server := literatureServer(t, nil)
	defer server.Close()

	papers, err := testClient(t, server.URL, nil).SearchArxiv(context.Background(), "dermatology bias")
	if err != nil {
		t.Fatalf("SearchArxiv: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("papers = %d, want 1", len(papers))
	}

	p := papers[0]
	if p.Title != "Disparities in Dermatology AI: Assessments Using a Diverse Clinical Image Set" {
		t.Errorf("feed whitespace not collapsed: %q", p.Title)
	}
	if p.Year != 2021 {
		t.Errorf("year = %d, want 2021", p.Year)
	}
	if p.Authors != "Roxana Daneshjou; Kailas Vodrahalli" {
		t.Errorf("authors wrong: %q", p.Authors)
	}
}

func TestSearchPoolsSources(t *testing.T) {
	server := literatureServer(t, nil)
	defer server.Close()

	papers, errs := testClient(t, server.URL, nil).Search(context.Background(), "dermatology bias")
	if len(errs) != 0 {
		t.Fatalf("unexpected source errors: %v", errs)
	}
	if len(papers) != 3 {
		t.Errorf("papers = %d, want 3 (one per source)", len(papers))
	}
}

func TestFetchUsesCache(t *testing.T) {
	hits := 0
	server := literatureServer(t, &hits)
	defer server.Close()

	store := cache.NewMemoryCache(0, 0)
	c := testClient(t, server.URL, store)

	if _, err := c.SearchOpenAlex(context.Background(), "dermatology"); err != nil {
		t.Fatalf("first search: %v", err)
	}
	first := hits

	if _, err := c.SearchOpenAlex(context.Background(), "dermatology"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if hits != first {
		t.Errorf("identical query must be served from cache: %d then %d requests", first, hits)
	}
}
