package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/emgapi/internal/testutil"
	"github.com/yumyai/emgapi/pkg/config"
	"github.com/yumyai/emgapi/pkg/handler"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *handler.Meta   `json:"meta"`
}

func newServer(t *testing.T, opts ...config.Option) http.Handler {
	t.Helper()
	cfg := config.New(opts...)
	return handler.NewRouter(handler.NewDBContext(testutil.Stores(t), cfg))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) *handler.Meta {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, data))
	return env.Meta
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var e handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "error", e.Status)
	return e
}

type node struct {
	Lineage      string `json:"lineage"`
	SamplesCount int    `json:"samples_count"`
}

func nodeLineages(nodes []node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Lineage
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	rec := get(t, newServer(t), "/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Health)
	assert.Equal(t, "ok", health.Stores["document"])
}

func TestListRootBiomes(t *testing.T) {
	srv := newServer(t)

	rec := get(t, srv, "/v1/biomes")
	require.Equal(t, http.StatusOK, rec.Code)
	var nodes []node
	meta := decode(t, rec, &nodes)
	assert.Equal(t, []string{"root", "root2"}, nodeLineages(nodes))
	require.NotNil(t, meta.Pagination)
	assert.Equal(t, handler.Pagination{Page: 1, Pages: 1, Count: 2}, *meta.Pagination)

	rec = get(t, srv, "/v1/biomes?page=2&page_size=1")
	meta = decode(t, rec, &nodes)
	assert.Equal(t, []string{"root2"}, nodeLineages(nodes))
	assert.Equal(t, handler.Pagination{Page: 2, Pages: 2, Count: 2}, *meta.Pagination)

	// past the end is an empty page, not an error
	rec = get(t, srv, "/v1/biomes?page=9&page_size=1")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &nodes)
	assert.Empty(t, nodes)
}

func TestBiomeRelations(t *testing.T) {
	srv := newServer(t)

	var nodes []node
	rec := get(t, srv, "/v1/biomes/root/children")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &nodes)
	assert.Equal(t, []string{"root:foo", "root:foo2"}, nodeLineages(nodes))

	rec = get(t, srv, "/v1/biomes/root:foo2/descendants?page_size=2")
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decode(t, rec, &nodes)
	assert.Equal(t, []string{"root:foo2:baz", "root:foo2:qux"}, nodeLineages(nodes))
	assert.Equal(t, 3, meta.Pagination.Count)
	assert.Equal(t, 2, meta.Pagination.Pages)

	var samples []struct {
		Accession string `json:"accession"`
	}
	rec = get(t, srv, "/v1/biomes/root:foo2/samples")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &samples)
	require.Len(t, samples, 2)
	assert.Equal(t, "ERS0004", samples[0].Accession)

	var studies []struct {
		Accession string `json:"accession"`
	}
	rec = get(t, srv, "/v1/biomes/root/studies")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &studies)
	require.Len(t, studies, 2)
	assert.Equal(t, "MGYS00000001", studies[0].Accession)

	rec = get(t, srv, "/v1/biomes/root/parents")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	decodeError(t, rec)
}

func TestGetBiome(t *testing.T) {
	srv := newServer(t)

	rec := get(t, srv, "/v1/biomes/root")
	require.Equal(t, http.StatusOK, rec.Code)
	var n node
	decode(t, rec, &n)
	assert.Equal(t, "root", n.Lineage)
	assert.Equal(t, 4, n.SamplesCount)

	rec = get(t, srv, "/v1/biomes/root:nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "root:nope")

	rec = get(t, srv, "/v1/biomes/root;foo/children")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopBiomes(t *testing.T) {
	var top []node

	rec := get(t, newServer(t), "/v1/biomes/top10")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &top)
	assert.Empty(t, top)

	rec = get(t, newServer(t, config.OptTopBiomes([]int{4, 2, 1, 8})), "/v1/biomes/top10")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &top)
	assert.Equal(t, []string{"root", "root:foo2", "root:foo", "root2"}, nodeLineages(top))
	assert.Equal(t, 4, top[0].SamplesCount)
}

func TestStudyBiomes(t *testing.T) {
	srv := newServer(t)
	var nodes []node

	rec := get(t, srv, "/v1/studies/MGYS00000003/biomes")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &nodes)
	assert.Equal(t, []string{"root:foo2:qux", "root:foo2:qux:deep"}, nodeLineages(nodes))

	rec = get(t, srv, "/v1/studies/MGYS00000003/biomes?rollup=true")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &nodes)
	assert.Equal(t, []string{"root", "root:foo2", "root:foo2:qux", "root:foo2:qux:deep"}, nodeLineages(nodes))

	rec = get(t, srv, "/v1/studies/MGYS00000002/biomes")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type annotationItem struct {
	Accession   string `json:"accession"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

func TestAnalysisAnnotations(t *testing.T) {
	srv := newServer(t)

	var items []annotationItem
	rec := get(t, srv, "/v1/analyses/MGYA00102827/5.0/go-terms")
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, annotationItem{Accession: "GO:0008150", Description: "biological_process", Count: 12}, items[0])
	assert.Equal(t, 1, meta.Pagination.Count)

	// run accession plus version resolves the same analysis
	rec = get(t, srv, "/v1/analyses/ERR0002/5.0/go-terms")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &items)
	require.Len(t, items, 1)

	rec = get(t, srv, "/v1/analyses/MGYA00102827/5.0/go-things")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv, "/v1/analyses/MGYA00000404/5.0/go-terms")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, srv, "/v1/analyses/MGYA00000300/5.0/taxonomy")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisSummary(t *testing.T) {
	rec := get(t, newServer(t), "/v1/analyses/MGYA00000100/5.0/annotations")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary handler.AnalysisSummary
	decode(t, rec, &summary)
	assert.Equal(t, "MGYA00000100", summary.Analysis.Accession)
	assert.Len(t, summary.Annotations, 10)
}

func TestAnnotationAnalyses(t *testing.T) {
	srv := newServer(t)

	var analyses []struct {
		Accession string `json:"accession"`
	}
	rec := get(t, srv, "/v1/annotations/go-slim/GO:0008150/analyses")
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decode(t, rec, &analyses)
	require.Len(t, analyses, 3)
	assert.Equal(t, "MGYA00102827", analyses[0].Accession)
	assert.Equal(t, 3, meta.Pagination.Count)

	rec = get(t, srv, "/v1/annotations/go-slim/GO:0008150/analyses?page=2&page_size=2")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &analyses)
	require.Len(t, analyses, 1)
	assert.Equal(t, "MGYA00000100", analyses[0].Accession)

	rec = get(t, srv, "/v1/annotations/go-terms/GO:0000000/analyses")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAnnotation(t *testing.T) {
	srv := newServer(t)

	var term struct {
		Accession   string `json:"accession"`
		Description string `json:"description"`
	}
	rec := get(t, srv, "/v1/annotations/pfam-entries/PF00001")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &term)
	assert.Equal(t, "7tm_1", term.Description)

	rec = get(t, srv, "/v1/annotations/unknown/PF00001")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrganismChildren(t *testing.T) {
	srv := newServer(t)

	var orgs []struct {
		Lineage string `json:"lineage"`
	}
	rec := get(t, srv, "/v1/annotations/organisms/Bacteria:Proteobacteria/children")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &orgs)
	require.Len(t, orgs, 2)
	assert.Equal(t, "Bacteria:Proteobacteria", orgs[0].Lineage)

	rec = get(t, srv, "/v1/annotations/organisms/Eukaryota/children")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHugePageIsPastTheEnd(t *testing.T) {
	srv := newServer(t)

	var nodes []node
	rec := get(t, srv, "/v1/biomes/root/descendants?page=922337203685477581&page_size=20")
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decode(t, rec, &nodes)
	assert.Empty(t, nodes)
	assert.Equal(t, 6, meta.Pagination.Count)

	var orgs []struct {
		Lineage string `json:"lineage"`
	}
	rec = get(t, srv, "/v1/annotations/organisms/Bacteria/children?page=922337203685477581&page_size=20")
	require.Equal(t, http.StatusOK, rec.Code)
	meta = decode(t, rec, &orgs)
	assert.Empty(t, orgs)
	assert.Equal(t, 3, meta.Pagination.Count)
}

func TestListAnnotations(t *testing.T) {
	srv := newServer(t)

	var terms []struct {
		Accession string `json:"accession"`
	}
	rec := get(t, srv, "/v1/annotations/go-terms?page=2&page_size=2")
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decode(t, rec, &terms)
	require.Len(t, terms, 1)
	assert.Equal(t, "GO:0008150", terms[0].Accession)
	assert.Equal(t, handler.Pagination{Page: 2, Pages: 2, Count: 3}, *meta.Pagination)

	rec = get(t, srv, "/v1/annotations/nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
