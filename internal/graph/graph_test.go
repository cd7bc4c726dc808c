package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yaopedia/pkg/apperr"
)

func TestAddNodeDeduplicates(t *testing.T) {
	g := &Graph{Nodes: []Node{}, Links: []Link{}}
	seen := make(map[string]struct{})

	fox := dbtype.Node{
		ElementId: "4:abc:1",
		Labels:    []string{"Monster"},
		Props:     map[string]any{"name": "九尾狐"},
	}
	book := dbtype.Node{
		ElementId: "4:abc:2",
		Labels:    []string{"Book"},
		Props:     map[string]any{"name": "山海经", "era": "先秦"},
	}

	addNode(g, seen, fox)
	addNode(g, seen, book)
	addNode(g, seen, fox) // repeat across result rows

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "4:abc:1", g.Nodes[0].ID)
	assert.Equal(t, "九尾狐", g.Nodes[0].Name)
	assert.Equal(t, "Monster", g.Nodes[0].Type)
	assert.Equal(t, "Book", g.Nodes[1].Type)
	assert.Equal(t, "先秦", g.Nodes[1].Properties["era"])
}

func TestAddNodeWithoutLabelsOrName(t *testing.T) {
	g := &Graph{}
	seen := make(map[string]struct{})

	addNode(g, seen, dbtype.Node{ElementId: "4:abc:9", Props: map[string]any{}})

	require.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Nodes[0].Type)
	assert.Empty(t, g.Nodes[0].Name)
}

func TestStringProp(t *testing.T) {
	props := map[string]any{"description": "形态相似", "weight": int64(3)}
	assert.Equal(t, "形态相似", stringProp(props, "description"))
	assert.Empty(t, stringProp(props, "weight"), "non-string props read as empty")
	assert.Empty(t, stringProp(props, "missing"))
	assert.Empty(t, stringProp(nil, "anything"))
}

type stubStore struct {
	graph *Graph
	books []Book
	err   error
}

func (s *stubStore) BookGraph(ctx context.Context, book string) (*Graph, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.graph, nil
}

func (s *stubStore) Books(ctx context.Context) ([]Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.books, nil
}

func newGraphRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(store, zap.NewNop()).RegisterRoutes(router.Group("/api/graph"))
	return router
}

func TestBookGraphEndpoint(t *testing.T) {
	store := &stubStore{graph: &Graph{
		Nodes: []Node{
			{ID: "n1", Name: "九尾狐", Type: "Monster"},
			{ID: "n2", Name: "白狐", Type: "Monster"},
		},
		Links: []Link{{Source: "n1", Target: "n2", Type: "同类", Description: "形态相似"}},
	}}
	router := newGraphRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph/books/%E5%B1%B1%E6%B5%B7%E7%BB%8F", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var g Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Links, 1)
	assert.Equal(t, "同类", g.Links[0].Type)
}

func TestBookGraphEmptyBookIs200(t *testing.T) {
	// unknown book and empty book are the same: an empty graph, no error
	router := newGraphRouter(&stubStore{graph: &Graph{Nodes: []Node{}, Links: []Link{}}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph/books/unknown", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, w.Body.String())
}

func TestGraphStoreFailureIs500(t *testing.T) {
	router := newGraphRouter(&stubStore{
		err: apperr.E(apperr.KindUnavailable, "graph store query failed", errors.New("connection refused")),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph/books/x", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "store_unavailable", body["code"])
	assert.Equal(t, "获取知识图谱失败", body["message"])
}

func TestNilStoreReportsUnavailable(t *testing.T) {
	router := newGraphRouter(nil)

	for _, path := range []string{"/api/graph/books", "/api/graph/books/x"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Contains(t, w.Body.String(), "store_unavailable")
	}
}

func TestBooksEndpoint(t *testing.T) {
	router := newGraphRouter(&stubStore{books: []Book{
		{Name: "山海经", Era: "先秦"},
		{Name: "搜神记", Era: "东晋"},
	}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph/books", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Books []Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Books, 2)
	assert.Equal(t, "山海经", body.Books[0].Name)
}
