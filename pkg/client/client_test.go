package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yaopedia/pkg/models"
)

func sampleMonster() models.Monster {
	return models.Monster{
		ID:           "abc-123",
		Name:         "九尾狐",
		Category:     "妖",
		ImageURL:     "/images/jiuweihu.png",
		Appearance:   "其状如狐而九尾",
		Distribution: "青丘之山",
		Description:  "能食人",
		Abilities:    []string{},
		Sources:      []models.Citation{},
	}
}

func TestListMonstersSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/monsters", r.URL.Path)
		assert.Equal(t, "妖", r.URL.Query().Get("type"))
		assert.Equal(t, "狐", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		json.NewEncoder(w).Encode(map[string]any{
			"monsters":    []models.Monster{sampleMonster()},
			"total":       11,
			"currentPage": 2,
			"totalPages":  6,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	page := c.ListMonsters(context.Background(), ListOptions{Category: "妖", Search: "狐", Page: 2, Limit: 2})

	assert.Equal(t, 11, page.Total)
	assert.Equal(t, 6, page.TotalPages)
	require.Len(t, page.Monsters, 1)
	assert.Equal(t, "九尾狐", page.Monsters[0].Name)
}

func TestListMonstersDegradesToEmptyOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"message": "获取数据失败", "error": "db down", "code": "store_unavailable"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	page := c.ListMonsters(context.Background(), ListOptions{})

	assert.NotNil(t, page.Monsters, "views expect a renderable empty slice")
	assert.Empty(t, page.Monsters)
	assert.Zero(t, page.Total)
}

func TestListMonstersDegradesOnUnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)
	page := c.ListMonsters(context.Background(), ListOptions{})
	assert.NotNil(t, page.Monsters)
	assert.Empty(t, page.Monsters)
}

func TestGetMonsterPropagatesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "妖怪不存在", "code": "not_found"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.GetMonster(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, "妖怪不存在", apiErr.Message)
}

func TestCreateMonsterRoundtrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload models.Monster
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "九尾狐", payload.Name)

		payload.ID = "generated-id"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	created, err := c.CreateMonster(context.Background(), sampleMonster())
	require.NoError(t, err)
	assert.Equal(t, "generated-id", created.ID)
}

func TestCreateMonsterPropagatesConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"message": "创建失败", "error": "monster name already exists", "code": "conflict"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.CreateMonster(context.Background(), sampleMonster())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Contains(t, apiErr.Detail, "already exists")
}

func TestUpdateAndDeleteMonster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			assert.Equal(t, "/api/monsters/abc-123", r.URL.Path)
			var patch models.MonsterPatch
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			require.NotNil(t, patch.Description)

			m := sampleMonster()
			m.Description = *patch.Description
			json.NewEncoder(w).Encode(m)
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]string{"message": "删除成功"})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	desc := "新的描述"
	updated, err := c.UpdateMonster(context.Background(), "abc-123", models.MonsterPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "新的描述", updated.Description)

	require.NoError(t, c.DeleteMonster(context.Background(), "abc-123"))
}

func TestBookGraphPropagatesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"message": "获取知识图谱失败", "code": "store_unavailable"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.BookGraph(context.Background(), "山海经")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "store_unavailable", apiErr.Code)
}

func TestBookGraphAndBooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/graph/books":
			json.NewEncoder(w).Encode(map[string]any{"books": []Book{{Name: "山海经", Era: "先秦"}}})
		case "/api/graph/books/山海经":
			json.NewEncoder(w).Encode(Graph{
				Nodes: []GraphNode{{ID: "n1", Name: "九尾狐", Type: "Monster"}},
				Links: []GraphLink{},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	books, err := c.Books(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "山海经", books[0].Name)

	g, err := c.BookGraph(context.Background(), "山海经")
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "九尾狐", g.Nodes[0].Name)
}

func TestAPIErrorWithUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.GetMonster(context.Background(), "x")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
