package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yaopedia/pkg/apperr"
)

type Handler struct {
	// Store may be nil when the graph store was unreachable at startup;
	// the catalog keeps serving and graph routes report unavailability.
	Store Store
	Log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books", h.books)           // GET /api/graph/books
	rg.GET("/books/:name", h.bookGraph) // GET /api/graph/books/:name
}

func (h *Handler) books(c *gin.Context) {
	if h.Store == nil {
		h.fail(c, apperr.E(apperr.KindUnavailable, "graph store not configured", nil))
		return
	}
	books, err := h.Store.Books(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *Handler) bookGraph(c *gin.Context) {
	if h.Store == nil {
		h.fail(c, apperr.E(apperr.KindUnavailable, "graph store not configured", nil))
		return
	}
	g, err := h.Store.BookGraph(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	h.Log.Error("graph request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	c.JSON(apperr.HTTPStatus(kind), gin.H{
		"message": "获取知识图谱失败",
		"error":   err.Error(),
		"code":    string(kind),
	})
}
