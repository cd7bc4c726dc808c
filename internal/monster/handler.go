package monster

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yaopedia/pkg/apperr"
	"yaopedia/pkg/models"
)

type Handler struct {
	Repo *Repo
	Log  *zap.Logger
}

func NewHandler(repo *Repo, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)          // GET /api/monsters
	rg.GET("/:id", h.getByID)   // GET /api/monsters/:id
	rg.POST("", h.create)       // POST /api/monsters
	rg.PUT("/:id", h.update)    // PUT /api/monsters/:id
	rg.DELETE("/:id", h.remove) // DELETE /api/monsters/:id
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Category: c.Query("type"),
		Search:   c.Query("search"),
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), defaultLimit),
	}

	res, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "获取数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"monsters":    res.Items,
		"total":       res.Total,
		"currentPage": res.Page,
		"totalPages":  res.TotalPages,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	m, err := h.Repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "获取数据失败")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) create(c *gin.Context) {
	var payload models.Monster
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "创建失败",
			"error":   err.Error(),
			"code":    string(apperr.KindValidation),
		})
		return
	}

	created, err := h.Repo.Create(c.Request.Context(), &payload)
	if err != nil {
		h.fail(c, err, "创建失败")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) update(c *gin.Context) {
	var patch models.MonsterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "更新失败",
			"error":   err.Error(),
			"code":    string(apperr.KindValidation),
		})
		return
	}

	updated, err := h.Repo.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		h.fail(c, err, "更新失败")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "删除失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// fail logs the full error server-side and writes the status and body the
// error kind dictates. Not-found keeps the bare {message} shape of the
// original contract; other failures carry message, error and code.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	kind := apperr.KindOf(err)
	h.Log.Error(msg,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)

	if kind == apperr.KindNotFound {
		c.JSON(http.StatusNotFound, gin.H{"message": "妖怪不存在", "code": string(kind)})
		return
	}
	c.JSON(apperr.HTTPStatus(kind), gin.H{
		"message": msg,
		"error":   err.Error(),
		"code":    string(kind),
	})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
