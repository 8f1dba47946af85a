package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/common"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
)

const maxResolveBatch = 1000

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func (h *Handler) Schema(c *gin.Context) {
	ready, err := idmap.EnsureSchema(c.Request.Context(), h.DB)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("schema check failed")
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"ready": ready})
}

// schemaReady runs the schema guard and writes the failure response itself.
func (h *Handler) schemaReady(c *gin.Context) bool {
	ready, err := idmap.EnsureSchema(c.Request.Context(), h.DB)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("schema check failed")
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return false
	}
	if !ready {
		common.Fail(c, http.StatusPreconditionFailed, 41201, idmap.ErrSchemaPrecondition.Error())
		return false
	}
	return true
}

func (h *Handler) Status(c *gin.Context) {
	if !h.schemaReady(c) {
		return
	}
	st, err := idmap.Status(c.Request.Context(), h.DB)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("status failed")
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, st)
}

func (h *Handler) GetMapping(c *gin.Context) {
	sid, err := strconv.ParseInt(c.Param("session_id"), 10, 64)
	if err != nil || sid <= 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid session id")
		return
	}
	if !h.schemaReady(c) {
		return
	}

	m, err := idmap.NewRepo(h.DB).Get(c.Request.Context(), sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "mapping not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"session_id": m.SessionID,
		"uninfo_id":  m.UninfoID,
	})
}

type resolveReq struct {
	SessionIDs []int64 `json:"session_ids" binding:"required"`
}

type mappingItem struct {
	SessionID int64 `json:"session_id"`
	UninfoID  int64 `json:"uninfo_id"`
}

func (h *Handler) Resolve(c *gin.Context) {
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if len(req.SessionIDs) == 0 || len(req.SessionIDs) > maxResolveBatch {
		common.Fail(c, http.StatusBadRequest, 10002, "session_ids must hold 1 to 1000 ids")
		return
	}

	if !h.schemaReady(c) {
		return
	}

	ctx := c.Request.Context()
	m, err := h.Resolver.ResolveBatch(ctx, h.DB, req.SessionIDs)
	if err != nil {
		var nf *idmap.NotFoundError
		if errors.As(err, &nf) {
			common.Fail(c, http.StatusNotFound, 40402, nf.Error())
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("resolve failed")
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to resolve sessions")
		return
	}

	items := make([]mappingItem, 0, len(m))
	for sid, uid := range m {
		items = append(items, mappingItem{SessionID: sid, UninfoID: uid})
	}
	slices.SortFunc(items, func(a, b mappingItem) int {
		switch {
		case a.SessionID < b.SessionID:
			return -1
		case a.SessionID > b.SessionID:
			return 1
		}
		return 0
	})

	common.OK(c, gin.H{"mappings": items})
}
