package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/data/repository"
	"github.com/ncobase/unicourse/net/resp"
	"github.com/ncobase/unicourse/search"
)

// HandleSearchCourses serves the search endpoint itself.
func (h *Handler) HandleSearchCourses(c *gin.Context) {
	if h.d.Search == nil {
		resp.ServiceUnavailable(c.Writer, "search unavailable")
		return
	}
	items, err := h.d.Search.SearchCourses(c.Request.Context(), c.Query("term"))
	if err != nil {
		resp.ServiceUnavailable(c.Writer, "search failed")
		return
	}
	resp.Success(c.Writer, items)
}

// HandleSearchProxy forwards to the search endpoint. It always answers 200
// with a JSON array, empty on a blank term or any failure.
func (h *Handler) HandleSearchProxy(c *gin.Context) {
	empty := []course.Course{}
	term := strings.TrimSpace(c.Query("term"))
	if term == "" || h.d.Proxy == nil {
		resp.Success(c.Writer, empty)
		return
	}

	ctx := c.Request.Context()
	if !h.limiter.TryAcquire() {
		h.log.Warnf(ctx, "search proxy saturated, dropping %q", term)
		resp.Success(c.Writer, empty)
		return
	}
	defer h.limiter.Release()

	items, err := h.d.Proxy.Search(ctx, term)
	if err != nil {
		h.log.Warnf(ctx, "search proxy %q: %v", term, err)
		resp.Success(c.Writer, empty)
		return
	}
	resp.Success(c.Writer, items)
}

// HandleSuggest returns merged suggestions for the typed term.
func (h *Handler) HandleSuggest(c *gin.Context) {
	if h.d.Suggester == nil {
		resp.Success(c.Writer, []search.Suggestion{})
		return
	}
	resp.Success(c.Writer, h.d.Suggester.Suggest(c.Request.Context(), c.Query("term")))
}

// HandleFacets lists the top entries of a taxonomy, or those matching
// prefix.
func (h *Handler) HandleFacets(c *gin.Context) {
	if h.d.Taxonomy == nil {
		resp.ServiceUnavailable(c.Writer, "facets unavailable")
		return
	}
	kind, err := repository.ParseKind(c.Param("kind"))
	if err != nil {
		resp.NotFound(c.Writer, err.Error())
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		resp.BadRequest(c.Writer, "limit must be a number")
		return
	}

	ctx := c.Request.Context()
	var items []repository.Taxon
	if prefix := strings.TrimSpace(c.Query("prefix")); prefix != "" {
		items, err = h.d.Taxonomy.PrefixSearch(ctx, kind, prefix, limit)
	} else {
		items, err = h.d.Taxonomy.TopTaxonomy(ctx, kind, limit)
	}
	if err != nil {
		h.log.Errorf(ctx, "facets %s: %v", kind, err)
		resp.InternalServer(c.Writer, "failed to load facets")
		return
	}
	resp.Success(c.Writer, items)
}

// HandleLogo resolves the logo of a university.
func (h *Handler) HandleLogo(c *gin.Context) {
	if h.d.Logos == nil {
		resp.ServiceUnavailable(c.Writer, "logos unavailable")
		return
	}
	src := h.d.Logos.Resolve(c.Request.Context(), c.Query("id"), c.Query("name"))
	resp.Success(c.Writer, map[string]string{"src": src})
}
