package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/data/repository"
	"github.com/ncobase/unicourse/net/resp"
	"github.com/ncobase/unicourse/paging"
)

const maxPageSize = 100

// CoursePage is the response of /api/courses.
type CoursePage struct {
	Items       []course.Course  `json:"items"`
	Total       *int64           `json:"total,omitempty"`
	NextCursor  string           `json:"next,omitempty"`
	HasNextPage bool             `json:"has_next"`
	Page        int              `json:"page"`
	Filters     course.FilterSet `json:"filters"`
}

// HandleCourses serves one page of the filtered listing. The first page
// (no cursor) also carries a best-effort total, and falls back to the
// identifier order when the requested order cannot be served.
func (h *Handler) HandleCourses(c *gin.Context) {
	if h.d.Store == nil {
		resp.ServiceUnavailable(c.Writer, "course store unavailable")
		return
	}
	ctx := c.Request.Context()
	f := course.DecodeFilters(c.Request.URL.Query())

	limit := h.d.PageSize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxPageSize {
			resp.BadRequest(c.Writer, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	page := 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	cursor := c.Query("cursor")
	if _, err := paging.DecodeCursor(cursor); err != nil {
		resp.BadRequest(c.Writer, "invalid cursor")
		return
	}

	q := course.NewQuery(f, limit)
	q.After = cursor
	if s := c.Query("order"); s == "id" {
		q.Sort = course.Sort{}
	}

	res, err := h.d.Store.FindPage(ctx, q)
	if err != nil && cursor == "" && !q.Sort.IsDefault() && ctx.Err() == nil {
		h.log.Warnf(ctx, "courses page with %s failed, retrying by id: %v", f.SortKey(), err)
		q.Sort = course.Sort{}
		res, err = h.d.Store.FindPage(ctx, q)
	}
	if err != nil {
		h.log.Errorf(ctx, "courses page: %v", err)
		resp.InternalServer(c.Writer, "failed to load courses")
		return
	}

	out := CoursePage{
		Items:       res.Items,
		NextCursor:  res.NextCursor,
		HasNextPage: res.HasNextPage,
		Page:        page,
		Filters:     f,
	}
	if cursor == "" {
		if n, err := h.d.Store.EstimateCount(ctx, f); err == nil {
			out.Total = &n
		}
	}
	if len(res.Items) > 0 {
		h.notify(ctx, analytics.NewPageView("courses", f, page, (page-1)*limit, res.Items))
	}
	if q.Sort.IsDefault() {
		// continuation cursors are only valid with order=id
		c.Header("X-Order", "id")
	}
	resp.Success(c.Writer, out)
}

// CourseDetail is the response of /api/courses/:id.
type CourseDetail struct {
	Course course.Course   `json:"course"`
	Facts  course.KeyFacts `json:"facts"`
}

// HandleCourse serves a single course with its formatted key facts.
func (h *Handler) HandleCourse(c *gin.Context) {
	if h.d.Details == nil {
		resp.ServiceUnavailable(c.Writer, "course store unavailable")
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	found, err := h.d.Details.FindByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		resp.NotFound(c.Writer, "course not found")
		return
	case err != nil:
		h.log.Errorf(ctx, "course %s: %v", id, err)
		resp.InternalServer(c.Writer, "failed to load course")
		return
	}
	resp.Success(c.Writer, CourseDetail{Course: *found, Facts: found.KeyFacts()})
}

func (h *Handler) notify(ctx context.Context, pv analytics.PageView) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Debugf(ctx, "analytics notifier panicked: %v", r)
		}
	}()
	if err := h.d.Notifier.Notify(ctx, pv); err != nil {
		h.log.Debugf(ctx, "analytics notify: %v", err)
	}
}
