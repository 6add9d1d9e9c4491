package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/unicourse/ecode"
	"github.com/ncobase/unicourse/lead"
	"github.com/ncobase/unicourse/net/resp"
)

// HandleCreateLead stores an information request.
func (h *Handler) HandleCreateLead(c *gin.Context) {
	if h.d.Leads == nil {
		resp.ServiceUnavailable(c.Writer, "leads unavailable")
		return
	}

	var p lead.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		resp.BadRequest(c.Writer, ecode.FieldIsInvalid("body"))
		return
	}

	l, err := h.d.Leads.Submit(c.Request.Context(), p)
	if err != nil {
		var ve *lead.ValidationError
		if errors.As(err, &ve) {
			resp.Fail(c.Writer, &resp.Exception{
				Status:  http.StatusBadRequest,
				Code:    ecode.ParamErr,
				Message: ecode.Text(ecode.ParamErr),
				Errors:  ve.Fields,
			})
			return
		}
		resp.InternalServer(c.Writer, "failed to store lead")
		return
	}

	resp.WithStatusCode(c.Writer, http.StatusCreated, map[string]string{
		"ref":    l.Ref,
		"status": l.Status,
	})
}
