package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"github.com/udfnd/credittalk-admin-sub000/internal/service"
	"gorm.io/gorm"
)

// PushHandler exposes the dispatch engine to the admin dashboard
type PushHandler struct {
	pushService *service.PushService
}

func NewPushHandler(pushService *service.PushService) *PushHandler {
	return &PushHandler{pushService: pushService}
}

// Send godoc
// @Summary Create a push job (immediate or scheduled)
// @Description Runs the dispatch pipeline synchronously unless scheduled_at is in the future. The response carries the final ledger row; a job with sent=0 is still a successful request.
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.SendNotificationRequest true "Notification"
// @Success 200 {object} model.PushJob
// @Failure 400 {object} map[string]string
// @Router /admin/notifications [post]
func (h *PushHandler) Send(c *gin.Context) {
	var req model.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.pushService.Enqueue(c.Request.Context(), adminID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// NotifyTarget godoc
// @Summary Notify the user behind an entity or id
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.NotifyTargetRequest true "Target notification"
// @Success 200 {object} model.PushJob
// @Router /admin/notifications/target [post]
func (h *PushHandler) NotifyTarget(c *gin.Context) {
	var req model.NotifyTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Target.AuthUserID == nil && req.Target.AppUserID == nil && req.Target.Reference == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target requires auth_user_id, app_user_id or reference"})
		return
	}

	job, err := h.pushService.NotifyTarget(c.Request.Context(), adminID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs godoc
// @Summary List recent push jobs
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 20)"
// @Success 200 {array} model.PushJob
// @Router /admin/notifications/jobs [get]
func (h *PushHandler) ListJobs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	jobs, err := h.pushService.ListRecentJobs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJob godoc
// @Summary Fetch one push job
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Success 200 {object} model.PushJob
// @Failure 404 {object} map[string]string
// @Router /admin/notifications/jobs/{id} [get]
func (h *PushHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.pushService.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// adminID extracts the authenticated admin's auth identity from the
// context set by the auth middleware. Nil when the admin account has no
// linked auth user; scheduler-created jobs also carry nil.
func adminID(c *gin.Context) *uuid.UUID {
	if v, ok := c.Get("auth_user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return &id
		}
	}
	return nil
}
