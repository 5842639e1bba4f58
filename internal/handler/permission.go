package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/permission"
)

type permissionRequest struct {
	Subject          string   `json:"subject" binding:"required"`
	Date             string   `json:"date" binding:"required"`
	StartTime        string   `json:"start_time" binding:"required"`
	EndTime          string   `json:"end_time" binding:"required"`
	Status           string   `json:"status"`
	LocationRequired bool     `json:"location_required"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	RadiusMeters     float64  `json:"radius_meters"`
	SessionHours     float64  `json:"session_hours"`
}

func (r permissionRequest) toModel(id, professorID string) permission.Permission {
	return permission.Permission{
		ID:               id,
		ProfessorID:      professorID,
		Subject:          r.Subject,
		Date:             r.Date,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Status:           r.Status,
		LocationRequired: r.LocationRequired,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		RadiusMeters:     r.RadiusMeters,
		SessionHours:     r.SessionHours,
	}
}

func (h *Handler) ListPermissions(c *gin.Context) {
	claims := auth.FromContext(c)
	perms, err := h.permissions.ListForProfessor(c.Request.Context(), claims.Subject)
	if err != nil {
		respondErr(c, err)
		return
	}
	if perms == nil {
		perms = []permission.Permission{}
	}
	c.JSON(http.StatusOK, gin.H{"permissions": perms})
}

func (h *Handler) CreatePermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	created, err := h.permissions.Create(c.Request.Context(), req.toModel("", claims.Subject))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdatePermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	updated, err := h.permissions.Update(c.Request.Context(), req.toModel(c.Param("id"), claims.Subject))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePermission(c *gin.Context) {
	claims := auth.FromContext(c)
	if err := h.permissions.Delete(c.Request.Context(), c.Param("id"), claims.Subject); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ValidatePermission answers whether the caller may submit attendance now.
// Rule misses come back 200 with allowed:false, never an error status.
func (h *Handler) ValidatePermission(c *gin.Context) {
	q := permission.ValidateQuery{
		Subject:     c.Query("subject"),
		Date:        c.Query("date"),
		Time:        c.Query("time"),
		ProfessorID: c.Query("professor_id"),
		Program:     c.Query("program"),
		Branch:      c.Query("branch"),
		Year:        c.Query("year"),
		Semester:    c.Query("sem_roman"),
	}
	res, err := h.permissions.Validate(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
