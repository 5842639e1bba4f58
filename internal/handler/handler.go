// Package handler wires the HTTP surface onto the domain services.
package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/account"
	"campusattend/internal/apierr"
	"campusattend/internal/auth"
	"campusattend/internal/lms"
	"campusattend/internal/permission"
	"campusattend/internal/profile"
	"campusattend/internal/submission"
	"campusattend/internal/timetable"
)

type Handler struct {
	accounts    *account.Service
	permissions *permission.Service
	submissions *submission.Service
	profiles    *profile.Service
	timetable   *timetable.Service
	lms         *lms.Service

	signingKey string
	issuer     string
}

func New(accounts *account.Service, permissions *permission.Service, submissions *submission.Service,
	profiles *profile.Service, tt *timetable.Service, lmsSvc *lms.Service, signingKey, issuer string) *Handler {
	return &Handler{
		accounts:    accounts,
		permissions: permissions,
		submissions: submissions,
		profiles:    profiles,
		timetable:   tt,
		lms:         lmsSvc,
		signingKey:  signingKey,
		issuer:      issuer,
	}
}

// Register mounts every route on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/api/auth/register", h.RegisterUser)
	r.POST("/api/auth/login", h.Login)

	authed := r.Group("/api", auth.Bearer(h.signingKey, h.issuer))

	perms := authed.Group("/attendance-permissions")
	perms.GET("/validate", h.ValidatePermission)
	profOnly := perms.Group("", auth.RequireRole(auth.RoleProfessor))
	profOnly.GET("", h.ListPermissions)
	profOnly.POST("", h.CreatePermission)
	profOnly.PATCH("/:id", h.UpdatePermission)
	profOnly.DELETE("/:id", h.DeletePermission)

	subs := authed.Group("/attendance-submissions")
	subs.POST("", auth.RequireRole(auth.RoleStudent), h.SubmitAttendance)
	subs.GET("/my-submissions", auth.RequireRole(auth.RoleStudent), h.MySubmissions)
	subs.GET("", auth.RequireRole(auth.RoleProfessor), h.ListSubmissions)
	subs.PATCH("/:id/status", auth.RequireRole(auth.RoleProfessor), h.SetSubmissionStatus)

	h.registerProfileRoutes(authed.Group("/professor-profile", auth.RequireRole(auth.RoleProfessor)))
	h.registerProfileRoutes(authed.Group("/student-profile", auth.RequireRole(auth.RoleStudent)))

	authed.GET("/timetable", h.TimetableDay)
	authed.GET("/timetable/week", h.TimetableWeek)

	authed.GET("/lms/contexts", h.LmsContexts)
	authed.GET("/lms/subjects", h.LmsSubjects)
	authed.GET("/lms/drive-folder", h.LmsDriveFolder)
}

func (h *Handler) registerProfileRoutes(g *gin.RouterGroup) {
	g.GET("/me", h.ProfileMe)
	g.POST("/upsert", h.ProfileUpsert)
	g.POST("/upload-photo", h.ProfileUploadPhoto)
	g.POST("/verify", h.ProfileVerify)
}

// respondErr maps service errors onto the HTTP taxonomy. Internal detail is
// logged, never sent to the client.
func respondErr(c *gin.Context, err error) {
	status := apierr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": apierr.Message(err)})
}
