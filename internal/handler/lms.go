package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/timetable"
)

func (h *Handler) LmsContexts(c *gin.Context) {
	contexts, err := h.lms.Contexts(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if contexts == nil {
		contexts = []timetable.Context{}
	}
	c.JSON(http.StatusOK, gin.H{"contexts": contexts})
}

func (h *Handler) LmsSubjects(c *gin.Context) {
	subjects, err := h.lms.Subjects(c.Request.Context(),
		c.Query("program"), c.Query("branch"), c.Query("year"), c.Query("sem_roman"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) LmsDriveFolder(c *gin.Context) {
	url, err := h.lms.DriveFolder(c.Request.Context(),
		c.Query("program"), c.Query("branch"), c.Query("year"), c.Query("sem_roman"), c.Query("subject"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder_url": url})
}
