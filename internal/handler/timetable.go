package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/timetable"
)

// TimetableDay returns entries for one weekday. The day comes from ?date
// (YYYY-MM-DD) or defaults to today.
func (h *Handler) TimetableDay(c *gin.Context) {
	day := time.Now().Weekday()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed.Weekday()
	}
	entries, err := h.timetable.Day(c.Request.Context(),
		c.Query("program"), c.Query("branch"), c.Query("year"), c.Query("sem_roman"), day)
	if err != nil {
		respondErr(c, err)
		return
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"day": day.String(), "entries": entries})
}

func (h *Handler) TimetableWeek(c *gin.Context) {
	entries, err := h.timetable.Week(c.Request.Context(),
		c.Query("program"), c.Query("branch"), c.Query("year"), c.Query("sem_roman"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
