package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/submission"
)

// SubmitAttendance handles the multipart submission form: a photo plus the
// subject/date/time and class-context fields.
func (h *Handler) SubmitAttendance(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()
	photo, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}

	claims := auth.FromContext(c)
	in := submission.SubmitInput{
		StudentID:    claims.Subject,
		StudentRegNo: c.PostForm("student_reg_no"),
		ProfessorID:  c.PostForm("professor_id"),
		Subject:      c.PostForm("subject"),
		Date:         c.PostForm("date"),
		Time:         c.PostForm("time"),
		Program:      c.PostForm("program"),
		Branch:       c.PostForm("branch"),
		Year:         c.PostForm("year"),
		SemRoman:     c.PostForm("sem_roman"),
		Photo:        photo,
		Filename:     header.Filename,
	}
	in.Latitude = parseCoord(c.PostForm("latitude"))
	in.Longitude = parseCoord(c.PostForm("longitude"))

	sub, err := h.submissions.Submit(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	claims := auth.FromContext(c)
	subs, err := h.submissions.ListForProfessor(c.Request.Context(), claims.Subject, listFilter(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

func (h *Handler) MySubmissions(c *gin.Context) {
	claims := auth.FromContext(c)
	subs, err := h.submissions.ListForStudent(c.Request.Context(), claims.Subject, listFilter(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) SetSubmissionStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	sub, err := h.submissions.SetStatus(c.Request.Context(), c.Param("id"), claims.Subject, req.Status)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func listFilter(c *gin.Context) submission.ListFilter {
	f := submission.ListFilter{
		Date:    c.Query("date"),
		Subject: c.Query("subject"),
		Status:  c.Query("status"),
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			f.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			f.Offset = parsed
		}
	}
	return f
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
