package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/profile"
)

func (h *Handler) ProfileMe(c *gin.Context) {
	claims := auth.FromContext(c)
	p, err := h.profiles.Me(c.Request.Context(), claims.Subject)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type profileRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Program    string `json:"program"`
	Branch     string `json:"branch"`
	Year       string `json:"year"`
	Semester   string `json:"semester"`
	RegNo      string `json:"reg_no"`
}

func (h *Handler) ProfileUpsert(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	p, err := h.profiles.Upsert(c.Request.Context(), claims.Subject, claims.Role, profile.Profile{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Program:    req.Program,
		Branch:     req.Branch,
		Year:       req.Year,
		Semester:   req.Semester,
		RegNo:      req.RegNo,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ProfileUploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}
	claims := auth.FromContext(c)
	url, err := h.profiles.UploadPhoto(c.Request.Context(), claims.Subject, claims.Role, header.Filename, data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

type verifyRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) ProfileVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims := auth.FromContext(c)
	if err := h.profiles.Verify(c.Request.Context(), claims.Subject, claims.Role, req.Code); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}
