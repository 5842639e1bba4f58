package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	RegNo    string `json:"reg_no"`
	Name     string `json:"name"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, pair, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password, req.Role, req.RegNo, req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokenResponse(user.ID, user.Role, pair))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, pair, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(user.ID, user.Role, pair))
}

func tokenResponse(userID, role string, pair auth.TokenPair) gin.H {
	return gin.H{
		"user_id":       userID,
		"role":          role,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.AccessExp.Unix(),
	}
}
