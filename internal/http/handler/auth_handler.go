package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	"github.com/Gagan3036/compliance-platform-api/internal/http/middleware"
	"github.com/Gagan3036/compliance-platform-api/internal/service"
)

// AuthHandler exposes registration, login, token, and profile endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

// NewAuthHandler wires dependencies.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		UserType    string `json:"userType"`
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		CompanyName string `json:"companyName"`
		Department  string `json:"department"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ValidationError("Invalid payload"))
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(c, domain.ValidationError("Email and password are required"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(c, domain.ValidationError("Name is required"))
		return
	}

	result, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		UserType:    req.UserType,
		Name:        req.Name,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Department:  req.Department,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "User registered successfully",
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ValidationError("Invalid payload"))
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(c, domain.ValidationError("Email and password are required"))
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrRefreshTokenMissing)
		return
	}

	result, err := h.Auth.Refresh(c.Request.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout is idempotent: an unknown or absent refresh token still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.Auth.Logout(c.Request.Context(), strings.TrimSpace(req.RefreshToken)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		respondError(c, domain.ErrAccessTokenMissing)
		return
	}

	user, err := h.Auth.GetProfile(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		respondError(c, domain.ErrAccessTokenMissing)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		CompanyName string `json:"companyName"`
		Department  string `json:"department"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ValidationError("Invalid payload"))
		return
	}

	user, err := h.Auth.UpdateProfile(c.Request.Context(), callerID, service.ProfileUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Department:  req.Department,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		respondError(c, domain.ErrAccessTokenMissing)
		return
	}

	users, err := h.Auth.ListUsers(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
