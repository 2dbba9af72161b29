package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateFormat = "2006-01-02"

type api struct {
	auth  *Auth
	store Store
	codec *TokenCodec
	log   *zap.Logger
}

func newRouter(a *api) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(a.log))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running!")
	})

	auth := r.Group("/api/auth")
	auth.POST("/register", a.registerHandler)
	auth.POST("/login", a.loginHandler)
	auth.POST("/refresh-token", a.refreshTokenHandler)
	auth.POST("/logout", a.logoutHandler)
	auth.GET("/profile", requireAccessToken(a.codec), a.profileHandler)

	users := r.Group("/api/users", requireAccessToken(a.codec), requireSelf())
	users.GET("/:id/start-day", a.getStartDayHandler)
	users.POST("/:id/start-day", a.setStartDayHandler)
	users.PUT("/:id/start-day", a.updateStartDayHandler)

	return r
}

func (a *api) registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and email are required"})
		return
	}
	res, err := a.auth.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error during registration"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"userId":       res.UserID,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (a *api) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	res, err := a.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error during login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"userId":       res.UserID,
		"startDay":     formatStartDay(res.StartDay),
	})
}

// refreshTokenHandler expects the refresh token, not the access token, as
// the bearer credential. Every rejection reason past "missing" collapses to
// 403 so the response cannot distinguish expired from revoked.
func (a *api) refreshTokenHandler(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no refresh token provided"})
		return
	}
	pair, err := a.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, ErrRefreshRejected) {
			c.JSON(http.StatusForbidden, gin.H{"error": "refresh token revoked or invalid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error during token refresh"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (a *api) logoutHandler(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token not provided"})
		return
	}
	a.auth.Logout(c.Request.Context(), raw)
	c.JSON(http.StatusOK, gin.H{"message": "session closed"})
}

func (a *api) profileHandler(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing claims"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "authenticated user profile",
		"user":    gin.H{"id": claims.UserID, "username": claims.Username},
	})
}

func (a *api) getStartDayHandler(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	day, err := a.store.StartDay(c.Request.Context(), uint(userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		a.log.Error("get startDay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get startDay"})
		return
	}
	if day == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "startDay not set yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"startDay": day.Format(dateFormat)})
}

func (a *api) setStartDayHandler(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	day, ok := bindStartDay(c)
	if !ok {
		return
	}
	existing, err := a.store.StartDay(c.Request.Context(), uint(userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		a.log.Error("set startDay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set startDay"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDay already exists, use PUT"})
		return
	}
	if err := a.store.SetStartDay(c.Request.Context(), uint(userID), day); err != nil {
		a.log.Error("set startDay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set startDay"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "startDay created", "startDay": day.Format(dateFormat)})
}

func (a *api) updateStartDayHandler(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	day, ok := bindStartDay(c)
	if !ok {
		return
	}
	if err := a.store.SetStartDay(c.Request.Context(), uint(userID), day); err != nil {
		a.log.Error("update startDay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update startDay"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "startDay updated", "startDay": day.Format(dateFormat)})
}

// bindStartDay parses the {"startDay": "YYYY-MM-DD"} body, answering 400
// itself when the field is missing or not a date.
func bindStartDay(c *gin.Context) (time.Time, bool) {
	var req struct {
		StartDay string `json:"startDay" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a date is required"})
		return time.Time{}, false
	}
	day, err := time.Parse(dateFormat, req.StartDay)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return time.Time{}, false
	}
	return day, true
}

func formatStartDay(day *time.Time) any {
	if day == nil {
		return nil
	}
	return day.Format(dateFormat)
}
