package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KavishaShah6/portfolio/internal/config"
)

const (
	adminCookie     = "admin_token"
	cleanupInterval = 24 * time.Hour
)

// admin holds the per-process admin token and the salt used to hash IPs.
type admin struct {
	token    string
	salt     string
	username string
	password string
}

func newAdmin(cfg config.Config, logger *zap.Logger) (*admin, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	salt, err := randomToken()
	if err != nil {
		return nil, err
	}

	a := &admin{token: token, salt: salt, username: cfg.AdminUsername, password: cfg.AdminPassword}

	// Default credentials for development
	if a.username == "" {
		a.username = "admin"
		if cfg.Debug() {
			logger.Warn("using default admin username, set ADMIN_USERNAME")
		}
	}
	if a.password == "" {
		a.password = "admin123"
		if cfg.Debug() {
			logger.Warn("using default admin password, set ADMIN_PASSWORD")
		}
	}
	if cfg.Debug() {
		logger.Debug("admin token (dev only)", zap.String("token", token))
	}
	return a, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashIP is consistent per IP for the life of the process.
func (a *admin) hashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + a.salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (a *admin) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a *admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// visitorTracking records page views with hashed IPs in the background.
// Do Not Track requests are skipped.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("DNT") == "1" || strings.HasPrefix(c.Request.URL.Path, "/favicon") {
			c.Next()
			return
		}

		hashed := s.admin.hashIP(c.ClientIP())
		ua, path := c.GetHeader("User-Agent"), c.Request.URL.Path

		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.store.RecordVisit(ctx, hashed, ua, path); err != nil {
				s.logger.Warn("record visit", zap.Error(err))
			}
		}()
		c.Next()
	}
}

// cleanupLoop drops visits older than the retention window once a day.
func (s *Server) cleanupLoop(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.cleanupVisitors(ctx)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupVisitors(ctx)
		}
	}
}

func (s *Server) cleanupVisitors(ctx context.Context) {
	n, err := s.store.CleanupVisitors(ctx, s.cfg.VisitorRetention)
	if err != nil {
		s.logger.Warn("privacy cleanup", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("privacy cleanup", zap.Int64("removed", n))
	}
}

func (s *Server) adminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if !s.admin.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			s.logger.Warn("failed admin login", zap.String("from", s.admin.hashIP(c.ClientIP())))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", !s.cfg.Debug(), true)
		s.logger.Info("admin login", zap.String("from", s.admin.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", !s.cfg.Debug(), true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	group := r.Group("/admin")
	group.Use(s.admin.authMiddleware())

	group.GET("/dashboard", func(c *gin.Context) {
		if s.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{"error": "Statistics are disabled"})
			return
		}
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("load admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
	})

	group.GET("/visitors", func(c *gin.Context) {
		if s.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{"error": "Statistics are disabled"})
			return
		}
		visitors, err := s.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			s.logger.Error("load visitors", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load visitors"})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visitors})
	})

	group.GET("/api/stats", func(c *gin.Context) {
		s.statsJSON(c, false)
	})

	group.GET("/export/stats", func(c *gin.Context) {
		s.statsJSON(c, true)
	})

	group.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics are disabled"})
			return
		}
		n, err := s.store.CleanupVisitors(c.Request.Context(), s.cfg.VisitorRetention)
		if err != nil {
			s.logger.Error("privacy cleanup", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})
}

func (s *Server) statsJSON(c *gin.Context, download bool) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics are disabled"})
		return
	}
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("load admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	if download {
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin stats exported", zap.String("by", s.admin.hashIP(c.ClientIP())))
	}
	c.JSON(http.StatusOK, stats)
}
