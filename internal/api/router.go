package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/api/handlers"
	"greendrake/commentguard/internal/api/middleware"
	"greendrake/commentguard/internal/captcha"
	"greendrake/commentguard/internal/config"
	"greendrake/commentguard/internal/integrity"
	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/services"
	"greendrake/commentguard/internal/submission"
	"greendrake/commentguard/internal/tasks"
	"greendrake/commentguard/internal/vault"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, policyService services.IPolicyService, commentService services.ICommentService, verifier captcha.IRecaptchaVerifier) (*gin.Engine, error) {
	codec, err := integrity.NewCodec(cfg.RecoveryHashSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create recovery codec: %w", err)
	}
	controller := submission.NewController(verifier)
	commentVault := vault.New(codec, commentService)

	r := gin.New()
	r.Use(gin.Recovery())

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// order matters: the request id must be set before anything logs
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware())

	commentHandler := handlers.NewCommentHandler(policyService, commentService, controller, commentVault, codec)
	registrationHandler := handlers.NewRegistrationHandler(policyService, controller)
	optionsHandler := handlers.NewOptionsHandler(policyService)

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(cfg.JwtSecret))
		{
			public.GET("/posts/:post_id/comment-form", commentHandler.GetCommentForm)
			public.POST("/posts/:post_id/comments", rateLimiter.Limit(), commentHandler.SubmitComment)
			public.GET("/register/captcha", registrationHandler.GetRegistrationForm)
			public.POST("/register/captcha", rateLimiter.Limit(), registrationHandler.CheckRegistration)
		}

		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.RequireCapability(models.CapAdministerSite))
		{
			adminRequired.GET("/recaptcha-options", optionsHandler.GetOptions)
			adminRequired.PUT("/recaptcha-options", optionsHandler.UpdateOptions)
		}
	}

	return r, nil
}

// ServiceRequest is a call on the internal service API.
type ServiceRequest struct {
	Method string `json:"method" binding:"required"`
}

// SetupServiceRouter configures and returns the service Gin engine. taskClient may
// be nil when no task queue is available.
func SetupServiceRouter(policyService services.IPolicyService, taskClient tasks.Enqueuer, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req ServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Info().Msg("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				log.Warn().Msg("Shutdown channel already signaled or blocked.")
			}
		case "reloadPolicy":
			if err := policyService.Load(c.Request.Context()); err != nil {
				log.Error().Err(err).Msg("Service API: policy reload failed")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Policy reload failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "result": policyService.Current()})
		case "purgeStash":
			if taskClient == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Task queue not configured"})
				return
			}
			info, err := tasks.EnqueueStashPurge(taskClient)
			if errors.Is(err, asynq.ErrDuplicateTask) {
				c.JSON(http.StatusOK, gin.H{"success": true, "result": "Stash purge already queued"})
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("Service API: failed to enqueue stash purge")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to enqueue stash purge"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "result": info.ID})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
