package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"greendrake/commentguard/internal/services"
	"greendrake/commentguard/internal/submission"
)

// RegistrationHandler checks the challenge on the registration form.
type RegistrationHandler struct {
	policyService services.IPolicyService
	controller    *submission.Controller
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(policyService services.IPolicyService, controller *submission.Controller) *RegistrationHandler {
	return &RegistrationHandler{policyService: policyService, controller: controller}
}

// GetRegistrationForm handles GET /v1/register/captcha
func (h *RegistrationHandler) GetRegistrationForm(c *gin.Context) {
	cfg := h.policyService.Current()
	if !cfg.ShowInRegistration {
		c.JSON(http.StatusOK, gin.H{"show_widget": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"show_widget":      true,
		"public_key":       cfg.PublicKey,
		"theme":            cfg.RegistrationTheme,
		"language":         cfg.RecaptchaLanguage,
		"tab_index":        cfg.RegistrationTabIndex,
		"xhtml_compliance": cfg.XHTMLCompliance,
	})
}

// CheckRegistration handles POST /v1/register/captcha
func (h *RegistrationHandler) CheckRegistration(c *gin.Context) {
	err := h.controller.CheckRegistration(c.Request.Context(), submission.Request{
		ChallengeToken: c.PostForm("recaptcha_challenge_field"),
		ResponseToken:  c.PostForm("recaptcha_response_field"),
		OriginAddress:  c.ClientIP(),
	}, h.policyService.Current())

	var verr *submission.VerificationError
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "code": verr.Code})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
	}
}
