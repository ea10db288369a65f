package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greendrake/commentguard/internal/policy"
	"greendrake/commentguard/internal/services"
)

// OptionsHandler serves the administrator view of the reCAPTCHA policy.
type OptionsHandler struct {
	policyService services.IPolicyService
}

// NewOptionsHandler creates a new OptionsHandler.
func NewOptionsHandler(policyService services.IPolicyService) *OptionsHandler {
	return &OptionsHandler{policyService: policyService}
}

// GetOptions handles GET /v1/admin/recaptcha-options
func (h *OptionsHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.policyService.Current())
}

// UpdateOptions handles PUT /v1/admin/recaptcha-options. Invalid or missing values
// keep their previous setting; unchecked flags are cleared.
func (h *OptionsHandler) UpdateOptions(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
		return
	}

	raw := make(policy.RawOptions, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	updated, err := h.policyService.Update(c.Request.Context(), raw)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store options"})
		return
	}
	c.JSON(http.StatusOK, updated)
}
