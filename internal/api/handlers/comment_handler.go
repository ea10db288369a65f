package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/api/middleware"
	"greendrake/commentguard/internal/integrity"
	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/policy"
	"greendrake/commentguard/internal/redirect"
	"greendrake/commentguard/internal/services"
	"greendrake/commentguard/internal/submission"
	"greendrake/commentguard/internal/vault"
)

// CommentHandler serves the comment form state and accepts comment submissions.
type CommentHandler struct {
	policyService  services.IPolicyService
	commentService services.ICommentService
	controller     *submission.Controller
	vault          *vault.Vault
	codec          *integrity.Codec
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(policyService services.IPolicyService, commentService services.ICommentService, controller *submission.Controller, v *vault.Vault, codec *integrity.Codec) *CommentHandler {
	return &CommentHandler{
		policyService:  policyService,
		commentService: commentService,
		controller:     controller,
		vault:          v,
		codec:          codec,
	}
}

// RestoredComment is a previously rejected comment returned for the form to refill.
type RestoredComment struct {
	SubmissionID string `json:"submission_id"`
	Content      string `json:"content"`
	// ScriptLiteral is Content encoded as a string literal for inline scripts.
	ScriptLiteral string `json:"script_literal"`
}

// CommentFormState tells the client how to render the comment form.
type CommentFormState struct {
	ShowWidget      bool             `json:"show_widget"`
	PublicKey       string           `json:"public_key,omitempty"`
	Theme           models.Theme     `json:"theme,omitempty"`
	Language        models.Language  `json:"language,omitempty"`
	TabIndex        int              `json:"tab_index,omitempty"`
	XHTMLCompliance bool             `json:"xhtml_compliance,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	Restored        *RestoredComment `json:"restored,omitempty"`
}

// GetCommentForm handles GET /v1/posts/:post_id/comment-form
func (h *CommentHandler) GetCommentForm(c *gin.Context) {
	cfg := h.policyService.Current()
	state := CommentFormState{ShowWidget: !policy.ShouldBypass(cfg, middleware.ActorCapabilities(c))}
	if state.ShowWidget {
		state.PublicKey = cfg.PublicKey
		state.Theme = cfg.CommentsTheme
		state.Language = cfg.RecaptchaLanguage
		state.TabIndex = cfg.CommentsTabIndex
		state.XHTMLCompliance = cfg.XHTMLCompliance
	}

	query := c.Request.URL.Query()
	if code := query.Get(redirect.ParamError); models.IsKnownErrorCode(code) {
		state.ErrorMessage = policy.ErrorMessage(cfg, code)
	}
	if restored, ok := h.vault.TryRestore(c.Request.Context(), query); ok {
		state.Restored = &RestoredComment{
			SubmissionID:  restored.SubmissionID,
			Content:       restored.Content,
			ScriptLiteral: restored.ScriptLiteral(),
		}
	}

	c.JSON(http.StatusOK, state)
}

// CommentForm is the submitted comment form. Field names follow the classic comment
// form and the reCAPTCHA v1 widget.
type CommentForm struct {
	Author     string `form:"author"`
	Email      string `form:"email" binding:"omitempty,email"`
	URL        string `form:"url" binding:"omitempty,url"`
	Content    string `form:"comment" binding:"required"`
	Kind       string `form:"comment_type" binding:"omitempty,oneof=trackback pingback"`
	RedirectTo string `form:"redirect_to"`
	Challenge  string `form:"recaptcha_challenge_field"`
	Response   string `form:"recaptcha_response_field"`
}

// SubmitComment handles POST /v1/posts/:post_id/comments
func (h *CommentHandler) SubmitComment(c *gin.Context) {
	postID := c.Param("post_id")

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid comment form: %v", err)})
		return
	}
	if strings.TrimSpace(form.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content required"})
		return
	}

	cfg := h.policyService.Current()
	decision := h.controller.HandleSubmission(c.Request.Context(), submission.Request{
		ChallengeToken:    form.Challenge,
		ResponseToken:     form.Response,
		OriginAddress:     c.ClientIP(),
		ContentKind:       models.ContentKind(form.Kind),
		ActorCapabilities: middleware.ActorCapabilities(c),
	}, cfg)

	comment, err := h.commentService.Create(c.Request.Context(), &models.Comment{
		PostID:      postID,
		Author:      strings.TrimSpace(form.Author),
		AuthorEmail: strings.TrimSpace(form.Email),
		AuthorURL:   strings.TrimSpace(form.URL),
		AuthorIP:    c.ClientIP(),
		UserID:      c.GetString(middleware.ContextKeyUserID),
		Content:     form.Content,
		Kind:        models.ContentKind(form.Kind),
		Status:      decision.Status,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store comment"})
		return
	}

	location := baseLocation(form.RedirectTo, postID, comment.ID)
	if !decision.Accept {
		location = redirect.EncodeFailureRedirect(location, comment.ID, decision.ErrorCode, h.codec.ComputeToken(comment.ID))
		log.Info().
			Str("post_id", postID).
			Str("comment_id", comment.ID).
			Str("error_code", decision.ErrorCode).
			Msg("Comment held after failed verification")
	}

	c.Redirect(http.StatusSeeOther, location)
}

// baseLocation is where the browser returns after posting. Only same-site paths
// are honoured for redirect_to.
func baseLocation(redirectTo, postID, commentID string) string {
	if strings.HasPrefix(redirectTo, "/") && !strings.HasPrefix(redirectTo, "//") && !strings.Contains(redirectTo, `\`) {
		return redirectTo
	}
	return fmt.Sprintf("/posts/%s#comment-%s", postID, commentID)
}
