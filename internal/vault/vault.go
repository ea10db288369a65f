package vault

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/integrity"
	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/redirect"
	"greendrake/commentguard/internal/services"
)

// Stash removes and returns a held comment in one atomic step. It returns
// services.ErrCommentNotFound when no held comment has the id.
type Stash interface {
	TakeHeld(ctx context.Context, id string) (*models.Comment, error)
}

// RestoredContent is a rejected comment handed back to the form for rehydration.
type RestoredContent struct {
	SubmissionID string `json:"submission_id"`
	Content      string `json:"content"`
}

// ScriptLiteral returns Content as a JSON string literal that is safe inside a
// <script> element.
func (r RestoredContent) ScriptLiteral() string {
	// json.Marshal escapes <, > and & as well as U+2028/U+2029
	b, _ := json.Marshal(r.Content)
	return string(b)
}

// Vault restores rejected comments named by a recovery link, at most once each.
type Vault struct {
	codec *integrity.Codec
	stash Stash
}

func New(codec *integrity.Codec, stash Stash) *Vault {
	return &Vault{codec: codec, stash: stash}
}

// TryRestore validates the recovery parameters in query and, if they name a held
// comment, removes it from the stash and returns its content. Any failure yields
// false and is never surfaced.
func (v *Vault) TryRestore(ctx context.Context, query url.Values) (*RestoredContent, bool) {
	id := query.Get(redirect.ParamCommentID)
	candidate := query.Get(redirect.ParamHash)
	if id == "" || candidate == "" {
		return nil, false
	}

	if !v.codec.VerifyToken(id, candidate) {
		log.Debug().Str("submission_id", id).Msg("Recovery hash mismatch, nothing restored.")
		return nil, false
	}

	comment, err := v.stash.TakeHeld(ctx, id)
	if err != nil {
		if !errors.Is(err, services.ErrCommentNotFound) {
			log.Warn().Err(err).Str("submission_id", id).Msg("Failed to take stashed comment")
		}
		return nil, false
	}

	return &RestoredContent{SubmissionID: comment.ID, Content: comment.Content}, true
}
