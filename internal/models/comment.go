package models

import "time"

// ContentKind distinguishes top-level comments from trackbacks and pingbacks.
// Only top-level comments are challenge-verified.
type ContentKind string

const (
	KindComment   ContentKind = ""
	KindTrackback ContentKind = "trackback"
	KindPingback  ContentKind = "pingback"
)

// IsTopLevel reports whether the content was typed by a person into the comment form.
func (k ContentKind) IsTopLevel() bool {
	return k == KindComment
}

// CommentStatus is the moderation classification of a stored comment.
type CommentStatus string

const (
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusPending  CommentStatus = "pending"
	// CommentStatusSpam marks a comment that failed verification. Such comments are
	// stashed for restoration and purged after the stash TTL.
	CommentStatusSpam CommentStatus = "spam"
)

// Comment represents a comment submitted on a post.
type Comment struct {
	ID          string        `bson:"_id" json:"id"`
	PostID      string        `bson:"post_id" json:"post_id"`
	Author      string        `bson:"author" json:"author"`
	AuthorEmail string        `bson:"author_email" json:"-"`
	AuthorURL   string        `bson:"author_url,omitempty" json:"author_url,omitempty"`
	AuthorIP    string        `bson:"author_ip" json:"-"`
	UserID      string        `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Content     string        `bson:"content" json:"content"`
	Kind        ContentKind   `bson:"kind" json:"kind"`
	Status      CommentStatus `bson:"status" json:"status"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}
