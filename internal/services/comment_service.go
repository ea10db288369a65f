package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/commentguard/internal/db"
	"greendrake/commentguard/internal/models"
)

// ErrCommentNotFound is returned when no comment matches the lookup.
var ErrCommentNotFound = errors.New("comment not found")

// ICommentService defines the comment datastore operations used by the pipeline.
type ICommentService interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	TakeHeld(ctx context.Context, id string) (*models.Comment, error)
	PurgeHeldBefore(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

const commentsCollection = "comments"

// commentService implements ICommentService.
type commentService struct {
	db *mongo.Database
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *mongo.Database) ICommentService {
	return &commentService{db: db}
}

// Create stores a new comment with a fresh id and creation time.
func (s *commentService) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	doc := *comment
	doc.CreatedAt = time.Now().UTC()

	err := db.Try(func() error {
		doc.ID = uuid.NewString()
		_, err := s.db.Collection(commentsCollection).InsertOne(ctx, &doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return &doc, nil
}

// TakeHeld atomically removes a held comment and returns it. Concurrent callers
// with the same id see at most one success.
func (s *commentService) TakeHeld(ctx context.Context, id string) (*models.Comment, error) {
	filter := bson.M{"_id": id, "status": models.CommentStatusSpam}

	var comment models.Comment
	err := s.db.Collection(commentsCollection).FindOneAndDelete(ctx, filter).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to take held comment %s: %w", id, err)
	}
	return &comment, nil
}

// PurgeHeldBefore deletes held comments created before cutoff.
func (s *commentService) PurgeHeldBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"status":     models.CommentStatusSpam,
		"created_at": bson.M{"$lt": cutoff},
	}
	res, err := s.db.Collection(commentsCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to purge held comments: %w", err)
	}
	if res.DeletedCount > 0 {
		log.Info().Int64("count", res.DeletedCount).Time("cutoff", cutoff).Msg("Purged stale held comments.")
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the indexes the purge and post listing queries rely on.
func (s *commentService) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(commentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}
	return nil
}
