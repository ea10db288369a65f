package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greendrake/commentguard/internal/models"
)

// ErrOptionNotFound is returned when the requested option record does not exist.
var ErrOptionNotFound = errors.New("option not found")

// IOptionStore reads and writes named option records.
type IOptionStore interface {
	GetPolicy(ctx context.Context) (*models.PolicyConfig, error)
	PutPolicy(ctx context.Context, cfg models.PolicyConfig) error
	GetLegacy(ctx context.Context) (*models.LegacyOptions, error)
	DeleteLegacy(ctx context.Context) error
}

const optionsCollection = "options"

// optionEntry represents a document in the options collection.
type optionEntry[T any] struct {
	Name  string `bson:"_id"`
	Value T      `bson:"value"`
}

// mongoOptionStore implements IOptionStore.
type mongoOptionStore struct {
	db *mongo.Database
}

// NewOptionStore creates an option store backed by the options collection.
func NewOptionStore(db *mongo.Database) IOptionStore {
	return &mongoOptionStore{db: db}
}

func getOption[T any](ctx context.Context, coll *mongo.Collection, name string) (*T, error) {
	var entry optionEntry[T]
	err := coll.FindOne(ctx, bson.M{"_id": name}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to read option '%s': %w", name, err)
	}
	return &entry.Value, nil
}

func (s *mongoOptionStore) GetPolicy(ctx context.Context) (*models.PolicyConfig, error) {
	return getOption[models.PolicyConfig](ctx, s.db.Collection(optionsCollection), models.PolicyOptionName)
}

func (s *mongoOptionStore) GetLegacy(ctx context.Context) (*models.LegacyOptions, error) {
	return getOption[models.LegacyOptions](ctx, s.db.Collection(optionsCollection), models.LegacyOptionName)
}

func (s *mongoOptionStore) PutPolicy(ctx context.Context, cfg models.PolicyConfig) error {
	entry := optionEntry[models.PolicyConfig]{Name: models.PolicyOptionName, Value: cfg}
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(optionsCollection).ReplaceOne(ctx, bson.M{"_id": models.PolicyOptionName}, entry, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert option '%s': %w", models.PolicyOptionName, err)
	}
	return nil
}

func (s *mongoOptionStore) DeleteLegacy(ctx context.Context) error {
	_, err := s.db.Collection(optionsCollection).DeleteOne(ctx, bson.M{"_id": models.LegacyOptionName})
	if err != nil {
		return fmt.Errorf("failed to delete option '%s': %w", models.LegacyOptionName, err)
	}
	return nil
}
