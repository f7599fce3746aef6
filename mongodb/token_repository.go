package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftdeck/oauth-gateway/domain"
)

// TokenRepository stores issued token records.
type TokenRepository struct {
	tokens *mongo.Collection
}

// NewTokenRepository creates the repository and ensures a TTL index on
// expires_at so expired rows age out server-side.
func NewTokenRepository(ctx context.Context, db *mongo.Database) (*TokenRepository, error) {
	tokens := db.Collection(TokensCollection)

	_, err := tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "access_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token indexes: %w", err)
	}

	return &TokenRepository{tokens: tokens}, nil
}

func (r *TokenRepository) StoreToken(ctx context.Context, token *domain.Token) error {
	if _, err := r.tokens.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	_, err := r.tokens.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	return err
}
