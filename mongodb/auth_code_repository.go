package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftdeck/oauth-gateway/domain"
)

// AuthCodeRepository stores authorization codes. Consumption uses
// FindOneAndDelete so that redemption is a single server-side operation:
// two concurrent redemptions of the same code can never both succeed.
type AuthCodeRepository struct {
	codes *mongo.Collection
}

// NewAuthCodeRepository creates the repository and ensures its indexes: a
// unique index on the code value, and a TTL index so abandoned codes are
// purged by the server after expiry. Expiry is still re-checked at
// redemption; the TTL index is hygiene, not enforcement.
func NewAuthCodeRepository(ctx context.Context, db *mongo.Database) (*AuthCodeRepository, error) {
	codes := db.Collection(CodesCollection)

	_, err := codes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth code indexes: %w", err)
	}

	return &AuthCodeRepository{codes: codes}, nil
}

func (r *AuthCodeRepository) SaveAuthCode(ctx context.Context, code *domain.AuthCode) error {
	if code.Code == "" {
		return errors.New("auth code value cannot be empty")
	}

	if _, err := r.codes.InsertOne(ctx, code); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("authorization code already exists: %w", err)
		}
		log.Error().Err(err).Str("client_id", code.ClientID).Msg("Error saving authorization code")
		return fmt.Errorf("failed to save authorization code: %w", err)
	}

	log.Debug().Str("client_id", code.ClientID).Msg("Authorization code saved")
	return nil
}

func (r *AuthCodeRepository) GetAuthCode(ctx context.Context, codeValue string) (*domain.AuthCode, error) {
	var code domain.AuthCode
	err := r.codes.FindOne(ctx, bson.M{"code": codeValue}).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAuthCodeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve authorization code: %w", err)
	}
	return &code, nil
}

// ConsumeAuthCode atomically removes and returns the code bound to the
// exact (code, client_id, redirect_uri) triple.
func (r *AuthCodeRepository) ConsumeAuthCode(ctx context.Context, codeValue, clientID, redirectURI string) (*domain.AuthCode, error) {
	filter := bson.M{
		"code":         codeValue,
		"client_id":    clientID,
		"redirect_uri": redirectURI,
	}

	var code domain.AuthCode
	err := r.codes.FindOneAndDelete(ctx, filter).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAuthCodeNotFound
		}
		return nil, fmt.Errorf("failed to consume authorization code: %w", err)
	}

	log.Debug().Str("client_id", clientID).Msg("Authorization code consumed")
	return &code, nil
}

func (r *AuthCodeRepository) DeleteExpiredAuthCodes(ctx context.Context) error {
	_, err := r.codes.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	return err
}
