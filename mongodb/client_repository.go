package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/craftdeck/oauth-gateway/domain"
)

// ClientRepository reads registered clients from MongoDB. The gateway never
// writes this collection; platform administration owns it.
type ClientRepository struct {
	clients *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{clients: db.Collection(ClientsCollection)}
}

func (r *ClientRepository) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	var cli domain.Client
	err := r.clients.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&cli)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to retrieve client %s: %w", clientID, err)
	}
	return &cli, nil
}
