package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"FiscoBot/entity"
)

// UpsertTaxpayer persists a taxpayer by phone.
func (m *MongoDB) UpsertTaxpayer(ctx context.Context, t *entity.Taxpayer) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(taxpayersCollection)

	t.UpdatedAt = time.Now()

	filter := bson.D{{Key: "phone", Value: t.Phone}}
	update := bson.D{{Key: "$set", Value: t}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetTaxpayerByPhone retrieves a taxpayer by phone, nil when unknown.
func (m *MongoDB) GetTaxpayerByPhone(ctx context.Context, phone string) (*entity.Taxpayer, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(taxpayersCollection)

	filter := bson.D{{Key: "phone", Value: phone}}

	var t entity.Taxpayer
	err = collection.FindOne(ctx, filter).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &t, nil
}
