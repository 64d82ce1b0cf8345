package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"FiscoBot/bot/chat"
)

// SaveSession persists a session by {platform, user_id}.
func (m *MongoDB) SaveSession(ctx context.Context, session *chat.Session) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)

	session.LastActivityAt = time.Now()

	filter := bson.D{{Key: "platform", Value: session.Platform}, {Key: "user_id", Value: session.UserID}}
	update := bson.D{{Key: "$set", Value: session}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadSession retrieves a session by {platform, user_id}. An expired
// session is returned as nil so a fresh one gets created.
func (m *MongoDB) LoadSession(ctx context.Context, platform, userID string) (*chat.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)

	filter := bson.D{{Key: "platform", Value: platform}, {Key: "user_id", Value: userID}}

	var session chat.Session
	err = collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	if !session.IsActive || session.Expired(time.Now()) {
		return nil, nil
	}

	return &session, nil
}

// DeleteSession marks a session inactive. Sessions are never hard-deleted.
func (m *MongoDB) DeleteSession(ctx context.Context, platform, userID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)

	filter := bson.D{{Key: "platform", Value: platform}, {Key: "user_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "is_active", Value: false}}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}
