package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixgeelhaar/notify-go/domain/preference"
)

// DefaultCollection is the collection holding user documents.
const DefaultCollection = "users"

// PreferenceStore reads and writes user documents of the shape
//
//	{_id, name, active, primaryPhone, secondaryPhone, preferences: {flag: bool}}
type PreferenceStore struct {
	collection   *mongo.Collection
	queryTimeout time.Duration
}

// NewPreferenceStore creates a new MongoDB preference store.
func NewPreferenceStore(client *Client, collectionName string) *PreferenceStore {
	if collectionName == "" {
		collectionName = DefaultCollection
	}
	return &PreferenceStore{
		collection:   client.Collection(collectionName),
		queryTimeout: client.config.QueryTimeout,
	}
}

// flagFilter selects active users whose flag is true.
func flagFilter(flag preference.Flag) bson.M {
	return bson.M{
		"active":                      true,
		"preferences." + string(flag): true,
	}
}

// FindUsersWithFlag returns active users with flag enabled, ordered by ID.
func (s *PreferenceStore) FindUsersWithFlag(ctx context.Context, flag preference.Flag) ([]preference.User, error) {
	if !flag.Valid() {
		return nil, preference.ErrUnknownFlag
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, flagFilter(flag), opts)
	if err != nil {
		return nil, wrapError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var users []preference.User
	for cursor.Next(ctx) {
		var u preference.User
		if err := cursor.Decode(&u); err != nil {
			return nil, wrapError(err)
		}
		users = append(users, u)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err)
	}

	return users, nil
}

// SaveUser upserts the whole user document.
func (s *PreferenceStore) SaveUser(ctx context.Context, u preference.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return preference.ErrInvalidUserID
	}
	for f := range u.Flags {
		if !f.Valid() {
			return fmt.Errorf("%w: %s", preference.ErrUnknownFlag, f)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	return wrapError(err)
}

// SetFlag sets preferences.<flag> on an existing user.
func (s *PreferenceStore) SetFlag(ctx context.Context, userID string, flag preference.Flag, enabled bool) error {
	if userID == "" {
		return preference.ErrInvalidUserID
	}
	if !flag.Valid() {
		return preference.ErrUnknownFlag
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"preferences." + string(flag): enabled}},
	)
	if err != nil {
		return wrapError(err)
	}
	if result.MatchedCount == 0 {
		return preference.ErrUserNotFound
	}
	return nil
}

var _ preference.AdminStore = (*PreferenceStore)(nil)
