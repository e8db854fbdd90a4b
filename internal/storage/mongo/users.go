package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// CreateUser inserts the user document.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return models.User{}, mapErr(err)
	}
	return user, nil
}

// FindUserByID fetches a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// FindUserByEmail fetches a user by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

// UpdateDisplayName changes the display name and returns the updated user.
func (s *Store) UpdateDisplayName(ctx context.Context, id, displayName string) (models.User, error) {
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"displayName": displayName}}, returnAfter()).Decode(&u)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

// RecordLogin stores the streak computed for a sign-in at the given time.
func (s *Store) RecordLogin(ctx context.Context, id string, streak int, at time.Time) error {
	return s.updateUser(ctx, id, bson.M{"$set": bson.M{"activeStreak": streak, "lastLoginDate": at}})
}

// UpdateProgress overwrites the progress counters.
func (s *Store) UpdateProgress(ctx context.Context, id string, overall, milestones int) error {
	return s.updateUser(ctx, id, bson.M{"$set": bson.M{"overallProgress": overall, "completedMilestones": milestones}})
}

// IncrementAssistantQueries bumps the assistant query counter by one.
func (s *Store) IncrementAssistantQueries(ctx context.Context, id string) error {
	return s.updateUser(ctx, id, bson.M{"$inc": bson.M{"aiAssistantQueries": 1}})
}

func (s *Store) updateUser(ctx context.Context, id string, update bson.M) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
