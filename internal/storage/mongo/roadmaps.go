package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// CreateRoadmap inserts a saved roadmap document.
func (s *Store) CreateRoadmap(ctx context.Context, r models.Roadmap) (models.Roadmap, error) {
	if _, err := s.roadmaps.InsertOne(ctx, r); err != nil {
		return models.Roadmap{}, mapErr(err)
	}
	return r, nil
}

// FindRoadmap fetches one roadmap by id.
func (s *Store) FindRoadmap(ctx context.Context, id string) (models.Roadmap, error) {
	var r models.Roadmap
	if err := s.roadmaps.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return models.Roadmap{}, mapErr(err)
	}
	return r, nil
}

// ListRoadmaps returns the user's roadmaps newest first.
func (s *Store) ListRoadmaps(ctx context.Context, userID string) ([]models.Roadmap, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.roadmaps.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	out := []models.Roadmap{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode roadmaps: %w", err)
	}
	return out, nil
}

// UpdatePhases replaces the phases when the version still matches.
func (s *Store) UpdatePhases(ctx context.Context, r models.Roadmap) (models.Roadmap, error) {
	var updated models.Roadmap
	err := s.roadmaps.FindOneAndUpdate(ctx,
		bson.M{"_id": r.ID, "version": r.Version},
		bson.M{
			"$set": bson.M{"roadmap": r.Phases, "updatedAt": r.UpdatedAt},
			"$inc": bson.M{"version": 1},
		},
		returnAfter(),
	).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if mapErr(err) != storage.ErrNotFound {
		return models.Roadmap{}, err
	}
	if _, findErr := s.FindRoadmap(ctx, r.ID); findErr != nil {
		return models.Roadmap{}, findErr
	}
	return models.Roadmap{}, storage.ErrConflict
}

// DeleteRoadmap removes a roadmap.
func (s *Store) DeleteRoadmap(ctx context.Context, id string) error {
	res, err := s.roadmaps.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
