package mongostore

import (
	"context"
	"fmt"
	"time"

	"blocknotes/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// UserStore implements domain.UserStore.
type UserStore struct {
	col *mongo.Collection
}

func (s *UserStore) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, fromUser(u))
	return mapError(err)
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var r userRecord
	if err := s.col.FindOne(ctx, filter).Decode(&r); err != nil {
		return nil, fmt.Errorf("get user: %w", mapError(err))
	}
	return r.toDomain(), nil
}

func (s *UserStore) UpdateUser(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, fromUser(u))
	if err != nil {
		return mapError(err)
	}
	return requireMatched(res, "update user")
}

// SessionStore implements domain.SessionStore.
type SessionStore struct {
	col *mongo.Collection
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.col.InsertOne(ctx, sessionRecord(*sess))
	return mapError(err)
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var r sessionRecord
	if err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: token}}).Decode(&r); err != nil {
		return nil, fmt.Errorf("get session: %w", mapError(err))
	}
	sess := domain.Session(r)
	return &sess, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: token}})
	return err
}

func (s *SessionStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	_, err := s.col.DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}})
	return err
}
