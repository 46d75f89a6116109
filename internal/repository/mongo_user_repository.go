package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub-be/internal/database"
	"eventhub-be/internal/entities"
)

var withoutPassword = bson.M{"password": 0}

// mongoErr maps driver errors onto repository errors.
func mongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return &DuplicateError{Field: "email"}
	}
	return err
}

type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a MongoDB-backed user repository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	u := *user
	now := time.Now().UTC().Truncate(time.Millisecond)
	u.CreatedAt, u.UpdatedAt = now, now

	if _, err := r.users.InsertOne(ctx, &u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mongoErr(err))
	}
	return &u, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	var u entities.User
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", mongoErr(err))
	}
	return &u, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	var u entities.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := r.users.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", mongoErr(err))
	}
	return &u, nil
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	opts := options.Find().SetProjection(withoutPassword)
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", mongoErr(err))
	}
	var users []*entities.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", mongoErr(err))
	}
	return users, nil
}
