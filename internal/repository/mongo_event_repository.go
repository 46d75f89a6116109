package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub-be/internal/database"
	"eventhub-be/internal/entities"
)

var newestFirst = bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}}

type mongoEventRepository struct {
	events *mongo.Collection
	now    func() time.Time
}

// NewMongoEventRepository creates a MongoDB-backed event repository
func NewMongoEventRepository(db *mongo.Database) EventRepository {
	return &mongoEventRepository{
		events: db.Collection(database.EventsCollection),
		now:    time.Now,
	}
}

func (r *mongoEventRepository) Create(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	e := *event
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	e.CreatedAt, e.UpdatedAt = now, now

	if _, err := r.events.InsertOne(ctx, &e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", mongoErr(err))
	}
	return &e, nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*entities.Event, error) {
	var e entities.Event
	if err := r.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to find event: %w", mongoErr(err))
	}
	return &e, nil
}

func (r *mongoEventRepository) Find(ctx context.Context, q EventQuery) ([]*entities.Event, error) {
	filter := bson.M{}
	if q.Title != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Title), Options: "i"}
	}
	if q.PostedBy != "" {
		filter["postedBy"] = q.PostedBy
	}
	date := bson.M{}
	if !q.From.IsZero() {
		date["$gte"] = q.From
	}
	if !q.To.IsZero() {
		if q.ToInclusive {
			date["$lte"] = q.To
		} else {
			date["$lt"] = q.To
		}
	}
	if len(date) > 0 {
		filter["date"] = date
	}

	cur, err := r.events.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", mongoErr(err))
	}
	events := []*entities.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", mongoErr(err))
	}
	return events, nil
}

func (r *mongoEventRepository) Update(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	update := bson.M{"$set": bson.M{
		"title":       event.Title,
		"date":        event.Date,
		"time":        event.Time,
		"location":    event.Location,
		"description": event.Description,
		"updatedAt":   r.now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e entities.Event
	if err := r.events.FindOneAndUpdate(ctx, bson.M{"_id": event.ID}, update, opts).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", mongoErr(err))
	}
	return &e, nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", mongoErr(err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("failed to delete event: %w", ErrNotFound)
	}
	return nil
}

func (r *mongoEventRepository) AddAttendee(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	filter := bson.M{"_id": eventID, "attendees": bson.M{"$ne": userID}}
	update := bson.M{
		"$push": bson.M{"attendees": userID},
		"$inc":  bson.M{"attendeeCount": 1},
		"$set":  bson.M{"updatedAt": r.now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e entities.Event
	err := r.events.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
	if err == nil {
		return &e, nil
	}
	if mapped := mongoErr(err); mapped != ErrNotFound {
		return nil, fmt.Errorf("failed to join event: %w", mapped)
	}

	n, err := r.events.CountDocuments(ctx, bson.M{"_id": eventID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to join event: %w", mongoErr(err))
	}
	if n == 0 {
		return nil, fmt.Errorf("failed to join event: %w", ErrNotFound)
	}
	return nil, fmt.Errorf("failed to join event: %w", ErrAlreadyAttending)
}
