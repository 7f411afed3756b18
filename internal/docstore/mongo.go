package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores each collection as a Mongo collection, with the document
// id as _id. $set and $addToSet map directly onto the merge-write and
// de-dup-append semantics the Store interface requires.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo { return &Mongo{db: db} }

func (m *Mongo) GetDocument(ctx context.Context, collection, id string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get failed: %w", err)
	}
	delete(raw, "_id")
	return normalize(map[string]any(raw))
}

func (m *Mongo) SetFields(ctx context.Context, collection, id string, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	_, err := m.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M(fields)}, opts)
	if err != nil {
		return fmt.Errorf("mongo set failed: %w", err)
	}
	return nil
}

func (m *Mongo) AppendToArrayField(ctx context.Context, collection, id, field string, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	update := bson.M{"$addToSet": bson.M{field: bson.M{"$each": values}}}
	_, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, opts)
	if err != nil {
		return fmt.Errorf("mongo append failed: %w", err)
	}
	return nil
}

func (m *Mongo) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list failed: %w", err)
	}
	defer cur.Close(ctx)

	var out []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("mongo list decode failed: %w", err)
		}
		id, _ := raw["_id"].(string)
		delete(raw, "_id")
		fields, err := normalize(map[string]any(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo list failed: %w", err)
	}
	return out, nil
}

// normalize flattens BSON container types (primitive.A, nested bson.M,
// int32) into plain JSON shapes so callers see the same values from
// every backend.
func normalize(fields map[string]any) (map[string]any, error) {
	out, err := Encode(fields)
	if err != nil {
		return nil, fmt.Errorf("mongo normalize failed: %w", err)
	}
	return out, nil
}
