package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFileRepository implements domain.FileRepository
type MongoFileRepository struct {
	collection *mongo.Collection
}

func NewMongoFileRepository(db *mongo.Database) *MongoFileRepository {
	coll := db.Collection("files")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "parent_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "local_path", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})

	return &MongoFileRepository{
		collection: coll,
	}
}

func (r *MongoFileRepository) Create(ctx context.Context, node *domain.FileNode) error {
	node.CreatedAt = time.Now()
	objID := primitive.NewObjectID()
	node.ID = objID.Hex()

	doc := bson.M{
		"_id":        objID,
		"user_id":    node.UserID,
		"name":       node.Name,
		"kind":       node.Kind,
		"parent_id":  node.ParentID,
		"is_public":  node.IsPublic,
		"created_at": node.CreatedAt,
	}
	if node.LocalPath != "" {
		doc["local_path"] = node.LocalPath
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create file node: %w", err)
	}
	return nil
}

func (r *MongoFileRepository) GetByID(ctx context.Context, id string) (*domain.FileNode, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file node: %w", err)
	}
	return mapBsonToFileNode(raw), nil
}

func (r *MongoFileRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.FileNode, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	filter := bson.M{"_id": objID, "user_id": userID}
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file node: %w", err)
	}
	return mapBsonToFileNode(raw), nil
}

func (r *MongoFileRepository) ListByParent(ctx context.Context, userID, parentID string, page, pageSize int) ([]*domain.FileNode, error) {
	filter := bson.M{
		"user_id":   userID,
		"parent_id": parentID,
	}

	// _id ordering is creation ordering for ObjectIDs.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list file nodes: %w", err)
	}
	defer cursor.Close(ctx)

	nodes := make([]*domain.FileNode, 0, pageSize)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		nodes = append(nodes, mapBsonToFileNode(raw))
	}
	return nodes, nil
}

func (r *MongoFileRepository) SetPublic(ctx context.Context, id string, public bool) (*domain.FileNode, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	update := bson.M{"$set": bson.M{"is_public": public}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raw bson.M
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update file node: %w", err)
	}
	return mapBsonToFileNode(raw), nil
}

func (r *MongoFileRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

func mapBsonToFileNode(raw bson.M) *domain.FileNode {
	node := &domain.FileNode{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		node.ID = oid.Hex()
	}
	if uid, ok := raw["user_id"].(string); ok {
		node.UserID = uid
	}
	if name, ok := raw["name"].(string); ok {
		node.Name = name
	}
	if kind, ok := raw["kind"].(string); ok {
		node.Kind = kind
	}
	if parent, ok := raw["parent_id"].(string); ok {
		node.ParentID = parent
	}
	if public, ok := raw["is_public"].(bool); ok {
		node.IsPublic = public
	}
	if path, ok := raw["local_path"].(string); ok {
		node.LocalPath = path
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		node.CreatedAt = created.Time()
	}
	return node
}
