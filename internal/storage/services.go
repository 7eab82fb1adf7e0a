package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/model"
)

// ServiceStore holds the lab service catalog.
type ServiceStore struct {
	client *Client
	coll   *mongo.Collection
}

// NewServiceStore creates a service store.
func NewServiceStore(c *Client) *ServiceStore {
	return &ServiceStore{client: c, coll: c.db.Collection(collServices)}
}

// Find returns services whose name or category contains query,
// case-insensitively, in store-native order capped by limit.
func (s *ServiceStore) Find(ctx context.Context, query string, limit int) ([]model.Service, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	kw := ciSubstring(query)
	cur, err := s.coll.Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"name": kw},
			bson.M{"category": kw},
		}},
		options.Find().SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, &apperr.LookupError{Cause: err}
	}
	defer cur.Close(ctx)

	var services []model.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, &apperr.LookupError{Cause: err}
	}

	return services, nil
}

// Create inserts a new service.
func (s *ServiceStore) Create(ctx context.Context, svc *model.Service) error {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, svc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		svc.ID = oid
	}

	return nil
}

// List returns every service in the catalog.
func (s *ServiceStore) List(ctx context.Context) ([]model.Service, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var services []model.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}

	return services, nil
}

// GetByID fetches one service.
func (s *ServiceStore) GetByID(ctx context.Context, id string) (*model.Service, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid service id")
	}

	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	var svc model.Service
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("service %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &svc, nil
}

// Update applies a partial update and returns the updated service.
func (s *ServiceStore) Update(ctx context.Context, id string, req *model.UpdateServiceRequest) (*model.Service, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid service id")
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}

	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	var svc model.Service
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("service %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &svc, nil
}

// Delete removes one service.
func (s *ServiceStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid service id")
	}

	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("service %s", id)
	}

	return nil
}
