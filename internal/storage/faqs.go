package storage

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/model"
)

// FAQStore holds the FAQ catalog.
type FAQStore struct {
	client *Client
	coll   *mongo.Collection
}

// NewFAQStore creates an FAQ store.
func NewFAQStore(c *Client) *FAQStore {
	return &FAQStore{client: c, coll: c.db.Collection(collFAQs)}
}

// ciSubstring builds a case-insensitive substring matcher.
func ciSubstring(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// FindByLanguage returns FAQs in one language matching the query, in
// store-native order capped by limit. No relevance ranking is applied.
func (s *FAQStore) FindByLanguage(ctx context.Context, q model.FAQQuery, language string, limit int) ([]model.FAQ, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	filter := bson.M{"language": language}
	if q.Keyword != "" {
		kw := ciSubstring(q.Keyword)
		filter["$or"] = bson.A{
			bson.M{"question": kw},
			bson.M{"tags": kw},
			bson.M{"category": kw},
		}
	}
	if q.Category != "" {
		filter["category"] = ciSubstring(q.Category)
	}
	if q.Tag != "" {
		filter["tags"] = ciSubstring(q.Tag)
	}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, &apperr.LookupError{Cause: err}
	}
	defer cur.Close(ctx)

	var faqs []model.FAQ
	if err := cur.All(ctx, &faqs); err != nil {
		return nil, &apperr.LookupError{Cause: err}
	}

	return faqs, nil
}

// Create inserts a new FAQ. Language defaults to "en" when unset.
func (s *FAQStore) Create(ctx context.Context, faq *model.FAQ) error {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	if faq.Language == "" {
		faq.Language = "en"
	}

	res, err := s.coll.InsertOne(ctx, faq)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		faq.ID = oid
	}

	return nil
}

// List returns every FAQ in the catalog.
func (s *FAQStore) List(ctx context.Context) ([]model.FAQ, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var faqs []model.FAQ
	if err := cur.All(ctx, &faqs); err != nil {
		return nil, err
	}

	return faqs, nil
}

// GetByID fetches one FAQ.
func (s *FAQStore) GetByID(ctx context.Context, id string) (*model.FAQ, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid FAQ id")
	}

	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	var faq model.FAQ
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&faq)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("FAQ %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &faq, nil
}

// Update applies a partial update and returns the updated FAQ.
func (s *FAQStore) Update(ctx context.Context, id string, req *model.UpdateFAQRequest) (*model.FAQ, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid FAQ id")
	}

	set := bson.M{}
	if req.Question != nil {
		set["question"] = *req.Question
	}
	if req.Answer != nil {
		set["answer"] = *req.Answer
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Tags != nil {
		set["tags"] = *req.Tags
	}
	if req.Language != nil {
		set["language"] = *req.Language
	}
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}

	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	var faq model.FAQ
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&faq)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("FAQ %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &faq, nil
}

// Delete removes one FAQ.
func (s *FAQStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid FAQ id")
	}

	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("FAQ %s", id)
	}

	return nil
}
