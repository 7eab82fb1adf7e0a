package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is one entry of the lab's service catalog. Prices are denominated
// in Kenyan shillings.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
}

// FAQ is one entry of the FAQ catalog. Language defaults to "en".
type FAQ struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Question string             `bson:"question" json:"question"`
	Answer   string             `bson:"answer" json:"answer"`
	Category string             `bson:"category,omitempty" json:"category,omitempty"`
	Tags     []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Language string             `bson:"language" json:"language"`
}

// FAQQuery narrows an FAQ search. Zero-value fields are ignored; Keyword
// matches question, tags or category as a case-insensitive substring.
type FAQQuery struct {
	Keyword  string
	Category string
	Tag      string
}

// CreateFAQRequest is the admin request to create an FAQ.
type CreateFAQRequest struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Language string   `json:"language"`
}

// UpdateFAQRequest is the admin request to partially update an FAQ. Nil
// fields are left untouched.
type UpdateFAQRequest struct {
	Question *string   `json:"question,omitempty"`
	Answer   *string   `json:"answer,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Language *string   `json:"language,omitempty"`
}

// CreateServiceRequest is the admin request to create a catalog service.
type CreateServiceRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// UpdateServiceRequest is the admin request to partially update a service.
type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
}
