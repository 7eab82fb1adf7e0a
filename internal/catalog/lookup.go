// Package catalog provides read-only keyword search over the service and FAQ
// catalogs, including the FAQ language fallback rules.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
	"github.com/dkl-health/chatbot-backend/pkg/metrics"
)

const (
	// DefaultServiceLimit bounds a service search.
	DefaultServiceLimit = 5
	// DefaultFAQLimit bounds an FAQ search.
	DefaultFAQLimit = 3
)

// ServiceFinder is the read surface of the service store.
type ServiceFinder interface {
	Find(ctx context.Context, query string, limit int) ([]model.Service, error)
}

// FAQFinder is the read surface of the FAQ store.
type FAQFinder interface {
	FindByLanguage(ctx context.Context, q model.FAQQuery, language string, limit int) ([]model.FAQ, error)
}

// FAQResult is an FAQ search outcome. Fallback is set when zero matches in
// the requested language forced a default-language search.
type FAQResult struct {
	FAQs     []model.FAQ `json:"faqs"`
	Fallback bool        `json:"fallback,omitempty"`
}

// Lookup composes the two catalog reads. It never mutates.
type Lookup struct {
	services        ServiceFinder
	faqs            FAQFinder
	defaultLanguage string
	logger          *logger.Logger
}

// NewLookup creates a catalog lookup.
func NewLookup(services ServiceFinder, faqs FAQFinder, defaultLanguage string, log *logger.Logger) *Lookup {
	return &Lookup{
		services:        services,
		faqs:            faqs,
		defaultLanguage: defaultLanguage,
		logger:          log,
	}
}

// FindServices matches query case-insensitively against service name or
// category. Zero matches is a valid empty result, not an error.
func (l *Lookup) FindServices(ctx context.Context, query string, limit int) ([]model.Service, error) {
	if limit <= 0 {
		limit = DefaultServiceLimit
	}

	services, err := l.services.Find(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	metrics.RecordCatalogLookup("service", len(services))
	return services, nil
}

// FindFAQs searches FAQs in the requested language. With multi set, the
// result is the language-specific matches followed by the default-language
// matches, concatenated without de-duplication, so an FAQ present in both
// sets appears twice. Without multi, an empty language-specific result falls
// back to default-language records and flags the fallback.
func (l *Lookup) FindFAQs(ctx context.Context, q model.FAQQuery, language string, multi bool, limit int) (*FAQResult, error) {
	if limit <= 0 {
		limit = DefaultFAQLimit
	}
	if language == "" {
		language = l.defaultLanguage
	}

	faqs, err := l.faqs.FindByLanguage(ctx, q, language, limit)
	if err != nil {
		return nil, err
	}

	result := &FAQResult{FAQs: faqs}

	switch {
	case multi && language != l.defaultLanguage:
		defaults, err := l.faqs.FindByLanguage(ctx, q, l.defaultLanguage, limit)
		if err != nil {
			return nil, err
		}
		result.FAQs = append(result.FAQs, defaults...)

	case len(faqs) == 0 && language != l.defaultLanguage:
		defaults, err := l.faqs.FindByLanguage(ctx, q, l.defaultLanguage, limit)
		if err != nil {
			return nil, err
		}
		if len(defaults) > 0 {
			result.FAQs = defaults
			result.Fallback = true
			l.logger.Info("faq search fell back to default language",
				zap.String("requested", language),
				zap.String("default", l.defaultLanguage),
			)
		}
	}

	metrics.RecordCatalogLookup("faq", len(result.FAQs))
	return result, nil
}
