package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

type fakeServiceFinder struct {
	services  []model.Service
	lastLimit int
}

func (f *fakeServiceFinder) Find(_ context.Context, _ string, limit int) ([]model.Service, error) {
	f.lastLimit = limit
	if limit < len(f.services) {
		return f.services[:limit], nil
	}
	return f.services, nil
}

type fakeFAQFinder struct {
	byLanguage map[string][]model.FAQ
}

func (f *fakeFAQFinder) FindByLanguage(_ context.Context, _ model.FAQQuery, language string, limit int) ([]model.FAQ, error) {
	faqs := f.byLanguage[language]
	if limit < len(faqs) {
		return faqs[:limit], nil
	}
	return faqs, nil
}

func faq(question, language string) model.FAQ {
	return model.FAQ{Question: question, Answer: "answer", Language: language}
}

func newLookup(services *fakeServiceFinder, faqs *fakeFAQFinder) *Lookup {
	return NewLookup(services, faqs, "en", logger.Global())
}

func TestFindServicesDefaultLimit(t *testing.T) {
	finder := &fakeServiceFinder{services: []model.Service{{Name: "Blood Test"}}}
	l := newLookup(finder, &fakeFAQFinder{})

	got, err := l.FindServices(context.Background(), "blood", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, DefaultServiceLimit, finder.lastLimit)
}

func TestFindServicesEmptyIsNotAnError(t *testing.T) {
	l := newLookup(&fakeServiceFinder{}, &fakeFAQFinder{})

	got, err := l.FindServices(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindFAQsLanguageMatch(t *testing.T) {
	faqs := &fakeFAQFinder{byLanguage: map[string][]model.FAQ{
		"fr": {faq("Quels sont vos horaires?", "fr")},
		"en": {faq("What are your hours?", "en")},
	}}
	l := newLookup(&fakeServiceFinder{}, faqs)

	res, err := l.FindFAQs(context.Background(), model.FAQQuery{Keyword: "horaires"}, "fr", false, 3)
	require.NoError(t, err)
	assert.Len(t, res.FAQs, 1)
	assert.False(t, res.Fallback)
	assert.Equal(t, "fr", res.FAQs[0].Language)
}

func TestFindFAQsFallsBackToDefaultLanguage(t *testing.T) {
	faqs := &fakeFAQFinder{byLanguage: map[string][]model.FAQ{
		"en": {faq("What are your hours?", "en"), faq("Where are you located?", "en")},
	}}
	l := newLookup(&fakeServiceFinder{}, faqs)

	res, err := l.FindFAQs(context.Background(), model.FAQQuery{Keyword: "hours"}, "fr", false, 3)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Len(t, res.FAQs, 2)
	for _, f := range res.FAQs {
		assert.Equal(t, "en", f.Language)
	}
}

func TestFindFAQsNoFallbackWhenDefaultRequested(t *testing.T) {
	l := newLookup(&fakeServiceFinder{}, &fakeFAQFinder{})

	res, err := l.FindFAQs(context.Background(), model.FAQQuery{Keyword: "x"}, "en", false, 3)
	require.NoError(t, err)
	assert.Empty(t, res.FAQs)
	assert.False(t, res.Fallback)
}

func TestFindFAQsMultiConcatenatesSpecificFirst(t *testing.T) {
	french := []model.FAQ{faq("Horaires?", "fr"), faq("Tarifs?", "fr")}
	english := []model.FAQ{faq("Hours?", "en"), faq("Horaires?", "en"), faq("Pricing?", "en")}
	faqs := &fakeFAQFinder{byLanguage: map[string][]model.FAQ{"fr": french, "en": english}}
	l := newLookup(&fakeServiceFinder{}, faqs)

	res, err := l.FindFAQs(context.Background(), model.FAQQuery{Keyword: "q"}, "fr", true, 5)
	require.NoError(t, err)

	// French first, then English, no de-duplication: an FAQ present in both
	// sets appears twice.
	require.Len(t, res.FAQs, len(french)+len(english))
	assert.Equal(t, "fr", res.FAQs[0].Language)
	assert.Equal(t, "fr", res.FAQs[1].Language)
	assert.Equal(t, "en", res.FAQs[2].Language)
	assert.False(t, res.Fallback)
}

func TestFindFAQsEmptyLanguageUsesDefault(t *testing.T) {
	faqs := &fakeFAQFinder{byLanguage: map[string][]model.FAQ{
		"en": {faq("Hours?", "en")},
	}}
	l := newLookup(&fakeServiceFinder{}, faqs)

	res, err := l.FindFAQs(context.Background(), model.FAQQuery{}, "", false, 3)
	require.NoError(t, err)
	assert.Len(t, res.FAQs, 1)
	assert.False(t, res.Fallback)
}
