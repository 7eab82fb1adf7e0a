// Package pipeline implements the per-message processing sequence: language
// detection, translation in, intent classification, catalog resolution,
// translation out, persistence and delivery. Every stage is independently
// fallible with exactly one defined fallback, so a message is always
// answered.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/internal/catalog"
	"github.com/dkl-health/chatbot-backend/internal/events"
	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/internal/nlp"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
	"github.com/dkl-health/chatbot-backend/pkg/metrics"
)

// Translator is the translation gateway the pipeline degrades around.
type Translator interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Classifier assigns an intent label to a message.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Catalog is the read-only lookup surface.
type Catalog interface {
	FindServices(ctx context.Context, query string, limit int) ([]model.Service, error)
	FindFAQs(ctx context.Context, q model.FAQQuery, language string, multi bool, limit int) (*catalog.FAQResult, error)
}

// ConversationAppender persists a user/bot turn.
type ConversationAppender interface {
	AppendTurn(ctx context.Context, sessionID, userText, botText string) error
}

// TurnPublisher fans a completed turn out to downstream consumers.
type TurnPublisher interface {
	PublishTurn(ctx context.Context, turn *events.TurnEvent) error
}

// Outcome is the transient record of one message's processing. It exists only
// for the duration of the run.
type Outcome struct {
	Language  string
	Intent    string
	Assembled string
	Final     string
	Notices   []string
}

// Config wires a Pipeline.
type Config struct {
	Translator      Translator
	Classifier      Classifier
	Catalog         Catalog
	Conversations   ConversationAppender
	Events          TurnPublisher // optional
	DefaultLanguage string
	CallTimeout     time.Duration
	Logger          *logger.Logger
}

// Pipeline orchestrates the fixed-shape message-handling sequence.
type Pipeline struct {
	translator      Translator
	classifier      Classifier
	catalog         Catalog
	conversations   ConversationAppender
	events          TurnPublisher
	defaultLanguage string
	callTimeout     time.Duration
	logger          *logger.Logger
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	defaultLanguage := cfg.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	callTimeout := cfg.CallTimeout
	if callTimeout == 0 {
		callTimeout = 15 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Global()
	}

	return &Pipeline{
		translator:      cfg.Translator,
		classifier:      cfg.Classifier,
		catalog:         cfg.Catalog,
		conversations:   cfg.Conversations,
		events:          cfg.Events,
		defaultLanguage: defaultLanguage,
		callTimeout:     callTimeout,
		logger:          log,
	}
}

// Keyword override rules, evaluated in order before trusting the classifier's
// label. An intentional heuristic kept from the original behavior: a message
// mentioning a test or service goes to the service branch even when the
// classifier says otherwise.
var overrideRules = []struct {
	substring string
	intent    string
}{
	{"test", nlp.IntentService},
	{"service", nlp.IntentService},
}

func applyOverrides(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range overrideRules {
		if strings.Contains(lower, rule.substring) {
			return rule.intent
		}
	}
	return ""
}

// Process runs one inbound message through every stage and returns the text
// to deliver. It never returns an empty reply: each stage failure maps to its
// defined fallback and only a genuinely unanticipated fault yields the fixed
// apology.
func (p *Pipeline) Process(ctx context.Context, sessionID, text string) (final string) {
	start := time.Now()
	log := p.logger.WithSession(sessionID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", zap.Any("panic", r))
			final = apologyResponse
		}
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
		metrics.MessagesTotal.WithLabelValues(string(model.SenderUser)).Inc()
		metrics.MessagesTotal.WithLabelValues(string(model.SenderBot)).Inc()
	}()

	out := &Outcome{Language: p.defaultLanguage}

	// Detect
	lang, err := p.detect(ctx, text)
	if err != nil {
		out.note("detect", fmt.Sprintf("language detection failed, assuming %s", p.defaultLanguage))
		log.Warn("language detection failed", zap.Error(err))
	} else {
		out.Language = lang
	}

	// Translate-in
	classifyText := text
	if out.Language != p.defaultLanguage {
		translated, err := p.translate(ctx, text, out.Language, p.defaultLanguage)
		if err != nil {
			out.note("translate_in", "could not translate your message, answered from the original text")
			log.Warn("inbound translation failed", zap.Error(err))
		} else {
			classifyText = translated
		}
	}

	// Classify
	intent, err := p.classify(ctx, classifyText)
	if err != nil {
		out.note("classify", "intent classification unavailable")
		log.Warn("intent classification failed", zap.Error(err))
		intent = ""
	}
	out.Intent = intent

	// Resolve
	assembled, branch, err := p.resolve(ctx, classifyText, intent, out.Language)
	if err != nil {
		out.note("resolve", "data lookup failed")
		log.Error("resolution failed", zap.Error(err), zap.String("intent", intent))
		assembled = serverErrorResponse
	}
	out.Assembled = assembled

	// Translate-out
	if out.Language != p.defaultLanguage {
		translated, err := p.translate(ctx, assembled, p.defaultLanguage, out.Language)
		if err != nil {
			out.note("translate_out", "could not translate the reply")
			assembled = assembled + "\n\n" + untranslatedSuffix
			log.Warn("outbound translation failed", zap.Error(err))
		} else {
			assembled = translated
		}
	}

	// Finalize
	out.Final = appendNotices(assembled, out.Notices)

	// Persist, best effort: history is an auxiliary record and must never
	// block delivery.
	if err := p.conversations.AppendTurn(ctx, sessionID, text, out.Final); err != nil {
		metrics.RecordStageFailure("persist")
		log.Warn("failed to persist conversation turn", zap.Error(err))
	}

	if p.events != nil {
		turn := &events.TurnEvent{
			SessionID: sessionID,
			UserText:  text,
			BotText:   out.Final,
			Intent:    out.Intent,
			Language:  out.Language,
			Timestamp: time.Now().UTC(),
		}
		if err := p.events.PublishTurn(ctx, turn); err != nil {
			log.Warn("failed to publish turn event", zap.Error(err))
		}
	}

	metrics.PipelineRunsTotal.WithLabelValues(branch).Inc()
	log.Info("message processed",
		zap.String("language", out.Language),
		zap.String("intent", out.Intent),
		zap.String("branch", branch),
		zap.Int("notices", len(out.Notices)),
		zap.Duration("duration", time.Since(start)),
	)

	return out.Final
}

// resolve picks the data source for the intent and assembles the reply. A
// lookup error or panic here degrades to the fixed server-error text in the
// caller; it never aborts the run.
func (p *Pipeline) resolve(ctx context.Context, text, intent, language string) (response, branch string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolution panic: %v", r)
		}
	}()

	if override := applyOverrides(text); override != "" {
		intent = override
	}

	switch intent {
	case nlp.IntentService:
		services, err := p.catalog.FindServices(ctx, text, catalog.DefaultServiceLimit)
		if err != nil {
			return "", "service", err
		}
		return renderServices(services), "service", nil

	case nlp.IntentFAQ:
		result, err := p.catalog.FindFAQs(ctx, model.FAQQuery{Keyword: text}, language, false, catalog.DefaultFAQLimit)
		if err != nil {
			return "", "faq", err
		}
		return renderFAQs(result.FAQs), "faq", nil

	default:
		return renderIntentFallback(intent), "other", nil
	}
}

// The remote calls are individually bounded so one slow provider cannot
// stall the session's task indefinitely. A timeout degrades exactly like the
// stage's defined failure.

func (p *Pipeline) detect(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.translator.DetectLanguage(ctx, text)
}

func (p *Pipeline) translate(ctx context.Context, text, from, to string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.translator.Translate(ctx, text, from, to)
}

func (p *Pipeline) classify(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.classifier.Classify(ctx, text)
}

func (o *Outcome) note(stage, notice string) {
	metrics.RecordStageFailure(stage)
	o.Notices = append(o.Notices, notice)
}
