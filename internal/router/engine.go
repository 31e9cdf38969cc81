package router

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/AykhanUV/pstream-bot/internal/cache"
	"github.com/AykhanUV/pstream-bot/internal/channelstate"
	"github.com/AykhanUV/pstream-bot/internal/completion"
	"github.com/AykhanUV/pstream-bot/internal/heuristics"
	"github.com/AykhanUV/pstream-bot/internal/persona"
)

const (
	muteAckEmoji        = "🤫"
	answerAckEmoji      = "👍"
	rateLimitedReply    = "I'm being rate limited right now. Please try again in a moment."
	roastSelfRefusal    = "I can't roast myself, my perfection is unassailable."
	roastAPIFailure     = "I wanted to roast them, but my brain just short-circuited. They're that unroastable."
	roastEmptyReply     = "I've got nothing. Their message is a void from which no humor can escape."
	roastFetchFailure   = "I tried to come up with a roast, but I think their message broke my sarcasm module."
	defaultHistoryLimit = 50
	defaultMinContent   = 3
)

// FAQSource provides the pre-rendered FAQ text for prompt injection.
type FAQSource interface {
	PromptText() string
}

// Config wires an Engine. Ops, State, Cache, and FAQ are required; a nil
// Generator means no completion backend is available and AI replies are
// disabled.
type Config struct {
	Ops       Ops
	State     *channelstate.Registry
	Cache     *cache.ReplyCache
	FAQ       FAQSource
	Generator completion.Generator
	Logger    *slog.Logger
	Tracer    trace.Tracer

	BotID   string
	BotName string

	AllowedChannels []string
	AllowedForums   []string
	AIChatChannelID string

	HistoryLimit  int
	MinContentLen int
	MaxImageBytes int64
	MuteDuration  time.Duration
}

// Engine runs the gate pipeline over inbound messages.
type Engine struct {
	ops       Ops
	state     *channelstate.Registry
	cache     *cache.ReplyCache
	faq       FAQSource
	generator completion.Generator
	log       *slog.Logger
	tracer    trace.Tracer

	botID   string
	botName string

	allowedChannels []string
	allowedForums   []string
	aiChatChannelID string

	historyLimit  int
	minContentLen int
	maxImageBytes int64
	muteDuration  time.Duration

	gates []gate
	now   func() time.Time
}

// verdict is a gate's decision: keep evaluating or stop here.
type verdict int

const (
	vContinue verdict = iota
	vDone
)

type gate struct {
	name string
	run  func(ctx context.Context, ev *evaluation) verdict
}

// evaluation is the per-message working state threaded through the gates.
type evaluation struct {
	msg    Message
	target Message // effective target; differs from msg after answer-redirect

	aiChat      bool
	pstreamOnly bool
	freeChat    bool
	roastMode   bool

	content string
	images  []completion.ImagePart
	history string

	systemPrompt string
	markerExempt bool

	reply  string
	cached bool
}

func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.MinContentLen <= 0 {
		cfg.MinContentLen = defaultMinContent
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 20 << 20
	}
	if cfg.MuteDuration <= 0 {
		cfg.MuteDuration = 5 * time.Minute
	}

	e := &Engine{
		ops:             cfg.Ops,
		state:           cfg.State,
		cache:           cfg.Cache,
		faq:             cfg.FAQ,
		generator:       cfg.Generator,
		log:             log,
		tracer:          tracer,
		botID:           cfg.BotID,
		botName:         cfg.BotName,
		allowedChannels: cfg.AllowedChannels,
		allowedForums:   cfg.AllowedForums,
		aiChatChannelID: cfg.AIChatChannelID,
		historyLimit:    cfg.HistoryLimit,
		minContentLen:   cfg.MinContentLen,
		maxImageBytes:   cfg.MaxImageBytes,
		muteDuration:    cfg.MuteDuration,
		now:             time.Now,
	}
	e.gates = []gate{
		{"self-filter", e.gateSelfFilter},
		{"channel-eligibility", e.gateChannelEligibility},
		{"mode-resolution", e.gateModeResolution},
		{"pstream-only-suppression", e.gatePStreamOnly},
		{"support-disabled", e.gateSupportDisabled},
		{"mute-suppression", e.gateMuteSuppression},
		{"thread-dedupe", e.gateThreadDedupe},
		{"mute-command", e.gateMuteCommand},
		{"answer-redirect", e.gateAnswerRedirect},
		{"roast-trigger", e.gateRoastTrigger},
		{"ai-disabled", e.gateAIDisabled},
		{"content-assembly", e.gateContentAssembly},
		{"minimum-content", e.gateMinimumContent},
		{"history-assembly", e.gateHistoryAssembly},
		{"persona-selection", e.gatePersonaSelection},
		{"cache-check", e.gateCacheCheck},
		{"completion", e.gateCompletion},
		{"delivery", e.gateDelivery},
	}
	return e
}

// Process runs one message through the pipeline. Exactly one of no-action, a
// utility reply (mute ack, roast, rate-limit notice), or a full AI reply
// happens.
func (e *Engine) Process(ctx context.Context, msg Message) {
	runID := uuid.NewString()
	ctx, span := e.tracer.Start(ctx, "router.Process", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("channel.id", msg.ChannelID),
		attribute.String("author.id", msg.AuthorID),
	))
	defer span.End()

	ev := &evaluation{msg: msg, target: msg}
	for _, g := range e.gates {
		if g.run(ctx, ev) == vDone {
			span.SetAttributes(attribute.String("terminal.gate", g.name))
			e.log.Debug("pipeline terminal", "gate", g.name, "run_id", runID,
				"channel", msg.ChannelName)
			return
		}
	}
	span.SetAttributes(attribute.String("terminal.gate", "end"))
}

func (e *Engine) gateSelfFilter(_ context.Context, ev *evaluation) verdict {
	if ev.msg.AuthorBot {
		return vDone
	}
	return vContinue
}

func (e *Engine) gateChannelEligibility(_ context.Context, ev *evaluation) verdict {
	if _, managed := e.state.Managed(ev.msg.ChannelID); managed {
		return vContinue
	}
	if e.isAllowedChannel(&ev.msg) {
		return vContinue
	}
	return vDone
}

func (e *Engine) isAllowedChannel(msg *Message) bool {
	if msg.ChannelID == e.aiChatChannelID {
		return true
	}
	if slices.Contains(e.allowedChannels, msg.ChannelName) {
		return true
	}
	return msg.IsThread && slices.Contains(e.allowedForums, msg.ParentName)
}

func (e *Engine) gateModeResolution(_ context.Context, ev *evaluation) verdict {
	mode := e.state.ResolveMode(ev.msg.ChannelID)
	ev.aiChat = ev.msg.ChannelID == e.aiChatChannelID && e.aiChatChannelID != ""
	ev.pstreamOnly = mode == channelstate.ModePStreamOnly
	ev.freeChat = mode == channelstate.ModeFreeChat
	ev.roastMode = mode == channelstate.ModeRoast
	return vContinue
}

func (e *Engine) gatePStreamOnly(_ context.Context, ev *evaluation) verdict {
	if !ev.pstreamOnly || ev.aiChat || ev.msg.MentionsBot {
		return vContinue
	}
	if heuristics.IsGenericOffTopicQuestion(ev.msg.Content) && !heuristics.IsPStreamRelevant(ev.msg.Content) {
		e.log.Debug("ignoring off-topic question in pstream-only channel",
			"channel", ev.msg.ChannelName)
		return vDone
	}
	return vContinue
}

func (e *Engine) gateSupportDisabled(_ context.Context, ev *evaluation) verdict {
	if ev.aiChat || ev.freeChat || ev.roastMode {
		return vContinue
	}
	if e.state.SupportDisabled(ev.msg.ChannelID) {
		return vDone
	}
	return vContinue
}

func (e *Engine) gateMuteSuppression(_ context.Context, ev *evaluation) verdict {
	if e.state.Muted(ev.msg.ChannelID, e.now()) {
		return vDone
	}
	return vContinue
}

func (e *Engine) gateThreadDedupe(_ context.Context, ev *evaluation) verdict {
	if ev.aiChat || !ev.msg.IsThread || ev.msg.MentionsBot {
		return vContinue
	}
	if e.state.ThreadResponded(ev.msg.ChannelID) {
		return vDone
	}
	return vContinue
}

func (e *Engine) gateMuteCommand(ctx context.Context, ev *evaluation) verdict {
	if !heuristics.IsMuteTrigger(ev.msg.Content) {
		return vContinue
	}
	if !ev.msg.MentionsBot && !e.isReplyToBot(ctx, &ev.msg) {
		return vContinue
	}
	e.state.Mute(ev.msg.ChannelID, e.now().Add(e.muteDuration))
	if err := e.ops.React(ctx, ev.msg.ChannelID, ev.msg.ID, muteAckEmoji); err != nil {
		e.log.Error("mute ack reaction failed", "error", err)
	}
	e.log.Info("channel muted", "channel", ev.msg.ChannelName, "duration", e.muteDuration)
	return vDone
}

func (e *Engine) isReplyToBot(ctx context.Context, msg *Message) bool {
	if msg.ReplyToID == "" {
		return false
	}
	replied, err := e.ops.FetchMessage(ctx, msg.ChannelID, msg.ReplyToID)
	if err != nil {
		return false
	}
	return replied.AuthorID == e.botID
}

func (e *Engine) gateAIDisabled(_ context.Context, ev *evaluation) verdict {
	if e.generator == nil {
		return vDone
	}
	return vContinue
}

func (e *Engine) gateContentAssembly(ctx context.Context, ev *evaluation) verdict {
	ev.content = effectiveContent(&ev.target)
	ev.images = e.collectImages(ctx, &ev.target)
	return vContinue
}

func (e *Engine) gateMinimumContent(_ context.Context, ev *evaluation) verdict {
	if len(ev.content) < e.minContentLen && len(ev.images) == 0 {
		return vDone
	}
	return vContinue
}

func (e *Engine) gateHistoryAssembly(ctx context.Context, ev *evaluation) verdict {
	history, err := e.renderHistory(ctx, ev.target.ChannelID)
	if err != nil {
		e.log.Error("history assembly failed", "error", err)
		return vDone
	}
	ev.history = history
	return vContinue
}

func (e *Engine) gatePersonaSelection(_ context.Context, ev *evaluation) verdict {
	faqText := e.faq.PromptText()
	switch {
	case ev.aiChat:
		ev.systemPrompt = persona.Conversational(faqText, ev.pstreamOnly)
	case ev.roastMode:
		ev.systemPrompt = persona.Roast()
	case ev.freeChat:
		ev.systemPrompt = persona.FreeChat()
	default:
		ev.systemPrompt = persona.Support(faqText, ev.pstreamOnly)
	}
	ev.markerExempt = ev.aiChat || ev.freeChat || ev.roastMode
	return vContinue
}

func (e *Engine) gateCacheCheck(_ context.Context, ev *evaluation) verdict {
	key := cache.Fingerprint(ev.target.ChannelID, ev.systemPrompt, ev.content)
	if reply, ok := e.cache.Lookup(key); ok {
		ev.reply = reply
		ev.cached = true
		e.log.Info("using cached response", "channel", ev.target.ChannelName)
	}
	return vContinue
}

func (e *Engine) gateCompletion(ctx context.Context, ev *evaluation) verdict {
	if ev.cached {
		return vContinue
	}

	ctx = completion.WithChannelID(ctx, ev.target.ChannelID)
	userPrompt := persona.UserPrompt(ev.target.ChannelName, ev.history, ev.content)

	reply, err := e.generator.Generate(ctx, ev.systemPrompt, userPrompt, ev.images)
	if err != nil {
		return e.handleCompletionError(ctx, ev, userPrompt, err)
	}

	e.cache.Store(cache.Fingerprint(ev.target.ChannelID, ev.systemPrompt, ev.content), reply)
	ev.reply = reply
	return vContinue
}

// handleCompletionError implements the failure policy: the channel limiter
// drops silently, a backend 429 produces one fixed apology, image failures
// get a single text-only retry, everything else is swallowed.
func (e *Engine) handleCompletionError(ctx context.Context, ev *evaluation, userPrompt string, err error) verdict {
	if errors.Is(err, completion.ErrChannelRateLimited) {
		e.log.Debug("channel request budget exhausted", "channel", ev.target.ChannelName)
		return vDone
	}
	if completion.IsRateLimited(err) {
		e.log.Warn("completion rate limited", "channel", ev.target.ChannelName, "error", err)
		e.replyBestEffort(ctx, &ev.target, rateLimitedReply)
		return vDone
	}

	if len(ev.images) > 0 && strings.Contains(err.Error(), "image") {
		e.log.Warn("image processing failed, retrying without images", "error", err)
		reply, retryErr := e.generator.Generate(ctx, ev.systemPrompt, userPrompt, nil)
		if retryErr != nil {
			e.log.Error("text-only retry failed", "error", retryErr)
			return vDone
		}
		ev.reply = reply
		ev.images = nil
		return vContinue
	}

	switch {
	case completion.IsTimeout(err):
		e.log.Error("completion timed out", "channel", ev.target.ChannelName, "error", err)
	case completion.IsMalformed(err):
		e.log.Error("completion response malformed", "channel", ev.target.ChannelName, "error", err)
	default:
		e.log.Error("completion failed", "channel", ev.target.ChannelName, "error", err)
	}
	return vDone
}

func (e *Engine) gateDelivery(ctx context.Context, ev *evaluation) verdict {
	outcome := InterpretCompletion(ev.reply, ev.markerExempt)
	if !outcome.Respond {
		e.log.Debug("completion declined to respond", "channel", ev.target.ChannelName)
		return vDone
	}

	text := CleanDiscordFormatting(outcome.Text)
	kind := footerDefault
	switch {
	case ev.cached:
		kind = footerCached
	case ev.aiChat:
		kind = footerAIChat
	}
	final := text + disclosureFooter(kind, ev.target.AuthorMention)

	if !ev.cached {
		if err := e.ops.Typing(ctx, ev.target.ChannelID); err != nil {
			e.log.Debug("typing indicator failed", "error", err)
		}
	}

	err := e.ops.Reply(ctx, ev.target.ChannelID, ev.target.ID, final, ev.target.AuthorID)
	if err != nil {
		e.logDeliveryError(err, ev.target.ID)
		return vDone
	}

	if ev.target.IsThread {
		e.state.MarkThreadResponded(ev.target.ChannelID)
	}
	e.log.Info("response sent",
		"channel", ev.target.ChannelName, "user", ev.target.AuthorName, "cached", ev.cached)
	return vDone
}

// replyBestEffort sends a fixed utility reply, swallowing delivery failures.
func (e *Engine) replyBestEffort(ctx context.Context, target *Message, text string) {
	if err := e.ops.Reply(ctx, target.ChannelID, target.ID, text, target.AuthorID); err != nil {
		e.logDeliveryError(err, target.ID)
	}
}

func (e *Engine) logDeliveryError(err error, messageID string) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrGone) {
		e.log.Debug("could not reply, message or channel gone", "message_id", messageID)
		return
	}
	e.log.Error("sending reply failed", "message_id", messageID, "error", err)
}
