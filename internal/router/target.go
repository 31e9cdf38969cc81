package router

import (
	"context"
	"strings"

	"github.com/AykhanUV/pstream-bot/internal/completion"
	"github.com/AykhanUV/pstream-bot/internal/heuristics"
	"github.com/AykhanUV/pstream-bot/internal/persona"
)

// gateAnswerRedirect re-targets processing onto the replied-to message when a
// helper writes "answer him/them" at the bot. The original event is never
// mutated; only the evaluation target changes.
func (e *Engine) gateAnswerRedirect(ctx context.Context, ev *evaluation) verdict {
	if ev.msg.ReplyToID == "" || !ev.msg.MentionsBot || !heuristics.IsAnswerRedirect(ev.msg.Content) {
		return vContinue
	}

	target, err := e.ops.FetchMessage(ctx, ev.msg.ChannelID, ev.msg.ReplyToID)
	if err != nil {
		e.log.Error("fetch redirect target failed", "error", err)
		return vDone
	}

	if err := e.ops.React(ctx, ev.msg.ChannelID, ev.msg.ID, answerAckEmoji); err != nil {
		e.log.Error("answer ack reaction failed", "error", err)
	}
	e.log.Info("answer redirect triggered", "helper", ev.msg.AuthorName, "target", target.AuthorName)

	// Content and author come from the target; channel context stays with
	// the trigger (REST fetches carry no channel name or thread flags).
	redirected := ev.msg
	redirected.ID = target.ID
	redirected.AuthorID = target.AuthorID
	redirected.AuthorName = target.AuthorName
	redirected.AuthorMention = target.AuthorMention
	redirected.AuthorBot = target.AuthorBot
	redirected.Content = target.Content
	redirected.ReplyToID = target.ReplyToID
	redirected.MentionsBot = false
	redirected.Embeds = target.Embeds
	redirected.Attachments = target.Attachments
	ev.target = redirected
	return vContinue
}

// gateRoastTrigger handles "roast him" replies: the roast persona is aimed at
// the replied-to message's author and the reply goes to that message, not the
// trigger. Terminal whatever happens; failures fall back to fixed lines.
func (e *Engine) gateRoastTrigger(ctx context.Context, ev *evaluation) verdict {
	if ev.msg.ReplyToID == "" || !ev.msg.MentionsBot || !heuristics.IsRoastTrigger(ev.msg.Content) {
		return vContinue
	}

	roastee, err := e.ops.FetchMessage(ctx, ev.msg.ChannelID, ev.msg.ReplyToID)
	if err != nil {
		e.log.Error("fetch roast target failed", "error", err)
		e.replyBestEffort(ctx, &ev.msg, roastFetchFailure)
		return vDone
	}

	if roastee.AuthorID == e.botID {
		e.replyBestEffort(ctx, &ev.msg, roastSelfRefusal)
		return vDone
	}

	e.log.Info("roast requested", "requester", ev.msg.AuthorName, "target", roastee.AuthorName)

	var roast string
	if e.generator != nil {
		ctx = completion.WithChannelID(ctx, ev.msg.ChannelID)
		roast, err = e.generator.Generate(ctx, persona.Roast(),
			persona.RoastUserPrompt(roastee.AuthorName, roastee.Content), nil)
	}
	if e.generator == nil || err != nil {
		if err != nil {
			e.log.Error("roast completion failed", "error", err)
		}
		e.replyBestEffort(ctx, &ev.msg, roastAPIFailure)
		return vDone
	}

	roast = strings.TrimSpace(strings.TrimPrefix(roast, persona.IgnoreMarker))
	if roast == "" {
		e.replyBestEffort(ctx, &ev.msg, roastEmptyReply)
		return vDone
	}

	if err := e.ops.Reply(ctx, roastee.ChannelID, roastee.ID, CleanDiscordFormatting(roast), roastee.AuthorID); err != nil {
		e.logDeliveryError(err, roastee.ID)
	}
	return vDone
}
