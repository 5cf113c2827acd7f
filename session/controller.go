// Package session orchestrates a single chat turn: reply generation with
// fallback to the canned bank, then mission progression from the original
// user message.
package session

import (
	"context"

	"github.com/saja-boys/jinwoo-server/logger"
	"github.com/saja-boys/jinwoo-server/mission"
	"github.com/saja-boys/jinwoo-server/types"
	"github.com/saja-boys/jinwoo-server/upstream"
)

// ValidationError marks caller mistakes: they surface as 400 and never reach
// an upstream call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// LogSink receives turn events for the dev-console stream.
type LogSink interface {
	BroadcastTurnLog(entry *types.TurnLog)
}

// Controller handles chat turns. It holds no per-session state; the mission
// index travels with every call, so concurrent turns cannot interfere.
type Controller struct {
	curriculum *mission.Curriculum
	bank       *mission.FallbackBank
	replier    upstream.Replier // nil when no provider is configured
	log        *logger.Logger
	sink       LogSink
}

// NewController creates a turn controller. replier may be nil; every turn is
// then answered from the fallback bank.
func NewController(curriculum *mission.Curriculum, bank *mission.FallbackBank, replier upstream.Replier) *Controller {
	return &Controller{
		curriculum: curriculum,
		bank:       bank,
		replier:    replier,
		log:        logger.GetLogger().WithField("component", "session"),
	}
}

// SetLogSink attaches the dev-console stream.
func (c *Controller) SetLogSink(sink LogSink) {
	c.sink = sink
}

// HandleTurn runs one turn. The reply comes from the upstream when it
// answers and from the fallback bank when it does not; mission completion is
// always computed from the original user message, so progression is
// independent of reply provenance.
func (c *Controller) HandleTurn(ctx context.Context, userMessage string, missionIndex int) (types.TurnOutcome, error) {
	if userMessage == "" {
		return types.TurnOutcome{}, &ValidationError{Msg: "Message is required"}
	}

	reply, fellBack := c.generateReply(ctx, userMessage, missionIndex)

	completed := c.curriculum.IsComplete(userMessage, missionIndex)
	next := c.curriculum.Advance(missionIndex, completed)

	outcome := types.TurnOutcome{
		Response:         reply,
		MissionCompleted: completed,
		NextMission:      next,
		// Suggestions are a frontend placeholder; the field stays an empty
		// list, not null.
		Suggestions: []string{},
	}

	c.emitTurnLog(missionIndex, userMessage, reply, fellBack)
	return outcome, nil
}

// generateReply asks the upstream and substitutes a canned variant on any
// failure. The bool reports whether the bank answered.
func (c *Controller) generateReply(ctx context.Context, userMessage string, missionIndex int) (string, bool) {
	if c.replier == nil {
		return c.bank.Pick(missionIndex), true
	}

	reply, err := c.replier.Reply(ctx, userMessage, missionIndex)
	if err != nil {
		c.log.Warnf("reply upstream failed, using fallback bank: %v", err)
		return c.bank.Pick(missionIndex), true
	}
	return reply, false
}

func (c *Controller) emitTurnLog(missionIndex int, userMessage, reply string, fellBack bool) {
	if c.sink == nil {
		return
	}
	logType := types.LogTypeTurn
	if fellBack {
		logType = types.LogTypeFallback
	}
	c.sink.BroadcastTurnLog(types.NewTurnLog(logType, missionIndex, userMessage, reply))
}
