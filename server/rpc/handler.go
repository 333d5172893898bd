// Package rpc exposes agents over an asynchronous JSON-RPC HTTP endpoint:
// the call is acknowledged immediately with a processing-status task handle
// and the agent's reply is delivered later to a caller-supplied callback
// URL. There is exactly one synchronous response per call and at most one
// callback delivery; the task handle is not re-queryable.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/obinna/neargent/agent/contract"
	webhookx "github.com/obinna/neargent/pkg/webhook"
)

const processingText = "Agent is processing your request..."

// CallbackPoster delivers a completed result to a callback URL.
type CallbackPoster interface {
	Post(ctx context.Context, callbackURL string, msg webhookx.Message) error
}

// Deps are the handler's collaborators. Agents is the explicit registry the
// path's agentId is resolved against.
type Deps struct {
	Agents     map[string]contractx.Agent
	Dispatcher *Dispatcher
	Callbacks  CallbackPoster
	Memory     contractx.MemoryStore
}

type Handler struct {
	agents     map[string]contractx.Agent
	dispatcher *Dispatcher
	callbacks  CallbackPoster
	memory     contractx.MemoryStore

	now   func() time.Time
	newID func() string
}

func NewHandler(deps Deps) (*Handler, error) {
	if len(deps.Agents) == 0 {
		return nil, errors.New("at least one agent is required")
	}
	if deps.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if deps.Callbacks == nil {
		return nil, errors.New("callback poster is required")
	}

	memory := deps.Memory
	if memory == nil {
		memory = noopMemory{}
	}

	return &Handler{
		agents:     deps.Agents,
		dispatcher: deps.Dispatcher,
		callbacks:  deps.Callbacks,
		memory:     memory,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/a2a/agent/:agentId", h.handleAgentCall)
}

func (h *Handler) handleAgentCall(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.JSON(http.StatusInternalServerError, errorResponse(nil, codeInternalError, "Internal error", gin.H{"details": fmt.Sprint(r)}))
		}
	}()

	var env envelope
	if err := json.NewDecoder(c.Request.Body).Decode(&env); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(nil, codeInternalError, "Internal error", gin.H{"details": err.Error()}))
		return
	}

	if err := env.validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(env.ID, codeInvalidRequest, err.Error(), nil))
		return
	}

	agentID := c.Param("agentId")
	agent, ok := h.agents[agentID]
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse(env.ID, codeAgentNotFound, fmt.Sprintf("Agent '%s' not found", agentID), nil))
		return
	}

	turns := env.Params.turns()

	taskID := env.Params.TaskID
	if taskID == "" {
		taskID = h.newID()
	}
	contextID := env.Params.ContextID
	if contextID == "" {
		contextID = h.newID()
	}
	responseURL := env.Params.Metadata.ResponseURL

	// The background unit is detached from the request: it must not inherit
	// the request context, whose lifetime ends with the response below.
	h.dispatcher.Go(func() {
		h.processAsync(context.Background(), agentID, agent, contextID, turns, responseURL)
	})

	c.JSON(http.StatusOK, successResponse(env.ID, taskHandle{
		ID:        taskID,
		ContextID: contextID,
		Status: taskStatus{
			State:     "processing",
			Timestamp: h.now().UTC().Format(time.RFC3339),
			Message: statusMessage{
				Role:  contractx.RoleSystem,
				Parts: []statusPart{{Kind: "text", Text: processingText}},
				Kind:  "message",
			},
		},
	}))
}

// processAsync runs after the synchronous acknowledgment has been sent; its
// outcome is only ever visible via the callback delivery or the logs.
func (h *Handler) processAsync(
	ctx context.Context,
	agentID string,
	agent contractx.Agent,
	contextID string,
	turns []contractx.Turn,
	responseURL string,
) {
	turns = h.withHistory(ctx, contextID, turns)

	text, err := agent.Generate(ctx, turns)
	if err != nil {
		log.Error().Err(err).Str("agent", agentID).Msg("async agent processing failed")
		if responseURL != "" {
			h.deliver(ctx, responseURL, webhookx.Message{
				Text: fmt.Sprintf("Error while processing: %s", err.Error()),
			})
		}
		return
	}

	h.remember(ctx, contextID, turns, text)

	if responseURL == "" {
		log.Info().Str("agent", agentID).Str("context_id", contextID).Msg("no callback url supplied; discarding result")
		return
	}

	h.deliver(ctx, responseURL, webhookx.Message{
		ResponseType: "in_channel",
		Text:         text,
	})
	log.Info().Str("agent", agentID).Str("context_id", contextID).Msg("completed async processing")
}

// withHistory prepends stored turns for the context ahead of the incoming
// ones. Memory is best-effort: a read failure only logs.
func (h *Handler) withHistory(ctx context.Context, contextID string, turns []contractx.Turn) []contractx.Turn {
	history, err := h.memory.RecentTurns(ctx, contextID, 10)
	if err != nil {
		log.Warn().Err(err).Str("context_id", contextID).Msg("failed to load conversation history")
		return turns
	}
	if len(history) == 0 {
		return turns
	}
	return append(history, turns...)
}

func (h *Handler) remember(ctx context.Context, contextID string, turns []contractx.Turn, reply string) {
	if len(turns) > 0 {
		last := turns[len(turns)-1]
		if err := h.memory.AppendTurn(ctx, contextID, last); err != nil {
			log.Warn().Err(err).Str("context_id", contextID).Msg("failed to persist user turn")
		}
	}
	err := h.memory.AppendTurn(ctx, contextID, contractx.Turn{Role: contractx.RoleAssistant, Content: reply})
	if err != nil {
		log.Warn().Err(err).Str("context_id", contextID).Msg("failed to persist assistant turn")
	}
}

func (h *Handler) deliver(ctx context.Context, responseURL string, msg webhookx.Message) {
	if err := h.callbacks.Post(ctx, responseURL, msg); err != nil {
		log.Error().Err(err).Str("callback_url", responseURL).Msg("callback delivery failed")
	}
}

type noopMemory struct{}

func (noopMemory) AppendTurn(context.Context, string, contractx.Turn) error {
	return nil
}

func (noopMemory) RecentTurns(context.Context, string, int) ([]contractx.Turn, error) {
	return nil, nil
}
