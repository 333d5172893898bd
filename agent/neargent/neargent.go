// Package neargent implements the nearby-help conversational agent: a
// tool-planning pass that turns the conversation into a places tool call,
// tool execution, and a finalize pass that writes the user-facing reply.
package neargent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/obinna/neargent/agent/contract"
	llmx "github.com/obinna/neargent/agent/llm"
	toolx "github.com/obinna/neargent/agent/tool"
)

var _ contractx.Agent = (*Agent)(nil)

type Agent struct {
	planner   compose.Runnable[map[string]any, *schema.Message]
	finalizer compose.Runnable[map[string]any, *schema.Message]
	exec      toolx.Executor
	allowed   map[string]struct{}
}

func New(ctx context.Context, cfg llmx.Config, systemPrompt string, exec toolx.Executor) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, fmt.Errorf("%w: tool executor is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrValidation)
	}

	plannerModelCfg := cfg.OpenRouterFor(llmx.RolePlanner)
	plannerModel, err := plannerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create planner model: %v", contractx.ErrModelInvoke, err)
	}

	tools := toolx.Infos()
	toolModel, err := plannerModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}
	planner, err := compilePlanningGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, err
	}

	finalModelCfg := cfg.OpenRouterFor(llmx.RoleFinalizer)
	finalModel, err := finalModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create finalizer model: %v", contractx.ErrModelInvoke, err)
	}
	finalizer, err := compileFinalizeGraph(ctx, finalModel, systemPrompt)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowed[t.Name] = struct{}{}
	}

	return &Agent{
		planner:   planner,
		finalizer: finalizer,
		exec:      exec,
		allowed:   allowed,
	}, nil
}

// Generate runs the plan → execute → finalize pipeline over the
// conversation. When the planning model asks a clarifying question instead
// of calling a tool, that question is the reply.
func (a *Agent) Generate(ctx context.Context, turns []contractx.Turn) (string, error) {
	transcript := renderTranscript(turns)

	msg, err := a.plan(ctx, transcript)
	if err != nil {
		return "", err
	}

	reqs, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return "", err
	}

	if len(reqs) == 0 {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return "", fmt.Errorf("%w: planner produced neither tool calls nor a reply", contractx.ErrSchemaViolation)
		}
		return content, nil
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if _, ok := a.allowed[req.Tool]; !ok {
			return "", fmt.Errorf("%w: tool=%s is not allowed", contractx.ErrSchemaViolation, req.Tool)
		}
		ensureCategories(&req, transcript)

		result, err := a.exec(ctx, req.Tool, req.Args)
		if err != nil {
			return "", fmt.Errorf("execute tool %s: %w", req.Tool, err)
		}
		results = append(results, result)
	}

	return a.finalize(ctx, transcript, results)
}

func (a *Agent) plan(ctx context.Context, transcript string) (*schema.Message, error) {
	input, err := json.Marshal(map[string]any{
		"mode":         "act",
		"conversation": transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal planning payload: %v", contractx.ErrValidation, err)
	}

	msg, err := a.planner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return nil, fmt.Errorf("%w: planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty planning response", contractx.ErrSchemaViolation)
	}
	return msg, nil
}

func (a *Agent) finalize(ctx context.Context, transcript string, results []contractx.ToolResult) (string, error) {
	input, err := json.Marshal(map[string]any{
		"mode":         "finalize",
		"conversation": transcript,
		"tool_results": results,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal finalize payload: %v", contractx.ErrValidation, err)
	}

	msg, err := a.finalizer.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return "", fmt.Errorf("%w: finalize invoke: %v", contractx.ErrModelInvoke, err)
	}

	reply := ""
	if msg != nil {
		reply = strings.TrimSpace(msg.Content)
	}
	if reply == "" {
		return "", fmt.Errorf("%w: finalizer reply is empty", contractx.ErrSchemaViolation)
	}
	return reply, nil
}

// ensureCategories backfills a places call whose categories the model left
// out using the deterministic keyword table over the conversation text.
func ensureCategories(req *contractx.ToolRequest, transcript string) {
	if req.Tool != toolx.ToolGeoapifyPlaces {
		return
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}
	if hasCategories(req.Args) {
		return
	}
	if inferred := InferCategories(transcript); len(inferred) > 0 {
		req.Args["categories"] = inferred
	}
}

func hasCategories(args map[string]any) bool {
	raw, ok := args["categories"]
	if !ok || raw == nil {
		return false
	}
	switch typed := raw.(type) {
	case []string:
		return len(typed) > 0
	case []any:
		return len(typed) > 0
	default:
		return false
	}
}

func renderTranscript(turns []contractx.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		role := turn.Role
		if role == "" {
			role = contractx.RoleUser
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
