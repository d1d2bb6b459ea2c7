// Package intentagent is a multi-tenant conversational agent. Each turn is
// classified by keyword intent, optionally enriched with retrieved context,
// answered by a fallback chain of language models and, when the model asks
// for it, completed by running a tool.
package intentagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Desarso/intentagent/intent"
	"github.com/Desarso/intentagent/metrics"
	"github.com/Desarso/intentagent/models"
	"github.com/Desarso/intentagent/stores"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Generator produces raw model text. *router.Router satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Retriever returns tenant-scoped context for a query, "" when nothing fits.
type Retriever interface {
	GetContext(ctx context.Context, tenantID, query string) (string, error)
}

type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)
}

var ErrInvalidTurn = errors.New("tenant_id, session_id and message are required")

// TurnResult holds exactly one of Chat or Tool.
type TurnResult struct {
	Intent intent.Intent
	Label  string
	Chat   *models.ChatEnvelope
	Tool   *models.ToolResultEnvelope
}

// Envelope returns whichever envelope the turn produced.
func (r TurnResult) Envelope() interface{} {
	if r.Tool != nil {
		return r.Tool
	}
	return r.Chat
}

func (r TurnResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

type Orchestrator struct {
	store        stores.SessionStore
	model        Generator
	classifier   *intent.Classifier
	retriever    Retriever
	tools        ToolExecutor
	declarations []models.FunctionDeclaration
	approver     *ToolApprover
	traces       stores.TraceStore
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	maxHistory   int

	systemPrompt string
	locks        *keyedMutex
}

type Option func(*Orchestrator)

func WithClassifier(c *intent.Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

func WithRetriever(r Retriever) Option {
	return func(o *Orchestrator) { o.retriever = r }
}

// WithTools enables tool calls. The declarations are listed in the system
// instruction.
func WithTools(exec ToolExecutor, declarations []models.FunctionDeclaration) Option {
	return func(o *Orchestrator) {
		o.tools = exec
		o.declarations = declarations
	}
}

func WithToolApprover(a *ToolApprover) Option {
	return func(o *Orchestrator) { o.approver = a }
}

func WithTraceStore(t stores.TraceStore) Option {
	return func(o *Orchestrator) { o.traces = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithHistoryLimit caps how many stored messages are serialized into the
// prompt. Zero keeps all of them.
func WithHistoryLimit(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxHistory = n
		}
	}
}

func NewOrchestrator(store stores.SessionStore, model Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		model:      model,
		classifier: intent.NewClassifier(),
		logger:     zerolog.Nop(),
		locks:      newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.systemPrompt = BuildSystemPrompt(o.declarations)
	return o
}

func (o *Orchestrator) SystemPrompt() string { return o.systemPrompt }

func (o *Orchestrator) Store() stores.SessionStore { return o.store }

func (o *Orchestrator) Traces() stores.TraceStore { return o.traces }

// HandleMessage runs one dialogue turn. Turns for the same tenant and
// session are serialized from the history read to the assistant append.
//
// Errors are returned only when the session store fails or the model chain
// is exhausted. Retrieval and tool failures are absorbed into the result.
func (o *Orchestrator) HandleMessage(ctx context.Context, tenantID, sessionID, message string) (TurnResult, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(sessionID) == "" || strings.TrimSpace(message) == "" {
		return TurnResult{}, ErrInvalidTurn
	}

	logger := o.logger.With().
		Str("tenant_id", tenantID).
		Str("session_id", sessionID).
		Str("request_id", RequestIDFromContext(ctx)).
		Logger()

	unlock, err := o.locks.Lock(ctx, sessionLockKey(tenantID, sessionID))
	if err != nil {
		return TurnResult{}, fmt.Errorf("wait for session: %w", err)
	}
	defer unlock()

	history, err := o.store.GetHistory(ctx, tenantID, sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load history: %w", err)
	}
	if err := o.store.AddMessage(ctx, tenantID, sessionID, models.RoleUser, message); err != nil {
		return TurnResult{}, fmt.Errorf("store user message: %w", err)
	}

	label, in := o.classifier.Match(message)
	logger = logger.With().Str("intent", string(in)).Str("rule", label).Logger()

	retrieved := ""
	if in == intent.RetrievalIntent && o.retriever != nil {
		retrieved, err = o.retriever.GetContext(ctx, tenantID, message)
		if err != nil {
			logger.Warn().Err(err).Msg("retrieval failed, continuing without context")
			retrieved = ""
		}
	}

	userPrompt := BuildUserPrompt(stores.SanitizeHistory(history, o.maxHistory), retrieved, message)

	start := time.Now()
	raw, err := o.model.Generate(ctx, o.systemPrompt, userPrompt)
	o.metrics.ObserveModel(time.Since(start))
	if err != nil {
		o.metrics.Turn(string(in), "model_error")
		logger.Error().Err(err).Msg("model chain failed")
		return TurnResult{}, fmt.Errorf("generate: %w", err)
	}

	result := TurnResult{Intent: in, Label: label}
	assistantContent := raw

	parsed := ParseToolCall(raw)
	switch parsed.Outcome {
	case ToolCall:
		env := o.runTool(ctx, logger, tenantID, sessionID, parsed.Call)
		encoded, err := json.Marshal(env)
		if err != nil {
			return TurnResult{}, fmt.Errorf("encode tool result: %w", err)
		}
		assistantContent = string(encoded)
		result.Tool = env
	case ParseError:
		logger.Debug().Err(parsed.Err).Msg("model output is not a tool call")
	}

	if result.Tool == nil {
		result.Chat = &models.ChatEnvelope{
			Type:      models.EnvelopeChatResponse,
			TenantID:  tenantID,
			SessionID: sessionID,
			RAGUsed:   retrieved != "",
			Response:  raw,
		}
	}

	if err := o.store.AddMessage(ctx, tenantID, sessionID, models.RoleAssistant, assistantContent); err != nil {
		return TurnResult{}, fmt.Errorf("store assistant message: %w", err)
	}

	outcome := "chat"
	if result.Tool != nil {
		outcome = "tool"
	}
	o.metrics.Turn(string(in), outcome)
	logger.Info().Str("outcome", outcome).Bool("rag_used", retrieved != "").Msg("turn completed")
	return result, nil
}

// runTool executes a parsed call. Every failure becomes a success:false
// envelope.
func (o *Orchestrator) runTool(ctx context.Context, logger zerolog.Logger, tenantID, sessionID string, call models.ToolCallEnvelope) *models.ToolResultEnvelope {
	env := &models.ToolResultEnvelope{
		Type:      models.EnvelopeToolResult,
		Tool:      call.Tool,
		TenantID:  tenantID,
		SessionID: sessionID,
	}

	start := time.Now()
	output, err := o.execute(ctx, call)
	elapsed := time.Since(start)
	env.ExecutionTimeMS = elapsed.Milliseconds()

	if err != nil {
		env.Success = false
		env.Error = err.Error()
		logger.Warn().Err(err).Str("tool", call.Tool).Msg("tool execution failed")
	} else {
		env.Success = true
		env.Data = map[string]interface{}{"result": output}
		logger.Info().Str("tool", call.Tool).Dur("duration", elapsed).Msg("tool executed")
	}
	o.metrics.ToolExecution(call.Tool, env.Success)
	o.recordTrace(ctx, logger, call, env, start)
	return env
}

func (o *Orchestrator) execute(ctx context.Context, call models.ToolCallEnvelope) (interface{}, error) {
	if o.tools == nil {
		return nil, fmt.Errorf("unknown tool: %q", call.Tool)
	}
	if err := o.approver.Approve(call.Tool, call.Arguments); err != nil {
		return nil, err
	}
	return o.tools.Execute(ctx, call.Tool, call.Arguments)
}

func (o *Orchestrator) recordTrace(ctx context.Context, logger zerolog.Logger, call models.ToolCallEnvelope, env *models.ToolResultEnvelope, start time.Time) {
	if o.traces == nil {
		return
	}
	trace := &stores.ToolTrace{
		TenantID:   env.TenantID,
		SessionID:  env.SessionID,
		RequestID:  RequestIDFromContext(ctx),
		TraceID:    uuid.NewString(),
		Tool:       call.Tool,
		Arguments:  call.Arguments,
		Success:    env.Success,
		Error:      env.Error,
		Timestamp:  start.UnixMilli(),
		DurationMS: env.ExecutionTimeMS,
	}
	if err := o.traces.SaveTrace(ctx, trace); err != nil {
		logger.Warn().Err(err).Str("tool", call.Tool).Msg("failed to record tool trace")
	}
}

type requestIDKey struct{}

// WithRequestID tags ctx with the id that logs and tool traces carry.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
