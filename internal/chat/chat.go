// Package chat forwards a conversation to the generative-text model on the
// server side, so the model credential never reaches the client.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/MrSnakeDoc/vault/internal/catalog"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/safety"
)

// Transcript roles as they travel over the wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// MemoryContext is appended to the system prompt for lifetime sessions.
// It is canned text; nothing is retrieved.
const MemoryContext = "\n[CONTEXT FROM MEMORY]: The user has mentioned feeling similar pressure in past entries. They usually find relief through creative work."

// FallbackReply is used when the model answers with no text.
const FallbackReply = "I'm here to listen. Could you tell me more about that?"

// Defaults for the Gemini OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-3-flash-preview"
)

// Turn is one transcript message.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is a chat exchange.
type Request struct {
	PersonaID string `json:"personaId"`
	Memory    bool   `json:"memory"`
	Messages  []Turn `json:"messages"`
}

// Reply is the outcome. Crisis means the safety filter fired and no model
// call was made.
type Reply struct {
	Text   string `json:"text,omitempty"`
	Crisis bool   `json:"crisis,omitempty"`
}

// Generator is the slice of the eino chat model this package calls.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Config selects the model endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Service builds prompts and calls the model.
type Service struct {
	gen      Generator
	personas *catalog.Catalog
}

// New builds the service. Without an API key the service still answers
// crisis checks but every model call fails with domain.ErrConfiguration.
func New(ctx context.Context, cfg Config, personas *catalog.Catalog) (*Service, error) {
	if cfg.APIKey == "" {
		return &Service{personas: personas}, nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}
	return &Service{gen: cm, personas: personas}, nil
}

// NewWithGenerator builds the service on an explicit model.
func NewWithGenerator(gen Generator, personas *catalog.Catalog) *Service {
	return &Service{gen: gen, personas: personas}
}

// Configured reports whether a model credential is present.
func (s *Service) Configured() bool {
	return s.gen != nil
}

// Reply runs the safety filter on the latest user turn and, if it passes,
// asks the model for the next turn.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	if last, ok := lastUserTurn(req.Messages); ok && safety.Detect(last) {
		return Reply{Crisis: true}, nil
	}
	if s.gen == nil {
		return Reply{}, domain.MissingCredential("GEMINI_API_KEY")
	}

	msg, err := s.gen.Generate(ctx, s.BuildMessages(req))
	if err != nil {
		return Reply{}, &domain.GatewayError{Provider: "chat", Err: err}
	}
	text := ""
	if msg != nil {
		text = strings.TrimSpace(msg.Content)
	}
	if text == "" {
		text = FallbackReply
	}
	return Reply{Text: text}, nil
}

// BuildMessages turns a request into model input: the persona's system
// prompt (plus memory context when asked) followed by the transcript.
// Unknown persona ids fall back to the default persona.
func (s *Service) BuildMessages(req Request) []*schema.Message {
	p, ok := s.personas.Get(req.PersonaID)
	if !ok {
		p, _ = s.personas.Get(domain.DefaultPersonaID)
	}
	system := p.Prompt
	if req.Memory {
		system += MemoryContext
	}

	out := make([]*schema.Message, 0, len(req.Messages)+1)
	out = append(out, schema.SystemMessage(system))
	for _, t := range req.Messages {
		switch t.Role {
		case RoleModel:
			out = append(out, schema.AssistantMessage(t.Text, nil))
		default:
			out = append(out, schema.UserMessage(t.Text))
		}
	}
	return out
}

func lastUserTurn(turns []Turn) (string, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return turns[i].Text, true
		}
	}
	return "", false
}
