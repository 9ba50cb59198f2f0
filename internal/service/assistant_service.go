package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/pkg/ai"
)

// AssistantMode selects the system prompt of the course assistant.
type AssistantMode string

const (
	AssistantModeChat    AssistantMode = "none"
	AssistantModeQuiz    AssistantMode = "quiz"
	AssistantModeExplain AssistantMode = "explain"
)

const maxAssistantContext = 12000

// ParseAssistantMode rejects values outside the closed set. Empty means chat.
func ParseAssistantMode(value string) (AssistantMode, error) {
	switch AssistantMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", AssistantModeChat:
		return AssistantModeChat, nil
	case AssistantModeQuiz:
		return AssistantModeQuiz, nil
	case AssistantModeExplain:
		return AssistantModeExplain, nil
	default:
		return "", invalidInput("unknown assistant action")
	}
}

// AssistantService turns a course conversation into a streamed AI completion.
type AssistantService interface {
	Stream(ctx context.Context, userID string, req dto.AssistantChatRequest) (ai.Stream, error)
}

type assistantService struct {
	gateway ai.Gateway
	logger  zerolog.Logger
}

// NewAssistantService constructs the course assistant.
func NewAssistantService(gateway ai.Gateway, logger zerolog.Logger) AssistantService {
	return &assistantService{
		gateway: gateway,
		logger:  logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) Stream(ctx context.Context, userID string, req dto.AssistantChatRequest) (ai.Stream, error) {
	if len(req.Messages) == 0 {
		return nil, invalidInput("messages are required")
	}
	mode, err := ParseAssistantMode(req.Action)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, ai.ErrUnavailable
	}

	messages := make([]ai.Message, 0, len(req.Messages)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: buildSystemPrompt(mode, req)})
	for _, message := range req.Messages {
		content := strings.TrimSpace(message.Content)
		if content == "" {
			continue
		}
		role := ai.RoleUser
		if message.Role == ai.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: content})
	}
	if len(messages) == 1 {
		return nil, invalidInput("messages are required")
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("mode", string(mode)).
		Int("turns", len(messages)-1).
		Msg("assistant request")

	return s.gateway.StreamChat(ctx, ai.ChatRequest{Messages: messages})
}

func buildSystemPrompt(mode AssistantMode, req dto.AssistantChatRequest) string {
	builder := strings.Builder{}
	builder.WriteString("You are Lumora, a patient study assistant for university students. ")
	builder.WriteString("Answer with clear structure and keep to the course material when it is provided.")

	courseContext := truncateRunes(strings.TrimSpace(req.CourseContext), maxAssistantContext)
	if courseContext != "" {
		builder.WriteString("\n\n## Course context\n")
		builder.WriteString(courseContext)
	}

	material := strings.TrimSpace(req.FileName)
	if material != "" {
		builder.WriteString("\n\n## Study material\n")
		builder.WriteString(material)
		if url := strings.TrimSpace(req.FileURL); url != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", url))
		}
	}

	switch mode {
	case AssistantModeQuiz:
		builder.WriteString("\n\n## Task\nWrite a short quiz of five multiple-choice questions on the material above. ")
		builder.WriteString("Give four options per question and list the answers with one-line explanations at the end.")
	case AssistantModeExplain:
		builder.WriteString("\n\n## Task\nExplain the material above step by step for a first-year student. ")
		builder.WriteString("Start with the key idea, then work through an example.")
	}

	return builder.String()
}
