package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

// Responder generates the persona reply for general conversation, carrying
// the session's bounded history so small talk stays coherent.
type Responder struct {
	client       *openaisdk.Client
	model        string
	temperature  float64
	systemPrompt string
}

func New(client *openaisdk.Client, model, systemPrompt string, temperature float32) (*Responder, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("responder model is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: persona prompt", contractx.ErrPromptMissing)
	}
	return &Responder{
		client:       client,
		model:        strings.TrimSpace(model),
		temperature:  float64(temperature),
		systemPrompt: strings.TrimSpace(systemPrompt),
	}, nil
}

func (r *Responder) Reply(ctx context.Context, history []contractx.ChatTurn, userMessage string) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openaisdk.SystemMessage(r.systemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openaisdk.UserMessage(userMessage))

	resp, err := r.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(r.model),
		Messages:    messages,
		Temperature: openaisdk.Float(r.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: responder invoke: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: responder returned no choices", contractx.ErrSchemaViolation)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: responder message is empty", contractx.ErrSchemaViolation)
	}
	return reply, nil
}
