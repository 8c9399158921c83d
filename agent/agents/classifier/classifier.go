package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

type classifierImpl struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

type classifierLLMOutput struct {
	Label string `json:"label"`
}

// New builds the label-mode classifier on a chat model. The system prompt
// fixes the label vocabulary; the graph parses the JSON answer.
func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Classifier, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: classifier prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, utterance string, labels []string) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return "", fmt.Errorf("%w: utterance is required", contractx.ErrValidation)
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("%w: allowed labels are required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"utterance":      utterance,
		"allowed_labels": labels,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return "", fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}

	label := strings.ToLower(strings.TrimSpace(out.Label))
	for _, allowed := range labels {
		if label == allowed {
			return label, nil
		}
	}
	return "", fmt.Errorf("%w: label %q is not in the allowed set", contractx.ErrSchemaViolation, label)
}
