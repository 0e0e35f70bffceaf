package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// AIService proposes subtask breakdowns for a task. Suggestions are only
// returned to the caller, never persisted automatically.
type AIService struct {
	client *openai.Client
}

// SuggestedSubtask is a single proposed checklist item.
type SuggestedSubtask struct {
	Text string `json:"text"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestSubtasks asks the model to break a task description into concrete
// checklist items.
func (s *AIService) SuggestSubtasks(ctx context.Context, taskText string) ([]SuggestedSubtask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a project planning assistant. Break the following task into
concrete, independently checkable subtasks.

Task:
%s

Return a JSON array of subtasks in this exact shape:
[
  {"text": "short imperative description of one subtask"}
]

Rules:
- Return between 1 and 10 subtasks.
- Each subtask must be a single actionable step.
- Return only JSON, no explanation text.`, taskText)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var subtasks []SuggestedSubtask
	if err := json.Unmarshal([]byte(content), &subtasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return subtasks, nil
}
