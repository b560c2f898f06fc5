package summarization

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-patrol/logger"
	"go-patrol/types"
)

const maxListed = 5

// ChatClient is the part of the OpenAI client the narrator uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAINarrator writes a short executive summary from aggregate numbers.
// Incident descriptions are never sent.
type OpenAINarrator struct {
	client ChatClient
	model  string
	log    logger.Logger
}

func NewOpenAINarrator(client ChatClient, model string, log logger.Logger) *OpenAINarrator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAINarrator{client: client, model: model, log: log}
}

// Narrate asks the chat model for a 2-3 sentence summary of agg.
func (n *OpenAINarrator) Narrate(ctx context.Context, agg types.AggregationResult, period string) (string, error) {
	if agg.TotalCount == 0 {
		return "", nil
	}

	prompt := BuildPrompt(agg, period)
	n.log.Debug("Requesting narrative", logger.String("period", period), logger.Int("prompt_len", len(prompt)))

	resp, err := n.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: n.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a police crime analyst who writes concise, factual executive summaries for a provincial director.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   180,
			N:           1,
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("openai returned empty response or choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt renders the statistics the model may use.
func BuildPrompt(agg types.AggregationResult, period string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a 2-3 sentence executive summary of patrol incidents for %s using only these figures.\n\n", period)
	fmt.Fprintf(&b, "Total incidents: %d\n", agg.TotalCount)
	writeRanked(&b, "Top categories", agg.TopTypes)
	writeRanked(&b, "Top municipalities", agg.TopMunicipalities)
	if agg.Hotspot != types.HotspotNone {
		fmt.Fprintf(&b, "Hotspot: %s\n", agg.Hotspot)
	}
	if agg.PeakTimeOfDay != types.HotspotNone {
		fmt.Fprintf(&b, "Peak time of day: %s\n", agg.PeakTimeOfDay)
	}
	if t := agg.Trend; t.Direction != types.TrendInsufficient {
		fmt.Fprintf(&b, "Trend: %s (%d in %s, %d in %s)\n", t.Direction, t.PreviousCount, t.PreviousMonth, t.CurrentCount, t.CurrentMonth)
	}
	b.WriteString("\nSummary:")
	return b.String()
}

func writeRanked(b *strings.Builder, title string, ranked []types.RankedCount) {
	if len(ranked) == 0 {
		return
	}
	parts := make([]string, 0, maxListed)
	for i, rc := range ranked {
		if i == maxListed {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %d (%.1f%%)", rc.Label, rc.Count, rc.Percent))
	}
	fmt.Fprintf(b, "%s: %s\n", title, strings.Join(parts, ", "))
}
