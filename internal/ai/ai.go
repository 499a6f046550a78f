// Package ai provides optional AI-generated commit messages and pull
// request bodies via the OpenAI API. Generation never blocks a sync: any
// failure falls back to the caller's static template.
package ai

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
)

const (
	// DefaultModel balances cost and quality for short sync summaries.
	DefaultModel = openai.ChatModelGPT4oMini

	// DefaultTimeout bounds one generation call.
	DefaultTimeout = 30 * time.Second

	systemPrompt = "You write concise git commit messages and pull request " +
		"descriptions for automated file synchronization between repositories. " +
		"Respond with the requested text only, no preamble."
)

// Generator produces commit and PR text for a sync run.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Enabled reports whether generation is configured.
	Enabled() bool

	// CommitMessage generates a one-line commit message for the changed files.
	CommitMessage(ctx context.Context, sourceRepo string, files []string) (string, error)

	// PRBody generates a pull request body describing the sync.
	PRBody(ctx context.Context, sourceRepo string, files []string) (string, error)
}

// NewGenerator creates a generator backed by the OpenAI API, or a disabled
// generator when no API key is configured.
func NewGenerator(apiKey string, logger *logrus.Logger) Generator {
	if apiKey == "" {
		return disabledGenerator{}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openAIGenerator{
		client: client,
		model:  DefaultModel,
		logger: logger,
	}
}

type openAIGenerator struct {
	client openai.Client
	model  openai.ChatModel
	logger *logrus.Logger
}

func (g *openAIGenerator) Enabled() bool { return true }

func (g *openAIGenerator) CommitMessage(ctx context.Context, sourceRepo string, files []string) (string, error) {
	prompt := "Write a single-line conventional commit message for syncing these files from " +
		sourceRepo + ":\n" + fileList(files)
	return g.generate(ctx, prompt)
}

func (g *openAIGenerator) PRBody(ctx context.Context, sourceRepo string, files []string) (string, error) {
	prompt := "Write a short pull request body (markdown, max 10 lines) for an automated sync of these files from " +
		sourceRepo + ":\n" + fileList(files)
	return g.generate(ctx, prompt)
}

func (g *openAIGenerator) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", appErrors.WrapWithContext(err, "generate text")
	}
	if len(resp.Choices) == 0 {
		return "", appErrors.WrapWithContext(appErrors.ErrSyncFailed, "generate text: empty response")
	}

	g.logger.WithFields(logrus.Fields{
		"model":       g.model,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Generated sync text")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func fileList(files []string) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}

// disabledGenerator is used when no API key is configured.
type disabledGenerator struct{}

func (disabledGenerator) Enabled() bool { return false }

func (disabledGenerator) CommitMessage(context.Context, string, []string) (string, error) {
	return "", appErrors.ErrSyncFailed
}

func (disabledGenerator) PRBody(context.Context, string, []string) (string, error) {
	return "", appErrors.ErrSyncFailed
}
