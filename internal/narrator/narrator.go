// Package narrator turns a saved match into a short commentary using Gemini.
package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/timeclash/internal/models"
	"google.golang.org/api/option"
)

const modelName = "gemini-2.5-flash"

//go:embed prompts/recap.txt
var recapPrompt string

var recapTemplate = template.Must(template.New("recap").Parse(recapPrompt))

type Narrator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey string) (*Narrator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Narrator{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (n *Narrator) Close() {
	n.client.Close()
}

// Recap asks the model to describe the match.
func (n *Narrator) Recap(ctx context.Context, r *models.MatchRecord) (string, error) {
	prompt, err := Prompt(r)
	if err != nil {
		return "", err
	}

	resp, err := n.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating recap: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			return "", fmt.Errorf("unexpected response type from Gemini")
		}
		out.WriteString(string(text))
	}
	return strings.TrimSpace(out.String()), nil
}

// Prompt renders the recap prompt for r.
func Prompt(r *models.MatchRecord) (string, error) {
	outcome := "unfinished"
	if r.Result != nil {
		outcome = r.Result.String()
	}
	hazards := "none"
	if len(r.Hazards) > 0 {
		s := make([]string, len(r.Hazards))
		for i, h := range r.Hazards {
			s[i] = h.String()
		}
		hazards = strings.Join(s, " ")
	}

	data := struct {
		ID       string
		Started  string
		Turns    []models.TurnRecord
		Rejected int
		Hazards  string
		Outcome  string
	}{
		ID:       r.ID,
		Started:  r.StartedAt.Format(time.RFC1123),
		Turns:    r.Turns,
		Rejected: r.Rejected,
		Hazards:  hazards,
		Outcome:  outcome,
	}

	var buf bytes.Buffer
	if err := recapTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering recap prompt: %w", err)
	}
	return buf.String(), nil
}
