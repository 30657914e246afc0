package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dailybriefing/internal/config"
	"dailybriefing/internal/models"
	"dailybriefing/internal/services"

	"github.com/spf13/cobra"
)

var (
	previewFrom   string
	previewOutDir string
)

var PreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a briefing to files without sending email",
	Long: `Generate a briefing (or clean an existing markdown file with --from) and
write the rendered briefing.html and briefing.txt to --out. No email is sent.`,
	RunE: runPreview,
}

func init() {
	PreviewCmd.Flags().StringVar(&previewFrom, "from", "", "Markdown file to render instead of calling the model")
	PreviewCmd.Flags().StringVarP(&previewOutDir, "out", "o", ".", "Directory for the rendered files")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	briefing, err := previewBriefing(cmd.Context(), cfg, previewFrom)
	if err != nil {
		return err
	}

	rendered, err := services.NewDispatchService(nil, cfg.SenderEmail, cfg.RecipientEmail).Render(briefing)
	if err != nil {
		return err
	}

	paths, err := writePreview(previewOutDir, rendered)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(rendered.Subject))
	for _, p := range paths {
		fmt.Fprintln(out, passStyle.Render("✓ ")+p)
	}
	if briefing.HasReasoning() {
		fmt.Fprintln(out, dimStyle.Render("reasoning: "+*briefing.ReasoningExcerpt))
	}
	return nil
}

// previewBriefing builds the briefing from a local file or a live model call
func previewBriefing(ctx context.Context, cfg *config.Config, from string) (*models.Briefing, error) {
	phrases, err := services.LoadNarrationPhrases(cfg.NarrationPhrasesFile)
	if err != nil {
		return nil, err
	}
	filter := services.NewNarrationFilter(phrases)

	if from != "" {
		data, err := os.ReadFile(from)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", from, err)
		}
		extraction := filter.Extract([]models.Segment{models.TextSegment(string(data))})
		return &models.Briefing{
			Date:        models.FormatBriefingDate(time.Now()),
			Body:        extraction.Body,
			Model:       cfg.ModelID,
			GeneratedAt: time.Now(),
		}, nil
	}

	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY (or pass --from)", config.ErrConfigMissing)
	}

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	generator := services.NewGeneratorService(
		services.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL),
		services.GeneratorConfig{
			PromptFile:       cfg.PromptFile,
			Model:            cfg.ModelID,
			MaxTokens:        cfg.MaxTokens,
			ThinkingBudget:   cfg.ThinkingBudgetTokens,
			WebSearch:        cfg.WebSearchEnabled,
			WebSearchMaxUses: cfg.WebSearchMaxUses,
		},
		filter,
	)
	return generator.Generate(ctx)
}

func writePreview(dir string, rendered *services.RenderedBriefing) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"briefing.html", rendered.HTML},
		{"briefing.txt", rendered.Text},
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
