package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aisca/aisca/internal/ai/gemini"
	"github.com/aisca/aisca/internal/assess"
	"github.com/aisca/aisca/internal/cache"
	"github.com/aisca/aisca/internal/deliverable"
	"github.com/aisca/aisca/internal/enrich"
	"github.com/aisca/aisca/internal/logger"
	"github.com/aisca/aisca/internal/reference"
	"github.com/aisca/aisca/internal/scoring"
	"github.com/aisca/aisca/internal/secrets"
	"github.com/aisca/aisca/internal/submission"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes        = "Yes"
	PromptNo         = "No"
	PromptChooseRole = "Choose another role"

	defaultCacheFile = "gemini_cache.json"
	defaultDataDir   = "data"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
)

var prompt = promptui.Select{
	Label: "Generate a bio and learning roadmap?",
	Items: []string{PromptYes, PromptNo, PromptChooseRole},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the aisca main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("submission", "s", "", "path to the submission JSON file with questionnaire answers")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation, generate the deliverable for the top role")

	if err := runCmd.MarkFlagRequired("submission"); err != nil {
		log.Fatalf("marking submission flag as required: %v", err)
	}
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the aisca", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Reference == nil || config.Reference.Competencies == "" || config.Reference.NumericProfiles == "" {
		logger.Fatal("reference tables are required under reference.competencies and reference.numeric-profiles")
	}

	sub, err := submission.Load(cmd.Flag("submission").Value.String())
	if err != nil {
		logger.Fatal("loading the submission", zap.Error(err))
	}

	if err := sub.Validate(); err != nil {
		logger.Fatal("validating the submission",
			zap.Error(err),
			zap.String("hint", "at least one free-text answer and likert scores between 1 and 5 are required"),
		)
	}

	recordSubmission(sub, config, logger)

	generator, embedder, err := newAIStack(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the gemini stack",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file in the configuration file or the GEMINI_API_KEY_FILE environment variable"),
		)
	}

	competencies, profiles, err := loadReference(ctx, config.Reference, embedder, logger)
	if err != nil {
		logger.Fatal("loading reference tables", zap.Error(err))
	}

	assessor := assess.New(assess.Deps{
		Enricher:     enrich.New(generator, logger),
		Semantic:     scoring.NewSemanticMatcher(embedder, logger),
		Numeric:      scoring.NewNumericMatcher(logger),
		Competencies: competencies,
		Profiles:     profiles,
		Logger:       logger,
	})

	result, err := assessor.Run(ctx, sub)
	if err != nil {
		logger.Fatal("assessment failed", zap.Error(err))
	}

	fmt.Println(renderReport(result))

	role := result.TopRole()
	if cmd.Flag("auto-approve").Value.String() == "false" {
		role, err = chooseRole(result)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if role == "" {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	// The ranking is already on screen, a failed deliverable must not erase it.
	text, err := deliverable.New(generator, logger).Generate(ctx, result.ProfileText, role, result.RowScores)
	if err != nil {
		logger.Error("generating the deliverable", zap.Error(err))
		return
	}

	fmt.Println(titleStyle.Render("Bio and roadmap: " + role))
	fmt.Println(text)
}

func recordSubmission(sub *submission.Submission, config *Config, logger *zap.Logger) {
	dir := defaultDataDir
	if config.Data != nil && config.Data.Dir != "" {
		dir = config.Data.Dir
	}

	// Keeping a record is best effort, the assessment itself does not need it.
	filename, err := sub.SaveRecord(dir)
	if err != nil {
		logger.Warn("recording the submission", zap.Error(err))
		return
	}

	logger.Info("recorded the submission", zap.String("filename", filename))
}

func newAIStack(ctx context.Context, config *Config, zl *zap.Logger) (*gemini.Generator, *gemini.Embedder, error) {
	cfg := &GeminiConfig{}
	if config.AI != nil && config.AI.Gemini != nil {
		cfg = config.AI.Gemini
	}

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("creating gemini client: %w", err)
	}

	cacheFile := defaultCacheFile
	if config.Cache != nil && config.Cache.File != "" {
		cacheFile = config.Cache.File
	}

	store, err := cache.Open(cacheFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening response cache %s: %w", cacheFile, err)
	}

	backoff := time.Duration(cfg.BackoffSeconds) * time.Second

	generator := gemini.NewGenerator(client, cfg.Model, cfg.MaxRetries, backoff, cfg.MaxLogLength, store,
		logger.WithCommonFields(zl, "gemini", cfg.Model))
	embedder := gemini.NewEmbedder(client, cfg.EmbeddingModel, cfg.EmbeddingDimensions,
		logger.WithCommonFields(zl, "gemini", cfg.EmbeddingModel))

	zl.Info("gemini stack ready",
		zap.String("model", generator.Model()),
		zap.String("embedding_model", embedder.Model()),
		zap.Int("cached_responses", store.Len()),
	)

	return generator, embedder, nil
}

func resolveAPIKey(cfg *GeminiConfig) (string, error) {
	keyFile := strings.TrimSpace(cfg.APIKeyFile)
	if keyFile == "" {
		keyFile = strings.TrimSpace(viper.GetString("api-key-file"))
	}

	if keyFile == "" {
		return "", errors.New("gemini api key file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
}

func loadReference(ctx context.Context, cfg *ReferenceConfig, embedder *gemini.Embedder, logger *zap.Logger) (*reference.CompetencyTable, *reference.NumericProfileTable, error) {
	competencies, err := reference.LoadCompetencies(cfg.Competencies)
	if err != nil {
		return nil, nil, fmt.Errorf("competency table: %w", err)
	}

	if err := competencies.ComputeEmbeddings(ctx, embedder); err != nil {
		return nil, nil, fmt.Errorf("embedding competency table: %w", err)
	}

	profiles, err := reference.LoadNumericProfiles(cfg.NumericProfiles)
	if err != nil {
		return nil, nil, fmt.Errorf("numeric profile table: %w", err)
	}

	logger.Info("loaded reference tables",
		zap.Int("competency_rows", competencies.Len()),
		zap.Int("numeric_profiles", profiles.Len()),
	)

	return competencies, profiles, nil
}

func chooseRole(result *assess.Result) (string, error) {
	_, action, err := prompt.Run()
	if err != nil {
		return "", err
	}

	switch action {
	case PromptYes:
		return result.TopRole(), nil
	case PromptNo:
		return "", nil
	case PromptChooseRole:
		items := make([]string, 0, len(result.Ranked))
		for _, ranked := range result.Ranked {
			items = append(items, ranked.Role)
		}

		rolePrompt := promptui.Select{
			Label: "Choose a role and press ENTER",
			Items: items,
		}

		_, role, err := rolePrompt.Run()
		if err != nil {
			return "", err
		}

		return role, nil
	default:
		return "", fmt.Errorf("invalid action: %s", action)
	}
}

func renderReport(result *assess.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Role recommendations"))
	b.WriteString("\n")

	for i, ranked := range result.Ranked {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%d. %s", i+1, ranked.Role)))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(fmt.Sprintf(
			"score %.3f (semantic %.3f, numeric %.3f)",
			ranked.Score, ranked.Semantic, ranked.Numeric,
		)))
		b.WriteString("\n")
	}

	if gaps := deliverable.Gaps(result.TopRole(), result.RowScores); len(gaps) > 0 {
		b.WriteString(labelStyle.Render("Growth areas: "))
		b.WriteString(valueStyle.Render(strings.Join(gaps, ", ")))
		b.WriteString("\n")
	}

	return b.String()
}
