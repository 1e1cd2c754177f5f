// Command ocrmd sends documents to a hosted OCR API and writes back
// reconciled markdown, with a companion translate command for markdown
// files.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ocrmd/ocrmd/internal/clients"
	"github.com/ocrmd/ocrmd/internal/config"
	"github.com/ocrmd/ocrmd/internal/cost"
	"github.com/ocrmd/ocrmd/internal/logging"
	"github.com/ocrmd/ocrmd/internal/output"
	"github.com/ocrmd/ocrmd/internal/pipeline"
)

const version = "0.2.0"

// CLI defines the command-line interface for ocrmd.
var CLI struct {
	Verbose bool   `name:"verbose" short:"v" help:"Enable debug logging"`
	Quiet   bool   `name:"quiet" short:"q" help:"Only log errors"`
	APIKey  string `name:"api-key" env:"MISTRAL_API_KEY" help:"Mistral API key"`
	BaseURL string `name:"base-url" env:"MISTRAL_BASE_URL" help:"API base URL"`
	EnvFile string `name:"env-file" help:"Path to a .env file to load" type:"path"`

	OCR       OCRCmd       `cmd:"" help:"OCR documents into markdown"`
	Translate TranslateCmd `cmd:"" help:"Translate markdown files"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// appContext carries what every command needs after bootstrap.
type appContext struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("ocrmd"),
		kong.Description("OCR documents to markdown via the Mistral API, and translate markdown."),
		kong.UsageOnError(),
	)

	// .env values become visible to config.Load without overriding the
	// real environment
	if CLI.EnvFile != "" {
		if err := godotenv.Load(CLI.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "ocrmd: cannot load %s: %v\n", CLI.EnvFile, err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ocrmd: %v\n", err)
		os.Exit(1)
	}
	if CLI.APIKey != "" {
		cfg.APIKey = CLI.APIKey
	}
	if CLI.BaseURL != "" {
		cfg.BaseURL = CLI.BaseURL
	}

	level := cfg.LogLevel
	if CLI.Verbose {
		level = "debug"
	}
	if CLI.Quiet {
		level = "error"
	}
	logger := logging.New(level, os.Stderr)

	app := &appContext{cfg: cfg, logger: logger}
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "ocrmd: %v\n", err)
		os.Exit(1)
	}
}

// OCRCmd sends documents through the OCR pipeline.
type OCRCmd struct {
	Inputs       []string      `arg:"" name:"input" help:"Files, directories or URLs to process"`
	Output       string        `name:"output" short:"o" help:"Output directory (default: next to each input)" type:"path"`
	InlineImages bool          `name:"inline-images" help:"Embed images as data URIs instead of files"`
	Model        string        `name:"model" help:"OCR model override"`
	Recursive    bool          `name:"recursive" short:"r" help:"Recurse into directories"`
	Concurrency  int           `name:"concurrency" short:"c" help:"Documents processed in parallel"`
	Yes          bool          `name:"yes" short:"y" help:"Skip the cost confirmation prompt"`
	DryRun       bool          `name:"dry-run" help:"Print the cost estimate and exit"`
	Metadata     bool          `name:"metadata" help:"Write a JSON metadata sidecar per document"`
	Timeout      time.Duration `name:"timeout" help:"Per-document timeout override"`
}

func (c *OCRCmd) Run(app *appContext) error {
	if err := app.cfg.RequireAPIKey(); err != nil {
		return err
	}

	inputs, err := pipeline.ExpandInputs(c.Inputs, c.Recursive)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no processable inputs found")
	}

	estimate := estimateOCRBatch(inputs)
	fmt.Println(estimate.String())
	if c.DryRun {
		return nil
	}
	if !c.Yes && !confirm() {
		fmt.Println("Aborted.")
		return nil
	}

	if c.Output != "" {
		if err := output.EnsureDir(c.Output); err != nil {
			return err
		}
	}

	model := app.cfg.OCRModel
	if c.Model != "" {
		model = c.Model
	}
	concurrency := app.cfg.Concurrency
	if c.Concurrency > 0 {
		concurrency = c.Concurrency
	}
	timeout := app.cfg.ProcessTimeout
	if c.Timeout > 0 {
		timeout = c.Timeout
	}

	client := clients.NewClient(app.cfg.BaseURL, app.cfg.APIKey, app.cfg.HTTPTimeout, app.logger)
	processor := pipeline.NewProcessor(client, pipeline.Options{
		Model:          model,
		OutputDir:      c.Output,
		InlineImages:   c.InlineImages,
		WriteMetadata:  c.Metadata,
		MaxFileSize:    app.cfg.MaxFileSize,
		URLExpiryHours: app.cfg.URLExpiryHours,
	}, app.logger)

	outcomes := pipeline.RunBatch(context.Background(), inputs, concurrency, timeout,
		app.logger, processor.Process)

	return report(outcomes, func(r *pipeline.Result) string { return r.OutputPath })
}

// TranslateCmd sends markdown files through the translation pipeline.
type TranslateCmd struct {
	Inputs      []string `arg:"" name:"file" help:"Markdown files to translate" type:"existingfile"`
	To          string   `name:"to" short:"t" required:"" help:"Target language"`
	Model       string   `name:"model" help:"Chat model override"`
	Output      string   `name:"output" short:"o" help:"Output directory (default: next to each input)" type:"path"`
	Concurrency int      `name:"concurrency" short:"c" help:"Files translated in parallel"`
	Yes         bool     `name:"yes" short:"y" help:"Skip the cost confirmation prompt"`
	DryRun      bool     `name:"dry-run" help:"Print the cost estimate and exit"`
}

func (c *TranslateCmd) Run(app *appContext) error {
	if err := app.cfg.RequireAPIKey(); err != nil {
		return err
	}

	estimate := estimateTranslateBatch(c.Inputs)
	fmt.Println(estimate.String())
	if c.DryRun {
		return nil
	}
	if !c.Yes && !confirm() {
		fmt.Println("Aborted.")
		return nil
	}

	if c.Output != "" {
		if err := output.EnsureDir(c.Output); err != nil {
			return err
		}
	}

	model := app.cfg.ChatModel
	if c.Model != "" {
		model = c.Model
	}
	concurrency := app.cfg.Concurrency
	if c.Concurrency > 0 {
		concurrency = c.Concurrency
	}

	translator := clients.NewTranslator(app.cfg.BaseURL, app.cfg.APIKey, model, app.logger)
	processor := pipeline.NewTranslateProcessor(translator, pipeline.TranslateOptions{
		TargetLang:  c.To,
		OutputDir:   c.Output,
		ChunkTokens: app.cfg.ChunkTokens,
	}, app.logger)

	outcomes := pipeline.RunBatch(context.Background(), c.Inputs, concurrency, app.cfg.ProcessTimeout,
		app.logger, processor.Process)

	return report(outcomes, func(r *pipeline.TranslateResult) string { return r.OutputPath })
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(_ *appContext) error {
	fmt.Printf("ocrmd %s\n", version)
	return nil
}

// estimateOCRBatch sums per-input page estimates. Unreadable inputs and
// URLs count as one page; the real failure surfaces during processing.
func estimateOCRBatch(inputs []string) cost.Estimate {
	var total cost.Estimate
	for _, input := range inputs {
		if pipeline.IsURL(input) {
			total.Add(cost.EstimateOCR(nil, ""))
			continue
		}
		data, err := os.ReadFile(input)
		if err != nil {
			total.Add(cost.EstimateOCR(nil, ""))
			continue
		}
		total.Add(cost.EstimateOCR(data, pipeline.DetectMIME(data, input)))
	}
	return total
}

func estimateTranslateBatch(inputs []string) cost.Estimate {
	var total cost.Estimate
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			continue
		}
		total.Add(cost.EstimateTranslation(string(data)))
	}
	return total
}

// confirm asks the user to proceed; anything but an explicit yes declines
func confirm() bool {
	fmt.Print("Proceed? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// report prints the batch summary and returns an error when any input
// failed, so the process exits non-zero
func report[T any](outcomes []pipeline.Outcome[T], outputPath func(*T) string) error {
	succeeded, failed := pipeline.Summarize(outcomes)
	for _, o := range outcomes {
		if o.Failed() {
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", o.Input, o.Err)
			continue
		}
		fmt.Printf("%s -> %s\n", o.Input, outputPath(o.Result))
	}
	fmt.Printf("%d succeeded, %d failed\n", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(outcomes))
	}
	return nil
}
