// Package cmd provides command-line interface commands for the travel
// rules service: importing rule files, running searches from a terminal
// and inspecting the stored data.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"travelrules/config"
	"travelrules/core"
	"travelrules/search"
	"travelrules/service"
	"travelrules/storage"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags for rules commands
var (
	outputJSON bool
	configFile string
	noColor    bool
	quiet      bool
)

const (
	maxImportFileSize = 10 * 1024 * 1024 // protection against memory exhaustion
	defaultTimeout    = 5 * time.Minute
)

// validateFilePath rejects paths that could traverse out of the working
// directory, including URL-encoded ".." sequences.
func validateFilePath(filename string) error {
	decoded, err := url.QueryUnescape(filename)
	if err != nil {
		decoded = filename
	}

	if strings.Contains(decoded, "..") || strings.Contains(filename, "..") {
		return fmt.Errorf("path traversal detected: '..' not allowed in file path")
	}

	cleanPath := filepath.Clean(decoded)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	if !strings.HasPrefix(absPath, workDir) {
		return fmt.Errorf("path escapes current directory")
	}

	return nil
}

// NewRulesCmd creates the root rules command with all subcommands.
func NewRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage travel rules",
		Long: `Manage the travel rules dataset: import rule files, search the stored
rules from the terminal and show usage statistics.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rulesCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	rulesCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path")
	rulesCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rulesCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")

	rulesCmd.AddCommand(newImportCmd())
	rulesCmd.AddCommand(newSearchCmd())
	rulesCmd.AddCommand(newShowCmd())
	rulesCmd.AddCommand(newStatsCmd())

	return rulesCmd
}

// cliEnv is everything a subcommand needs: config, storage and a cleanup
// function to run when done.
type cliEnv struct {
	cfg     *config.Config
	sqlite  *storage.SQLite
	rules   *storage.RuleStorage
	logger  *zap.SugaredLogger
	cleanup func()
}

func initEnv() (*cliEnv, error) {
	// CLI runs want quiet logs; warnings and errors still surface.
	zl, err := zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger := zl.Sugar()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	sqlite, err := storage.NewSQLite(cfg.DataPaths.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &cliEnv{
		cfg:    cfg,
		sqlite: sqlite,
		rules:  storage.NewRuleStorage(sqlite, logger),
		logger: logger,
		cleanup: func() {
			_ = sqlite.Close()
			_ = zl.Sync()
		},
	}, nil
}

// ruleFile is the YAML import format: a flat list of rules.
type ruleFile struct {
	Rules []core.Rule `yaml:"rules"`
}

// newImportCmd creates the 'import' subcommand
func newImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import rules from a YAML file",
		Long: `Import travel rules from a YAML file. Existing rules with the same ID
are updated in place; their view counters are preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			filename := args[0]
			if err := validateFilePath(filename); err != nil {
				return err
			}

			info, err := os.Stat(filename)
			if err != nil {
				return fmt.Errorf("cannot access file: %w", err)
			}
			if info.Size() > maxImportFileSize {
				return fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxImportFileSize)
			}

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			var file ruleFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("failed to parse YAML: %w", err)
			}
			if len(file.Rules) == 0 {
				warningColor.Println("No rules found in file")
				return nil
			}

			env, err := initEnv()
			if err != nil {
				return err
			}
			defer env.cleanup()

			var sp *spinner.Spinner
			if !quiet && !outputJSON {
				sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = fmt.Sprintf(" Importing %d rules...", len(file.Rules))
				sp.Start()
			}

			imported, failed := 0, 0
			var failures []string
			for i := range file.Rules {
				rule := &file.Rules[i]
				if rule.ID == "" {
					rule.ID = uuid.NewString()
				}
				if err := rule.Validate(); err != nil {
					failed++
					failures = append(failures, err.Error())
					continue
				}
				if dryRun {
					imported++
					continue
				}
				if err := env.rules.CreateRule(ctx, rule); err != nil {
					failed++
					failures = append(failures, fmt.Sprintf("rule %s: %v", rule.ID, err))
					continue
				}
				imported++
			}

			if sp != nil {
				sp.Stop()
			}

			if outputJSON {
				return outputAsJSON(map[string]any{
					"imported": imported,
					"failed":   failed,
					"dry_run":  dryRun,
					"failures": failures,
				})
			}

			if dryRun {
				infoColor.Printf("Dry run: %d rules would be imported\n", imported)
			} else {
				successColor.Printf("Imported %d rules\n", imported)
			}
			if failed > 0 {
				errorColor.Printf("Failed: %d\n", failed)
				for _, f := range failures {
					warningColor.Printf("  %s\n", f)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without writing to the database")

	return cmd
}

// newSearchCmd creates the 'search' subcommand
func newSearchCmd() *cobra.Command {
	var (
		country  string
		category string
		limit    int
		lang     string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			env, err := initEnv()
			if err != nil {
				return err
			}
			defer env.cleanup()

			engine := search.NewEngine(env.rules, env.logger)
			query := strings.Join(args, " ")
			filters := core.SearchFilters{CountryCode: country, Category: category}

			results, err := engine.Search(ctx, query, filters, limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if outputJSON {
				return outputAsJSON(results)
			}

			if len(results) == 0 {
				warningColor.Println("No matching rules")
				return nil
			}

			language := core.ParseLanguage(lang)
			headerColor.Printf("%d matching rules for %q\n\n", len(results), query)
			for i, rule := range results {
				text := rule.Content.For(language)
				fmt.Printf("%2d. %s %s [%s/%s]\n", i+1,
					service.SeverityEmoji(rule.Severity), text.Title,
					rule.CountryCode, rule.Category)
				if text.Description != "" {
					fmt.Printf("    %s\n", text.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "Filter by country code")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "Maximum results")
	cmd.Flags().StringVar(&lang, "lang", "en", "Display language (en or ru)")

	return cmd
}

// newShowCmd creates the 'show' subcommand
func newShowCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show one rule in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			env, err := initEnv()
			if err != nil {
				return err
			}
			defer env.cleanup()

			rule, err := env.rules.GetRule(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load rule: %w", err)
			}

			if outputJSON {
				return outputAsJSON(rule)
			}

			fmt.Println(service.FormatRuleDetailed(*rule, core.ParseLanguage(lang)))
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "Display language (en or ru)")

	return cmd
}

// newStatsCmd creates the 'stats' subcommand
func newStatsCmd() *cobra.Command {
	var popularLimit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			env, err := initEnv()
			if err != nil {
				return err
			}
			defer env.cleanup()

			total, err := env.rules.CountRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to count rules: %w", err)
			}
			popular, err := env.rules.GetPopularRules(ctx, popularLimit)
			if err != nil {
				return fmt.Errorf("failed to load popular rules: %w", err)
			}

			if outputJSON {
				return outputAsJSON(map[string]any{
					"total_rules":   total,
					"popular_rules": popular,
				})
			}

			headerColor.Println("Travel rules dataset")
			fmt.Printf("  Total rules: %d\n", total)
			if len(popular) > 0 {
				fmt.Println("  Most viewed:")
				for i, rule := range popular {
					fmt.Printf("    %2d. %s (%d views)\n", i+1, rule.Content.EN.Title, rule.Views)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&popularLimit, "popular", 10, "How many popular rules to list")

	return cmd
}

func outputAsJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
