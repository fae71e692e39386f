package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/loam/internal/batch"
	"github.com/hpungsan/loam/internal/config"
	"github.com/hpungsan/loam/internal/errors"
	"github.com/hpungsan/loam/internal/srptd"
	"github.com/hpungsan/loam/internal/transcript"
	"github.com/hpungsan/loam/internal/watch"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, log zerolog.Logger) *cli.App {
	app := &cli.App{
		Name:    "loam",
		Usage:   "Session transcript and post-task doc extractor",
		Version: Version,
		Commands: []*cli.Command{
			sessionsCmd(cfg, log),
			parseCmd(cfg, log),
			extractCmd(cfg, log),
			cardsCmd(cfg, log),
			bucketsCmd(cfg, log),
			watchCmd(cfg, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// sessionsCmd creates the sessions command.
func sessionsCmd(cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List discovered session transcript files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Logs directory (defaults to configured logs path)"},
		},
		Action: func(c *cli.Context) error {
			reader := transcript.NewReader(cfg.LogsPath, log)

			path := c.String("path")
			if path == "" {
				path = reader.LogsPath()
			}

			sessions := reader.ListSessions(path)
			return outputJSON(map[string]any{
				"sessions": sessions,
				"count":    len(sessions),
			})
		},
	}
}

// parseCmd creates the parse command.
func parseCmd(cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse session transcripts into conversations",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "recent", Aliases: []string{"r"}, Usage: "Parse sessions modified in the last N days"},
			&cli.IntFlag{Name: "max", Usage: "Maximum conversations to return with --recent", Value: 10},
			&cli.IntFlag{Name: "min-messages", Usage: "Minimum substantial messages per conversation"},
		},
		Action: func(c *cli.Context) error {
			reader := transcript.NewReader(cfg.LogsPath, log)

			minMessages := c.Int("min-messages")
			if minMessages == 0 {
				minMessages = cfg.MinMessages
			}

			if c.NArg() > 0 {
				conv, err := reader.ParseFile(c.Args().First())
				if err != nil {
					return outputError(err)
				}
				return outputJSON(conversationView(conv))
			}

			if days := c.Int("recent"); days > 0 {
				convs := reader.ParseRecent(days, c.Int("max"), minMessages)
				views := make([]map[string]any, 0, len(convs))
				for _, conv := range convs {
					views = append(views, conversationSummary(conv))
				}
				return outputJSON(map[string]any{
					"conversations": views,
					"count":         len(views),
				})
			}

			return outputError(errors.NewInvalidRequest("a transcript file or --recent is required"))
		},
	}
}

// extractCmd creates the extract command.
func extractCmd(cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract post-task documents (single file or a whole directory)",
		ArgsUsage: "<file-or-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory for batch extraction"},
			&cli.BoolFlag{Name: "pretty", Usage: "Print a console summary instead of JSON (single file only)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("a document file or directory is required"))
			}
			target := c.Args().First()

			info, err := os.Stat(target)
			if err != nil {
				return outputError(errors.NewDocLoadFailed(target, err))
			}

			if info.IsDir() {
				output := c.String("output")
				if output == "" {
					output = cfg.ExtractionsDir
				}
				runner := batch.NewRunner(cfg.DocPrefixes, log)
				summary, err := runner.ProcessDirectory(target, output)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(summary)
			}

			ext, err := srptd.NewExtractor(log).ExtractFile(target)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("pretty") {
				printExtractionReport(ext)
				return nil
			}
			return outputJSON(ext)
		},
	}
}

// cardsCmd creates the cards command.
func cardsCmd(cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "cards",
		Usage: "Build doc cards from stored extractions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "extractions", Usage: "Extractions directory"},
			&cli.StringFlag{Name: "cards", Usage: "Cards output directory"},
		},
		Action: func(c *cli.Context) error {
			extractionsDir := c.String("extractions")
			if extractionsDir == "" {
				extractionsDir = cfg.ExtractionsDir
			}
			cardsDir := c.String("cards")
			if cardsDir == "" {
				cardsDir = cfg.CardsDir
			}

			runner := batch.NewRunner(cfg.DocPrefixes, log)
			results, err := runner.BuildCards(extractionsDir, cardsDir)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(results)
		},
	}
}

// bucketsCmd creates the buckets command.
func bucketsCmd(cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "buckets",
		Usage: "Group doc cards into buckets and summarize them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cards", Usage: "Cards directory"},
			&cli.StringFlag{Name: "buckets", Usage: "Buckets output directory"},
		},
		Action: func(c *cli.Context) error {
			cardsDir := c.String("cards")
			if cardsDir == "" {
				cardsDir = cfg.CardsDir
			}
			bucketsDir := c.String("buckets")
			if bucketsDir == "" {
				bucketsDir = cfg.BucketsDir
			}

			runner := batch.NewRunner(cfg.DocPrefixes, log)
			summary, err := runner.BuildBuckets(cardsDir, bucketsDir)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(summary)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch a directory and re-parse or re-extract on change",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "docs", Usage: "Watch post-task documents instead of session logs"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory for document extractions"},
		},
		Action: func(c *cli.Context) error {
			reader := transcript.NewReader(cfg.LogsPath, log)

			dir := c.Args().First()
			if dir == "" {
				if c.Bool("docs") {
					dir = "."
				} else {
					dir = reader.LogsPath()
				}
			}

			var match func(string) bool
			var onChange func(string)

			if c.Bool("docs") {
				output := c.String("output")
				if output == "" {
					output = cfg.ExtractionsDir
				}
				extractor := srptd.NewExtractor(log)
				match = watch.DocMatcher(cfg.DocPrefixes)
				onChange = func(path string) {
					ext, err := extractor.ExtractFile(path)
					if err != nil {
						log.Warn().Err(err).Str("path", path).Msg("extraction failed")
						return
					}
					if err := writeExtraction(output, ext); err != nil {
						log.Warn().Err(err).Str("path", path).Msg("write failed")
						return
					}
					outputJSON(map[string]any{
						"doc_id":   ext.DocID,
						"source":   path,
						"format":   ext.FormatDetected,
						"warnings": len(ext.ParseWarnings),
					})
				}
			} else {
				match = watch.SessionMatcher()
				onChange = func(path string) {
					conv, err := reader.ParseFile(path)
					if err != nil {
						log.Warn().Err(err).Str("path", path).Msg("parse failed")
						return
					}
					if conv == nil {
						log.Debug().Str("path", path).Msg("session has no substantial messages")
						return
					}
					outputJSON(conversationSummary(conv))
				}
			}

			w, err := watch.New(dir, match, onChange, log)
			if err != nil {
				return outputError(errors.NewInternal("start watcher", err))
			}
			if err := w.Start(); err != nil {
				return outputError(errors.NewInternal("start watcher", err))
			}
			defer w.Stop()

			fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", dir)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}

// Helper functions

// conversationView is the full single-conversation output. A nil
// conversation is a readable session with no substantial messages.
func conversationView(conv *transcript.Conversation) map[string]any {
	if conv == nil {
		return map[string]any{
			"conversation": nil,
			"unique_tools": []string{},
			"complexity":   "",
			"empty":        true,
		}
	}
	return map[string]any{
		"conversation": conv,
		"unique_tools": conv.UniqueTools(),
		"complexity":   conv.EstimateComplexity(),
		"empty":        false,
	}
}

// conversationSummary is the compact per-conversation line used by list
// outputs and watch mode.
func conversationSummary(conv *transcript.Conversation) map[string]any {
	return map[string]any{
		"session_id":   conv.SessionID,
		"source_file":  conv.SourceFile,
		"messages":     len(conv.Messages),
		"tool_uses":    len(conv.AllToolUses()),
		"unique_tools": conv.UniqueTools(),
		"complexity":   conv.EstimateComplexity(),
		"total_tokens": conv.TotalTokens,
	}
}

// writeExtraction writes one extraction JSON under dir.
func writeExtraction(dir string, ext *srptd.Extraction) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ext.DocID+".json"), append(data, '\n'), 0644)
}

// printExtractionReport prints a console summary of one extraction.
func printExtractionReport(ext *srptd.Extraction) {
	fmt.Printf("Document:  %s\n", ext.DocID)
	fmt.Printf("Format:    %s\n", ext.FormatDetected)
	if ext.Metadata.Date != nil {
		fmt.Printf("Date:      %s\n", *ext.Metadata.Date)
	}
	if ext.Trigger.WhatTriggered != nil {
		fmt.Printf("Trigger:   %s\n", *ext.Trigger.WhatTriggered)
	}

	if len(ext.Workflow.HighLevelSteps) > 0 {
		fmt.Println("Steps:")
		for i, step := range ext.Workflow.HighLevelSteps {
			if i == 5 {
				fmt.Printf("  ... and %d more\n", len(ext.Workflow.HighLevelSteps)-5)
				break
			}
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}

	if len(ext.CodeWritten.Blocks) > 0 {
		langs := make([]string, 0, len(ext.CodeWritten.Blocks))
		for _, block := range ext.CodeWritten.Blocks {
			if block.Language != nil {
				langs = append(langs, *block.Language)
			}
		}
		fmt.Printf("Code:      %d block(s)", len(ext.CodeWritten.Blocks))
		if len(langs) > 0 {
			fmt.Printf(" (%s)", strings.Join(langs, ", "))
		}
		fmt.Println()
	}

	if len(ext.ParseWarnings) > 0 {
		fmt.Println("Warnings:")
		for _, warning := range ext.ParseWarnings {
			fmt.Printf("  - %s\n", warning)
		}
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if loamErr, ok := err.(*errors.LoamError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", loamErr.Code, loamErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
