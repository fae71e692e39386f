// Package batch runs the extraction and bucketing pipeline over whole
// directories, writing one JSON file per document plus a run summary.
package batch

import (
	"crypto/rand"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hpungsan/loam/internal/cards"
	"github.com/hpungsan/loam/internal/errors"
	"github.com/hpungsan/loam/internal/srptd"
)

const (
	extractionSummaryFile = "_extraction_summary.json"
	bucketSummaryFile     = "_bucket_summary.json"
)

// ProcessedDoc records one successfully extracted document.
type ProcessedDoc struct {
	Source   string   `json:"source"`
	Output   string   `json:"output"`
	DocID    string   `json:"doc_id"`
	Format   string   `json:"format"`
	Warnings []string `json:"warnings"`
}

// FailedDoc records one document that could not be extracted.
type FailedDoc struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// ExtractionSummary is the run report written next to the extraction JSONs.
type ExtractionSummary struct {
	RunID       string         `json:"run_id"`
	GeneratedAt string         `json:"generated_at"`
	InputDir    string         `json:"input_dir"`
	OutputDir   string         `json:"output_dir"`
	Processed   []ProcessedDoc `json:"processed"`
	Failed      []FailedDoc    `json:"failed"`
	Total       int            `json:"total"`
}

// Runner executes directory-level pipeline stages.
type Runner struct {
	extractor   *srptd.Extractor
	docPrefixes []string
	log         zerolog.Logger
}

// NewRunner creates a Runner. docPrefixes filters which markdown files count
// as post-task documents (matched against the filename start).
func NewRunner(docPrefixes []string, log zerolog.Logger) *Runner {
	return &Runner{
		extractor:   srptd.NewExtractor(log),
		docPrefixes: docPrefixes,
		log:         log,
	}
}

// newRunID returns a fresh ULID for tagging a batch run.
func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// FindDocs walks inputDir for markdown files whose names carry one of the
// configured document prefixes, sorted by path for stable run order.
func (r *Runner) FindDocs(inputDir string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		name := filepath.Base(path)
		for _, prefix := range r.docPrefixes {
			if strings.HasPrefix(name, prefix) {
				docs = append(docs, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewNotFound(inputDir)
	}
	sort.Strings(docs)
	return docs, nil
}

// ProcessDirectory extracts every matching document under inputDir into
// outputDir. A document that fails to load lands in the failed list; the run
// never aborts on a single bad file. Total always equals
// len(processed)+len(failed).
func (r *Runner) ProcessDirectory(inputDir, outputDir string) (*ExtractionSummary, error) {
	docs, err := r.FindDocs(inputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.NewInternal("create output directory", err)
	}

	summary := &ExtractionSummary{
		RunID:       newRunID(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Processed:   []ProcessedDoc{},
		Failed:      []FailedDoc{},
		Total:       len(docs),
	}

	for _, doc := range docs {
		ext, err := r.extractor.ExtractFile(doc)
		if err != nil {
			r.log.Warn().Err(err).Str("source", doc).Msg("extraction failed")
			summary.Failed = append(summary.Failed, FailedDoc{Source: doc, Error: err.Error()})
			continue
		}

		outPath := filepath.Join(outputDir, ext.DocID+".json")
		if err := writeJSON(outPath, ext); err != nil {
			r.log.Warn().Err(err).Str("source", doc).Msg("write failed")
			summary.Failed = append(summary.Failed, FailedDoc{Source: doc, Error: err.Error()})
			continue
		}

		summary.Processed = append(summary.Processed, ProcessedDoc{
			Source:   doc,
			Output:   outPath,
			DocID:    ext.DocID,
			Format:   ext.FormatDetected,
			Warnings: ext.ParseWarnings,
		})
	}

	if err := writeJSON(filepath.Join(outputDir, extractionSummaryFile), summary); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("run_id", summary.RunID).
		Int("processed", len(summary.Processed)).
		Int("failed", len(summary.Failed)).
		Int("total", summary.Total).
		Msg("extraction run complete")

	return summary, nil
}

// CardResults is the report for a card generation run.
type CardResults struct {
	RunID     string       `json:"run_id"`
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Cards     []cards.Card `json:"cards"`
}

// BuildCards loads every extraction JSON under extractionsDir and writes one
// card per document into cardsDir. Summary files are skipped.
func (r *Runner) BuildCards(extractionsDir, cardsDir string) (*CardResults, error) {
	files, err := filepath.Glob(filepath.Join(extractionsDir, "*.json"))
	if err != nil {
		return nil, errors.NewInternal("glob extractions", err)
	}
	sort.Strings(files)

	if err := os.MkdirAll(cardsDir, 0755); err != nil {
		return nil, errors.NewInternal("create cards directory", err)
	}

	results := &CardResults{RunID: newRunID(), Cards: []cards.Card{}}
	now := time.Now().UTC()

	for _, file := range files {
		if strings.HasPrefix(filepath.Base(file), "_") {
			continue
		}

		var ext srptd.Extraction
		if err := readJSON(file, &ext); err != nil {
			r.log.Warn().Err(err).Str("file", file).Msg("failed to load extraction")
			results.Failed++
			continue
		}

		card := cards.NewCard(&ext, now)
		if err := writeJSON(filepath.Join(cardsDir, card.DocID+".json"), card); err != nil {
			r.log.Warn().Err(err).Str("file", file).Msg("failed to write card")
			results.Failed++
			continue
		}

		results.Cards = append(results.Cards, card)
		results.Processed++
	}

	r.log.Info().
		Str("run_id", results.RunID).
		Int("processed", results.Processed).
		Int("failed", results.Failed).
		Msg("card run complete")

	return results, nil
}

// BuildBuckets loads every card under cardsDir, groups them, and writes one
// file per bucket plus a summary into bucketsDir.
func (r *Runner) BuildBuckets(cardsDir, bucketsDir string) (*cards.Summary, error) {
	files, err := filepath.Glob(filepath.Join(cardsDir, "*.json"))
	if err != nil {
		return nil, errors.NewInternal("glob cards", err)
	}
	sort.Strings(files)

	var cardList []cards.Card
	for _, file := range files {
		if strings.HasPrefix(filepath.Base(file), "_") {
			continue
		}
		var card cards.Card
		if err := readJSON(file, &card); err != nil {
			r.log.Warn().Err(err).Str("file", file).Msg("failed to load card")
			continue
		}
		cardList = append(cardList, card)
	}

	if err := os.MkdirAll(bucketsDir, 0755); err != nil {
		return nil, errors.NewInternal("create buckets directory", err)
	}

	buckets := cards.BuildBuckets(cardList)
	for key, bucket := range buckets {
		path := filepath.Join(bucketsDir, cards.SafeKey(key)+".json")
		if err := writeJSON(path, bucket); err != nil {
			return nil, err
		}
	}

	summary := cards.Summarize(buckets, time.Now().UTC())
	if err := writeJSON(filepath.Join(bucketsDir, bucketSummaryFile), summary); err != nil {
		return nil, err
	}

	r.log.Info().
		Int("buckets", summary.Statistics.TotalBuckets).
		Int("documents", summary.Statistics.TotalDocuments).
		Msg("bucket run complete")

	return &summary, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewInternal("marshal "+filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.NewInternal("write "+filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewDocLoadFailed(path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewDocLoadFailed(path, err)
	}
	return nil
}
