package cards

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/loam/internal/srptd"
)

var cardTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func baseExtraction() *srptd.Extraction {
	ext := srptd.NewExtraction("doc_abc12345", "doc.md", "quick")
	return ext
}

func TestNewCard_BucketKey(t *testing.T) {
	tests := []struct {
		name     string
		domains  []string
		patterns []string
		want     string
	}{
		{
			name:     "first tags form the key",
			domains:  []string{"api-development", "testing"},
			patterns: []string{"caching"},
			want:     "api-development__caching",
		},
		{
			name:     "missing patterns fall back to unknown",
			domains:  []string{"api-development", "testing"},
			patterns: []string{},
			want:     "api-development__unknown",
		},
		{
			name:     "nothing at all",
			domains:  []string{},
			patterns: []string{},
			want:     "unknown__unknown",
		},
		{
			name:     "unknown sentinel is skipped over",
			domains:  []string{"unknown", "payments"},
			patterns: []string{},
			want:     "payments__unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := baseExtraction()
			ext.Tags.Domains = tt.domains
			ext.Tags.Patterns = tt.patterns

			card := NewCard(ext, cardTime)
			if card.BucketKey != tt.want {
				t.Errorf("BucketKey = %q, want %q", card.BucketKey, tt.want)
			}
		})
	}
}

func TestNewCard_TagNormalization(t *testing.T) {
	ext := baseExtraction()
	ext.Tags.Languages = []string{"Python", " python ", "Go", "session management"}

	card := NewCard(ext, cardTime)
	want := []string{"python", "go", "session-management"}
	if !reflect.DeepEqual(card.Tags.Languages, want) {
		t.Errorf("Tags.Languages = %v, want %v", card.Tags.Languages, want)
	}
}

func TestNewCard_Caps(t *testing.T) {
	ext := baseExtraction()
	for i := 0; i < 12; i++ {
		ext.Trigger.KeywordsPhrases = append(ext.Trigger.KeywordsPhrases, "kw")
		ext.Workflow.HighLevelSteps = append(ext.Workflow.HighLevelSteps, "step")
		ext.OutputsProduced.Artifacts = append(ext.OutputsProduced.Artifacts, srptd.Artifact{Name: "f.go"})
		ext.IssuesAndFixes.Items = append(ext.IssuesAndFixes.Items, srptd.IssueItem{
			Issue: strings.Repeat("long issue text ", 10),
		})
	}

	card := NewCard(ext, cardTime)
	if len(card.Trigger.Keywords) != 10 {
		t.Errorf("len(Keywords) = %d, want 10", len(card.Trigger.Keywords))
	}
	if len(card.WorkflowSteps) != 5 {
		t.Errorf("len(WorkflowSteps) = %d, want 5", len(card.WorkflowSteps))
	}
	if len(card.Artifacts) != 5 {
		t.Errorf("len(Artifacts) = %d, want 5", len(card.Artifacts))
	}
	if len(card.Issues) != 5 {
		t.Errorf("len(Issues) = %d, want 5", len(card.Issues))
	}
	for _, issue := range card.Issues {
		if len(issue) > 80 {
			t.Errorf("issue length %d exceeds 80", len(issue))
		}
	}
}

func TestNewCard_CarriesScores(t *testing.T) {
	ext := baseExtraction()
	total := 18
	priority := "high"
	ext.SkillAssessment.ReusabilityScore = &total
	ext.SkillAssessment.ExtractionPriority = &priority

	card := NewCard(ext, cardTime)
	if card.Scores.ReusabilityTotal == nil || *card.Scores.ReusabilityTotal != 18 {
		t.Errorf("ReusabilityTotal = %v", card.Scores.ReusabilityTotal)
	}
	if card.Scores.ExtractionPriority == nil || *card.Scores.ExtractionPriority != "high" {
		t.Errorf("ExtractionPriority = %v", card.Scores.ExtractionPriority)
	}
	if card.CreatedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q", card.CreatedAt)
	}
}

func TestBuildBuckets(t *testing.T) {
	cardList := []Card{
		{DocID: "a", BucketKey: "auth__caching"},
		{DocID: "b", BucketKey: "auth__caching"},
		{DocID: "c", BucketKey: "data__unknown"},
		{DocID: "d", BucketKey: ""},
	}

	buckets := BuildBuckets(cardList)
	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3", len(buckets))
	}

	auth := buckets["auth__caching"]
	if auth == nil || auth.DocCount != 2 {
		t.Fatalf("auth bucket = %+v", auth)
	}
	if !reflect.DeepEqual(auth.DocIDs, []string{"a", "b"}) {
		t.Errorf("auth.DocIDs = %v", auth.DocIDs)
	}
	if auth.PrimaryDomain != "auth" || auth.PrimaryPattern != "caching" {
		t.Errorf("auth bucket parts = %q/%q", auth.PrimaryDomain, auth.PrimaryPattern)
	}

	unknown := buckets[UnknownBucketKey]
	if unknown == nil || unknown.DocCount != 1 {
		t.Errorf("unknown bucket = %+v", unknown)
	}
}

func TestSummarize(t *testing.T) {
	buckets := BuildBuckets([]Card{
		{DocID: "a", BucketKey: "auth__caching"},
		{DocID: "b", BucketKey: "auth__caching"},
		{DocID: "c", BucketKey: "data__etl"},
		{DocID: "d", BucketKey: UnknownBucketKey},
	})

	summary := Summarize(buckets, cardTime)
	stats := summary.Statistics

	if stats.TotalBuckets != 3 {
		t.Errorf("TotalBuckets = %d, want 3", stats.TotalBuckets)
	}
	if stats.TotalDocuments != 4 {
		t.Errorf("TotalDocuments = %d, want 4", stats.TotalDocuments)
	}
	if stats.MaxBucketSize != 2 || stats.MinBucketSize != 1 {
		t.Errorf("Max/Min = %d/%d, want 2/1", stats.MaxBucketSize, stats.MinBucketSize)
	}
	if stats.SingletonBuckets != 2 {
		t.Errorf("SingletonBuckets = %d, want 2", stats.SingletonBuckets)
	}
	if stats.UnknownBucketDocs != 1 {
		t.Errorf("UnknownBucketDocs = %d, want 1", stats.UnknownBucketDocs)
	}
	want := 4.0 / 3.0
	if stats.AvgBucketSize < want-0.001 || stats.AvgBucketSize > want+0.001 {
		t.Errorf("AvgBucketSize = %f, want %f", stats.AvgBucketSize, want)
	}
}

func TestSafeKey(t *testing.T) {
	if got := SafeKey(`api/v2__worker\pool`); got != "api-v2__worker-pool" {
		t.Errorf("SafeKey() = %q", got)
	}
}
