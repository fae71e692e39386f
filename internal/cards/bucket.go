package cards

import (
	"strings"
	"time"
)

// UnknownBucketKey is where cards without a primary domain and pattern land.
const UnknownBucketKey = "unknown__unknown"

// Bucket groups the cards that share a bucket key.
type Bucket struct {
	BucketKey      string   `json:"bucket_key"`
	DocIDs         []string `json:"doc_ids"`
	PrimaryDomain  string   `json:"primary_domain"`
	PrimaryPattern string   `json:"primary_pattern"`
	DocCount       int      `json:"doc_count"`
}

// Stats summarizes the bucket size distribution.
type Stats struct {
	TotalBuckets      int     `json:"total_buckets"`
	TotalDocuments    int     `json:"total_documents"`
	AvgBucketSize     float64 `json:"avg_bucket_size"`
	MaxBucketSize     int     `json:"max_bucket_size"`
	MinBucketSize     int     `json:"min_bucket_size"`
	SingletonBuckets  int     `json:"singleton_buckets"`
	UnknownBucketDocs int     `json:"unknown_bucket_docs"`
}

// Summary is the full bucketing result.
type Summary struct {
	GeneratedAt string             `json:"generated_at"`
	Statistics  Stats              `json:"statistics"`
	Buckets     map[string]*Bucket `json:"buckets"`
}

// BuildBuckets groups cards by bucket key. Cards with an empty key fall
// into the unknown bucket. Within a bucket, doc IDs keep input order.
func BuildBuckets(cardList []Card) map[string]*Bucket {
	buckets := make(map[string]*Bucket)

	for _, card := range cardList {
		key := card.BucketKey
		if key == "" {
			key = UnknownBucketKey
		}

		b, ok := buckets[key]
		if !ok {
			parts := strings.SplitN(key, "__", 2)
			b = &Bucket{
				BucketKey:      key,
				DocIDs:         []string{},
				PrimaryDomain:  parts[0],
				PrimaryPattern: "unknown",
			}
			if len(parts) > 1 {
				b.PrimaryPattern = parts[1]
			}
			buckets[key] = b
		}

		b.DocIDs = append(b.DocIDs, card.DocID)
		b.DocCount = len(b.DocIDs)
	}

	return buckets
}

// Summarize computes the size statistics over a bucket set.
func Summarize(buckets map[string]*Bucket, now time.Time) Summary {
	stats := Stats{TotalBuckets: len(buckets)}

	first := true
	for _, b := range buckets {
		stats.TotalDocuments += b.DocCount
		if first || b.DocCount > stats.MaxBucketSize {
			stats.MaxBucketSize = b.DocCount
		}
		if first || b.DocCount < stats.MinBucketSize {
			stats.MinBucketSize = b.DocCount
		}
		if b.DocCount == 1 {
			stats.SingletonBuckets++
		}
		first = false
	}

	if len(buckets) > 0 {
		stats.AvgBucketSize = float64(stats.TotalDocuments) / float64(len(buckets))
	}
	if unknown, ok := buckets[UnknownBucketKey]; ok {
		stats.UnknownBucketDocs = unknown.DocCount
	}

	return Summary{
		GeneratedAt: now.Format(time.RFC3339),
		Statistics:  stats,
		Buckets:     buckets,
	}
}

// SafeKey makes a bucket key usable as a filename.
func SafeKey(key string) string {
	key = strings.ReplaceAll(key, "/", "-")
	return strings.ReplaceAll(key, "\\", "-")
}
