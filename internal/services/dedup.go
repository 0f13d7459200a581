package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// ObjectStore is the durable storage surface the monitor depends on. It is
// implemented by gcp.Bucket in production and by an in-memory store in tests.
type ObjectStore interface {
	// Exists reports whether an object is present at key. Absence is not an
	// error; implementations must reserve the error return for real backend
	// failures.
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key, contentType string, r io.Reader) error
}

// Fingerprint returns the stable dedup key fragment for a source URL: the hex
// md5 of the URL string itself. It depends only on the URL bytes, never on
// document content, so a bulletin republished with different bytes at the
// same URL is not re-ingested.
func Fingerprint(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// DedupIndex records which source URLs have already been ingested, as marker
// objects under processed/ in the object store.
type DedupIndex struct {
	store ObjectStore
}

func NewDedupIndex(store ObjectStore) *DedupIndex {
	return &DedupIndex{store: store}
}

func markerKey(url string) string {
	return fmt.Sprintf("processed/%s.txt", Fingerprint(url))
}

// IsProcessed reports whether a marker exists for url. Backend failures other
// than "not found" propagate; they must not be mistaken for "not processed".
func (d *DedupIndex) IsProcessed(ctx context.Context, url string) (bool, error) {
	return d.store.Exists(ctx, markerKey(url))
}

// MarkProcessed writes the marker for url. Markers are never updated or
// deleted by the monitor.
func (d *DedupIndex) MarkProcessed(ctx context.Context, url string, at time.Time) error {
	body := fmt.Sprintf("Procesado: %s\nURL: %s", at.Format(time.RFC3339), url)
	return d.store.Put(ctx, markerKey(url), "text/plain", strings.NewReader(body))
}

// archiveKey is the object key a raw bulletin is archived under, partitioned
// by ingestion date.
func archiveKey(at time.Time, filename string) string {
	return fmt.Sprintf("boletines/%s/%s", at.Format("20060102"), filename)
}

// runLogKey is the object key for a run's log entry.
func runLogKey(status string, at time.Time) string {
	return fmt.Sprintf("logs/%s_%s.txt", status, at.Format("20060102_150405"))
}
