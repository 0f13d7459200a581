package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/satwatch/boletin-monitor/internal/gcp"
	"github.com/satwatch/boletin-monitor/internal/models"
)

// Fixed pipeline parameters. These are properties of the monitored source,
// not deployment knobs, so they are not environment-configurable.
const (
	sourceURL      = "http://omawww.sat.gob.mx/sala_prensa/boletin_tecnico/Paginas/default.aspx"
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
	maxPDFsPerRun  = 10
	fallbackName   = "documento.pdf"
	smtpHost       = "smtp.gmail.com"
	smtpPort       = 587
	emailSubject   = "Actualización en Boletines Técnicos del SAT"
)

// keywords are scanned in this order; matched subsets keep it.
var keywords = []string{"CFDI 4.0", "Anexo 20", "contabilidad electrónica", "e.firma"}

// MonitorConfig holds configuration for the bulletin monitor.
type MonitorConfig struct {
	Bucket         string
	EmailSender    string
	EmailRecipient string
	EmailPassword  string

	SourceURL     string
	Keywords      []string
	MaxPDFsPerRun int
}

// ConfigFromEnv builds the monitor configuration from the environment. It is
// called before any network activity; every missing required variable is
// reported in one *ConfigError.
func ConfigFromEnv() (MonitorConfig, error) {
	config := MonitorConfig{
		Bucket:         gcp.GetEnv("BOLETINES_BUCKET", ""),
		EmailSender:    gcp.GetEnv("EMAIL_SENDER", ""),
		EmailRecipient: gcp.GetEnv("EMAIL_RECIPIENT", ""),
		EmailPassword:  gcp.GetEnv("EMAIL_PASSWORD", ""),
		SourceURL:      sourceURL,
		Keywords:       keywords,
		MaxPDFsPerRun:  maxPDFsPerRun,
	}

	var missing []string
	for name, value := range map[string]string{
		"BOLETINES_BUCKET": config.Bucket,
		"EMAIL_SENDER":     config.EmailSender,
		"EMAIL_RECIPIENT":  config.EmailRecipient,
		"EMAIL_PASSWORD":   config.EmailPassword,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		// Map iteration order is random; keep the message stable.
		sort.Strings(missing)
		return MonitorConfig{}, &ConfigError{Missing: missing}
	}
	return config, nil
}

// MonitorFunction holds dependencies for one monitoring pipeline.
//
// Runs are strictly sequential and the design assumes at most one run at a
// time: two concurrent runs could both pass the dedup check for the same URL
// and double-process it. That race is accepted, not guarded against.
type MonitorFunction struct {
	fetcher  *Fetcher
	store    ObjectStore
	dedup    *DedupIndex
	notifier Notifier
	config   MonitorConfig
	now      func() time.Time
}

// NewMonitor creates a MonitorFunction wired to GCS and SMTP.
func NewMonitor(ctx context.Context) (*MonitorFunction, error) {
	config, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	bucket, err := gcp.NewBucket(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage bucket handle: %w", err)
	}

	notifier := &EmailNotifier{
		Host:      smtpHost,
		Port:      smtpPort,
		Sender:    config.EmailSender,
		Recipient: config.EmailRecipient,
		Password:  config.EmailPassword,
		Subject:   emailSubject,
	}

	f := newMonitor(config, bucket, NewFetcher(requestTimeout, maxRetries, retryDelay), notifier)
	slog.Info("Bulletin monitor initialized.", "bucket", config.Bucket, "sourceUrl", config.SourceURL)
	return f, nil
}

func newMonitor(config MonitorConfig, store ObjectStore, fetcher *Fetcher, notifier Notifier) *MonitorFunction {
	return &MonitorFunction{
		fetcher:  fetcher,
		store:    store,
		dedup:    NewDedupIndex(store),
		notifier: notifier,
		config:   config,
		now:      time.Now,
	}
}

// Run executes one end-to-end monitoring pass and always returns a report.
// Per-link failures are logged and skipped; run-level failures (source page
// unreachable, notification undeliverable) mark the whole run as failed.
// Every run writes one best-effort log entry to the store.
func (f *MonitorFunction) Run(ctx context.Context) *models.RunReport {
	start := f.now()
	report := &models.RunReport{Status: "success"}
	slog.Info("Starting SAT bulletin monitoring run.")

	if err := f.run(ctx, report); err != nil {
		report.Status = "error"
		report.Message = publicMessage(err)
		slog.Error("Monitoring run failed.", "error", err)
	}

	report.ExecutionTime = f.now().Sub(start)
	f.writeRunLog(ctx, report)

	slog.Info("Monitoring run finished.",
		"status", report.Status,
		"linksFound", report.LinksFound,
		"updates", len(report.Updates),
		"elapsed", report.ExecutionTime.String(),
	)
	return report
}

func (f *MonitorFunction) run(ctx context.Context, report *models.RunReport) error {
	page, err := f.fetcher.Get(ctx, f.config.SourceURL)
	if err != nil {
		return err
	}
	links, err := ExtractPDFLinks(page, f.config.SourceURL)
	if err != nil {
		return err
	}
	report.LinksFound = len(links)
	slog.Info("Discovered PDF links.", "count", len(links))

	// Cap the number of documents handled in one run. Links beyond the cap
	// are not recorded anywhere; a future run rediscovers them.
	if len(links) > f.config.MaxPDFsPerRun {
		slog.Info("Truncating link list to per-run cap.", "cap", f.config.MaxPDFsPerRun)
		links = links[:f.config.MaxPDFsPerRun]
	}

	for _, link := range links {
		update, err := f.processLink(ctx, link, report)
		if err != nil {
			// One bad document never aborts the run.
			slog.Error("Failed to process bulletin, continuing.", "url", link, "error", err)
			continue
		}
		if update != nil {
			report.Updates = append(report.Updates, *update)
		}
	}

	return f.notifier.Notify(report.Updates)
}

// processLink runs the ingestion pipeline for one candidate URL. It returns a
// non-nil Update only when at least one keyword matched.
func (f *MonitorFunction) processLink(ctx context.Context, link string, report *models.RunReport) (*models.Update, error) {
	logCtx := slog.With("url", link)

	processed, err := f.dedup.IsProcessed(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to check dedup marker: %w", err)
	}
	if processed {
		logCtx.Info("Bulletin already processed, skipping.")
		return nil, nil
	}

	body, err := f.fetcher.Get(ctx, link)
	if err != nil {
		return nil, err
	}
	name := displayName(link)

	spool, err := newScratch()
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer spool.Close()

	localPath := spool.path(name)
	if err := os.WriteFile(localPath, body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to spool bulletin: %w", err)
	}

	text := ExtractText(body)
	if text == "" {
		// Soft skip: no marker is written, so a future run retries this URL.
		logCtx.Warn("No text could be extracted, skipping bulletin.", "pdf", name)
		return nil, nil
	}

	found := MatchKeywords(text, f.config.Keywords)
	now := f.now()
	var update *models.Update
	if len(found) > 0 {
		logCtx.Info("Keywords found in bulletin.", "pdf", name, "keywords", found)
		update = &models.Update{PDF: name, Keywords: found, URL: link, ProcessedAt: now}
	}

	// Archive the raw document whether or not keywords matched.
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen spooled bulletin: %w", err)
	}
	defer file.Close()
	if err := f.store.Put(ctx, archiveKey(now, name), "application/pdf", file); err != nil {
		return nil, fmt.Errorf("failed to archive bulletin: %w", err)
	}

	// Marker write is best-effort: a failure means the URL may be processed
	// again by a later run, which is an accepted risk.
	if err := f.dedup.MarkProcessed(ctx, link, now); err != nil {
		logCtx.Warn("Failed to write dedup marker.", "error", err)
		report.Advisories = append(report.Advisories, fmt.Sprintf("mark processed %s: %v", link, err))
	}
	return update, nil
}

func (f *MonitorFunction) writeRunLog(ctx context.Context, report *models.RunReport) {
	now := f.now()
	var key, body string
	if report.Status == "success" {
		names := make([]string, 0, len(report.Updates))
		for _, u := range report.Updates {
			names = append(names, u.PDF)
		}
		key = runLogKey("success", now)
		body = fmt.Sprintf(
			"Monitoreo ejecutado exitosamente: %s\n"+
				"Tiempo de ejecución: %.2f segundos\n"+
				"PDFs encontrados: %d\n"+
				"Actualizaciones detectadas: %d\n"+
				"Actualizaciones: %v",
			now.Format(time.RFC3339), report.ExecutionTime.Seconds(),
			report.LinksFound, len(report.Updates), names,
		)
	} else {
		key = runLogKey("error", now)
		body = fmt.Sprintf("Error en monitoreo SAT: %s\nTimestamp: %s", report.Message, now.Format(time.RFC3339))
	}

	if err := f.store.Put(ctx, key, "text/plain", strings.NewReader(body)); err != nil {
		slog.Warn("Failed to write run log to store.", "key", key, "error", err)
		report.Advisories = append(report.Advisories, fmt.Sprintf("run log: %v", err))
	}
}

// displayName derives a filename for a bulletin from its URL path, falling
// back to a generic name when the path has none.
func displayName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return fallbackName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return fallbackName
	}
	return name
}
