package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"nickel-price-tracker/internal/entity"
	"nickel-price-tracker/internal/tracker/config"
	"nickel-price-tracker/internal/tracker/scraper"
	"nickel-price-tracker/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// Error kinds the on-demand trigger distinguishes. Structural page-shape
// errors surface as the scraper package's sentinels.
var (
	ErrFetchSource = errors.New("failed to fetch source page")
	ErrPersist     = errors.New("failed to persist price records")
)

// Sink is the write target the pipeline reconciles a batch into. The database
// repository and the JSON snapshot writer both satisfy it.
type Sink interface {
	Upsert(ctx context.Context, prices []entity.NickelPrice) error
}

// ScraperService runs the scrape-normalize-reconcile pipeline.
type ScraperService interface {
	RunOnce(ctx context.Context) (int, error)
	RunAllTables(ctx context.Context) (int, error)
}

// NewScraperService creates a new scraper service writing into the given sink.
func NewScraperService(cfg *config.Config, sink Sink, logger *logger.Logger) ScraperService {
	return &scraperService{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		client: &http.Client{Timeout: cfg.Scraper.Timeout},
	}
}

type scraperService struct {
	cfg    *config.Config
	sink   Sink
	logger *logger.Logger
	client *http.Client
}

// RunOnce performs fetch, extract, build and reconcile against the first
// matching table, returning the number of records in the batch. Nothing is
// written when any step before the sink fails.
func (s *scraperService) RunOnce(ctx context.Context) (int, error) {
	doc, err := s.fetchDocument(ctx)
	if err != nil {
		return 0, err
	}

	table, err := scraper.FindPriceTable(doc)
	if err != nil {
		return 0, err
	}
	rows, err := scraper.ExtractRows(table)
	if err != nil {
		return 0, err
	}

	return s.reconcile(ctx, rows)
}

// RunAllTables aggregates candidate rows from every matching table on the
// page before building one batch. Used by the snapshot binary, which dumps
// the whole page; a matching table without a body section is skipped rather
// than aborting the run.
func (s *scraperService) RunAllTables(ctx context.Context) (int, error) {
	doc, err := s.fetchDocument(ctx)
	if err != nil {
		return 0, err
	}

	tables := scraper.FindPriceTables(doc)
	if len(tables) == 0 {
		return 0, scraper.ErrPriceTableNotFound
	}

	var rows [][]string
	for _, table := range tables {
		tableRows, err := scraper.ExtractRows(table)
		if errors.Is(err, scraper.ErrTableBodyMissing) {
			continue
		}
		if err != nil {
			return 0, err
		}
		rows = append(rows, tableRows...)
	}

	return s.reconcile(ctx, rows)
}

func (s *scraperService) reconcile(ctx context.Context, rows [][]string) (int, error) {
	prices := scraper.BuildRecords(rows)
	if len(prices) > 0 {
		if err := s.sink.Upsert(ctx, prices); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}

	s.logger.Info("Scrape completed",
		logger.IntField("rows", len(prices)),
		logger.StringField("source", s.cfg.Scraper.SourceURL),
	)
	return len(prices), nil
}

func (s *scraperService) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Scraper.SourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchSource, err)
	}
	// The source site rejects default/empty user agents.
	req.Header.Set("User-Agent", s.cfg.Scraper.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetchSource, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchSource, err)
	}
	return doc, nil
}
