package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-internships/config"
	"github.com/aluiziolira/go-scrape-internships/models"
	"github.com/aluiziolira/go-scrape-internships/parser"
	"github.com/aluiziolira/go-scrape-internships/pipeline"
	"github.com/gocolly/colly/v2"
)

// Extractor walks the fixed page range of the search endpoint and collects
// listings into one aggregate record.
type Extractor struct {
	cfg       *config.Config
	origin    *url.URL
	collector *colly.Collector
	sleep     func(context.Context, time.Duration) error
	Metrics   *Metrics
}

// pageOutcome is filled by the collector callbacks for the page in flight.
type pageOutcome struct {
	url      string
	status   int
	elapsed  time.Duration
	err      error
	listings []models.Listing
}

// NewExtractor builds an extractor configured from cfg.
func NewExtractor(cfg *config.Config) (*Extractor, error) {
	first, err := cfg.PageURL(1)
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(first)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("search url must include a host")
	}
	origin, err := cfg.Origin()
	if err != nil {
		return nil, err
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Extractor{
		cfg:       cfg,
		origin:    origin,
		collector: collector,
		sleep:     sleepContext,
		Metrics:   NewMetrics(),
	}, nil
}

// Run extracts every page and writes the aggregate record list to w,
// replacing any previous file. Nothing is written if extraction is cancelled.
func (e *Extractor) Run(ctx context.Context, w *pipeline.JSONWriter) (*models.ExtractResult, error) {
	result, err := e.Extract(ctx)
	if err != nil {
		return result, err
	}

	if err := w.Write([]*models.Aggregate{result.Aggregate}); err != nil {
		return result, fmt.Errorf("write aggregate: %w", err)
	}
	slog.Info("aggregate record written",
		slog.String("path", w.Path()),
		slog.Int("listings", result.ListingCount),
	)
	return result, nil
}

// Extract fetches pages 1..MaxPages one at a time. A page that fails is
// logged and skipped; after every page the extractor pauses for that
// request's round-trip time.
func (e *Extractor) Extract(ctx context.Context) (*models.ExtractResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	acc, err := pipeline.NewAccumulator(e.cfg.DedupeSize)
	if err != nil {
		return nil, err
	}

	result := &models.ExtractResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}

	var current *pageOutcome
	c := e.collector.Clone()
	e.configureHandlers(c, func() *pageOutcome { return current })

	for page := 1; page <= e.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return e.finish(result, acc), fmt.Errorf("extraction interrupted before page %d: %w", page, err)
		}

		pageURL, err := e.cfg.PageURL(page)
		if err != nil {
			return e.finish(result, acc), err
		}

		current = &pageOutcome{url: pageURL}
		result.PagesAttempted++
		visitStart := time.Now()
		visitErr := c.Visit(pageURL)
		if current.elapsed == 0 {
			current.elapsed = time.Since(visitStart)
		}

		if err := pageError(current, visitErr); err != nil {
			category := errorTypeLabel(err)
			result.ErrorsByType[category]++
			result.FailedURLs = append(result.FailedURLs, pageURL)
			e.Metrics.IncPage("failed")
			e.Metrics.IncError(category)
			if status := StatusCode(err); status != 0 {
				slog.Error("non-200 response",
					slog.Int("page", page),
					slog.Int("status", status),
					slog.String("url", pageURL),
				)
			} else {
				slog.Error("page fetch failed",
					slog.Int("page", page),
					slog.String("url", pageURL),
					slog.String("category", category),
					slog.Any("error", err),
				)
			}
		} else {
			accepted := acc.Process(current.listings...)
			result.PagesSucceeded++
			e.Metrics.IncPage("success")
			e.Metrics.AddListings(accepted)
			e.Metrics.AddDuplicates(len(current.listings) - accepted)
			slog.Info("page extracted",
				slog.Int("page", page),
				slog.Int("listings", accepted),
				slog.Duration("elapsed", current.elapsed),
			)
		}

		if err := e.sleep(ctx, current.elapsed); err != nil {
			return e.finish(result, acc), fmt.Errorf("extraction interrupted after page %d: %w", page, err)
		}
	}

	return e.finish(result, acc), nil
}

func (e *Extractor) configureHandlers(c *colly.Collector, page func() *pageOutcome) {
	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		slog.Debug("requesting page", slog.String("url", r.URL.String()))
	})

	c.OnResponse(func(r *colly.Response) {
		p := page()
		p.status = r.StatusCode
		p.elapsed = requestElapsed(r)
		e.Metrics.ObserveDuration(p.elapsed)
	})

	c.OnError(func(r *colly.Response, err error) {
		p := page()
		p.err = err
		if r != nil {
			p.status = r.StatusCode
			p.elapsed = requestElapsed(r)
		}
	})

	c.OnHTML(e.cfg.Selectors.Container, func(el *colly.HTMLElement) {
		if el.Response == nil || el.Response.StatusCode != http.StatusOK {
			return
		}
		listing := parser.ParseListing(parser.Wrap(el.DOM), e.cfg.Selectors, e.origin)
		for i, f := range (models.Row{Listing: listing}).Values() {
			if !f.Valid {
				e.Metrics.IncMissing(models.Columns[i])
			}
		}
		p := page()
		p.listings = append(p.listings, listing)
	})
}

func (e *Extractor) finish(result *models.ExtractResult, acc *pipeline.Accumulator) *models.ExtractResult {
	result.Aggregate = acc.Aggregate()
	result.ListingCount = acc.Len()
	result.DuplicatesSkipped = acc.Duplicates()
	result.EndTime = time.Now()
	return result
}

// pageError decides whether a visited page counts as a failure.
func pageError(p *pageOutcome, visitErr error) error {
	err := p.err
	if err == nil {
		err = visitErr
	}
	if err == nil && p.status == http.StatusOK {
		return nil
	}
	return classifyError(err, p.status)
}

func requestElapsed(r *colly.Response) time.Duration {
	if r == nil || r.Ctx == nil {
		return 0
	}
	if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
		return time.Since(start)
	}
	return 0
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return errors.New("no response received")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}
	if err != nil && strings.Contains(err.Error(), "Client.Timeout exceeded") {
		return ErrTimeout{Err: err}
	}

	if statusCode != 0 && statusCode != http.StatusOK {
		status := ErrHTTPStatus{StatusCode: statusCode, Err: err}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: status}
		case http.StatusNotFound:
			return ErrNotFound{Err: status}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: status}
		}
		return status
	}

	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
