package services

import (
	"context"
	"log/slog"
	"time"

	"affilink/internal/models"

	"github.com/mssola/user_agent"
)

const (
	clickQueueSize     = 1000
	clickInsertTimeout = 5 * time.Second
	clickDrainTimeout  = 3 * time.Second
)

type clickStore interface {
	CreateClick(ctx context.Context, click *models.Click) error
}

type locator interface {
	CountryOf(ip string) string
}

// ClickRecorder writes clicks from a background worker so that callers never
// wait on the store. Failures stay inside the worker.
type ClickRecorder struct {
	store        clickStore
	logger       *slog.Logger
	telemetry    *Telemetry
	geoIP        locator
	clickChannel chan models.Click
}

func NewClickRecorder(store clickStore, logger *slog.Logger, telemetry *Telemetry, geoIP locator) *ClickRecorder {
	return &ClickRecorder{
		store:        store,
		logger:       logger,
		telemetry:    telemetry,
		geoIP:        geoIP,
		clickChannel: make(chan models.Click, clickQueueSize),
	}
}

func (s *ClickRecorder) Start(ctx context.Context) {
	s.logger.Info("Click recorder starting")
	for {
		select {
		case click := <-s.clickChannel:
			insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clickInsertTimeout)
			s.record(insertCtx, click)
			cancel()
		case <-ctx.Done():
			n := s.drain()
			s.logger.Info("Click recorder stopping", "drained", n)
			return
		}
	}
}

// drain records clicks still queued at shutdown, giving up after
// clickDrainTimeout. It returns how many were taken off the queue.
func (s *ClickRecorder) drain() int {
	ctx, cancel := context.WithTimeout(context.Background(), clickDrainTimeout)
	defer cancel()

	n := 0
	for {
		select {
		case click := <-s.clickChannel:
			s.record(ctx, click)
			n++
		default:
			return n
		}
	}
}

// RecordClickAsync queues the click and returns immediately. A full queue
// drops the click.
func (s *ClickRecorder) RecordClickAsync(click models.Click) {
	select {
	case s.clickChannel <- click:
	default:
		s.telemetry.ClicksDropped.Inc()
		s.logger.Warn("Click queue full, dropping click event")
	}
}

func (s *ClickRecorder) record(ctx context.Context, click models.Click) {
	s.enrichClickData(&click)

	if err := s.store.CreateClick(ctx, &click); err != nil {
		s.telemetry.ClicksFailed.Inc()
		s.logger.Error("Failed to record click", "product_id", click.ProductID, "error", err)
		return
	}
	s.telemetry.ClicksRecorded.Inc()
}

func (s *ClickRecorder) enrichClickData(click *models.Click) {
	if click.UserAgent != "" {
		ua := user_agent.New(click.UserAgent)
		browserName, browserVer := ua.Browser()
		click.Browser = browserName + " " + browserVer
		click.OS = ua.OS()

		if ua.Bot() {
			click.DeviceType = "Bot"
		} else if ua.Mobile() {
			click.DeviceType = "Mobile"
		} else {
			click.DeviceType = "Desktop"
		}
	}

	if click.Referrer == "" {
		click.Referrer = "Direct"
	}

	if s.geoIP != nil && click.IPAddress != "" {
		click.Country = s.geoIP.CountryOf(click.IPAddress)
	}
	if click.Country == "" {
		click.Country = "Unknown"
	}

	click.IPAddress = ""
}
