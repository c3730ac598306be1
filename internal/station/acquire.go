package station

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/meteo-station/internal/common"
)

// DefaultFetchTimeout bounds a single fetch when no timeout is configured.
const DefaultFetchTimeout = 30 * time.Second

var knownSensors = []struct {
	id   SensorID
	kind Kind
}{
	{SensorTemperature, KindNumeric},
	{SensorHumidity, KindNumeric},
	{SensorPressure, KindNumeric},
	{SensorWindSpeed, KindNumeric},
	{SensorWindDirection, KindText},
}

// Acquirer turns a station URL into a Reading.
type Acquirer struct {
	fetcher    Fetcher
	defaultURL string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAcquirer creates a new Acquirer. A non-positive timeout falls back to
// DefaultFetchTimeout.
func NewAcquirer(fetcher Fetcher, defaultURL string, timeout time.Duration, logger *slog.Logger) *Acquirer {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		fetcher:    fetcher,
		defaultURL: defaultURL,
		timeout:    timeout,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// DefaultURL returns the configured station URL.
func (a *Acquirer) DefaultURL() string {
	return a.defaultURL
}

// ResolveURL returns source if it is not blank, else the default URL.
func (a *Acquirer) ResolveURL(source string) string {
	return common.FirstNonBlank(source, a.defaultURL)
}

// Acquire fetches, parses and normalizes one station document. It always
// returns a Reading: transport and markup failures produce an unavailable
// one, partial documents produce an available one with zeroed fields.
func (a *Acquirer) Acquire(ctx context.Context, source string) Reading {
	target := a.ResolveURL(source)
	log := a.logger.With("run_id", uuid.NewString(), "url", target)

	log.Info("fetching station document")
	started := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, err := a.fetcher.Fetch(fetchCtx, target)
	if errors.Is(err, errCircuitOpen) {
		log.Warn("station fetch skipped: circuit breaker open", "error", err)
		return a.unavailable()
	}
	if err != nil {
		log.Error("station fetch failed", "error", err, "elapsed", time.Since(started))
		return a.unavailable()
	}
	log.Info("station document fetched", "bytes", len(body), "elapsed", time.Since(started))

	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		log.Error("station document is malformed", "error", err)
		return a.unavailable()
	}

	payload, err := normalize(doc, log).Encode()
	if err != nil {
		log.Error("encode reading", "error", err)
		return a.unavailable()
	}

	return Reading{
		DownloadTime: a.now(),
		IsAvailable:  true,
		Payload:      payload,
	}
}

func (a *Acquirer) unavailable() Reading {
	return Reading{DownloadTime: a.now()}
}

func normalize(doc *Document, log *slog.Logger) NormalizedReading {
	var n NormalizedReading
	for _, s := range knownSensors {
		v := doc.Extract(s.id, s.kind)
		switch v.Status {
		case StatusMissing:
			log.Warn("sensor missing", "sensor", s.id)
		case StatusInvalid:
			log.Warn("sensor value not parsable", "sensor", s.id, "kind", s.kind, "raw", v.Raw)
		}

		switch s.id {
		case SensorTemperature:
			n.Temperature = v.Number
		case SensorHumidity:
			n.Humidity = v.Number
		case SensorPressure:
			n.Pressure = v.Number
		case SensorWindSpeed:
			n.WindSpeed = v.Number
		case SensorWindDirection:
			if v.Present() {
				dir := v.Text
				n.WindDirection = &dir
			}
		}
	}
	return n
}
