package publish

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/i474232898/meteo-station/internal/config"
	"github.com/i474232898/meteo-station/internal/station"
)

const measurement = "weather_reading"

// InfluxWriter writes each stored reading as one point.
type InfluxWriter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewInfluxWriter(cfg *config.AppConfig) *InfluxWriter {
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	return &InfluxWriter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
	}
}

func (w *InfluxWriter) Name() string {
	return "influxdb"
}

func (w *InfluxWriter) Publish(ctx context.Context, r station.Reading) error {
	p, err := readingPoint(r)
	if err != nil {
		return err
	}
	if err := w.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write point: %w", err)
	}
	return nil
}

func (w *InfluxWriter) Close() {
	w.client.Close()
}

func readingPoint(r station.Reading) (*write.Point, error) {
	p := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("available", strconv.FormatBool(r.IsAvailable)).
		AddField("available", r.IsAvailable).
		AddField("reading_id", r.ID).
		SetTime(r.DownloadTime)

	n, ok, err := r.Normalized()
	if err != nil {
		return nil, err
	}
	if !ok {
		return p, nil
	}

	p.AddField("temperature", n.Temperature).
		AddField("humidity", n.Humidity).
		AddField("pressure", n.Pressure).
		AddField("wind_speed", n.WindSpeed)
	if n.WindDirection != nil {
		p.AddField("wind_direction", *n.WindDirection)
	}
	return p, nil
}
