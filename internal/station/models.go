package station

import (
	"encoding/json"
	"fmt"
	"time"
)

// SensorID is the type discriminator of a sensor entry in a station document.
type SensorID string

const (
	SensorTemperature   SensorID = "temperature"
	SensorHumidity      SensorID = "humidity"
	SensorPressure      SensorID = "pressure"
	SensorWindSpeed     SensorID = "wind_speed"
	SensorWindDirection SensorID = "wind_direction"
)

// Kind selects how a raw sensor value is converted.
type Kind int

const (
	KindNumeric Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NormalizedReading is the canonical snapshot of one station document.
// Every field is always set; sensors that were missing or unparsable keep
// their zero value. Field order here is the serialized field order.
type NormalizedReading struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection *string `json:"windDirection"`
}

// Encode serializes n in its canonical form.
func (n NormalizedReading) Encode() ([]byte, error) {
	return json.Marshal(n)
}

// DecodeNormalized parses a payload produced by Encode.
func DecodeNormalized(data []byte) (NormalizedReading, error) {
	var n NormalizedReading
	if err := json.Unmarshal(data, &n); err != nil {
		return NormalizedReading{}, fmt.Errorf("decode normalized reading: %w", err)
	}
	return n, nil
}

// Reading is the persisted result of one acquisition.
// IsAvailable is false exactly when Payload is nil.
type Reading struct {
	ID           int64           `json:"id"`
	DownloadTime time.Time       `json:"downloadTime"` // always UTC
	IsAvailable  bool            `json:"isAvailable"`
	Payload      json.RawMessage `json:"data"`
}

// Normalized decodes the payload of an available reading.
func (r Reading) Normalized() (NormalizedReading, bool, error) {
	if !r.IsAvailable || len(r.Payload) == 0 {
		return NormalizedReading{}, false, nil
	}
	n, err := DecodeNormalized(r.Payload)
	if err != nil {
		return NormalizedReading{}, false, err
	}
	return n, true, nil
}
