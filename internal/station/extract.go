package station

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	errEmptyDocument   = errors.New("document has no root element")
	errMultipleRoots   = errors.New("document has more than one root element")
	errTextOutsideRoot = errors.New("document has text outside the root element")
)

// decimalPattern is the accepted numeric grammar: period decimals with an
// optional exponent. Go literal forms such as 0x1p4 or 1_0 do not match.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Status reports how an extraction resolved.
type Status int

const (
	StatusPresent Status = iota
	StatusMissing        // no entry, or an entry without a value
	StatusInvalid        // value present but not convertible to the requested kind
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusMissing:
		return "missing"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Value is the typed result of Extract. Only the field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
	Raw    string
	Status Status
}

// Present reports whether the sensor was found and converted.
func (v Value) Present() bool {
	return v.Status == StatusPresent
}

type sensorEntry struct {
	Type  *string
	Value *string
}

// sensorFrame tracks an open sensor element while the document is scanned.
type sensorFrame struct {
	index   int // into Document.entries
	depth   int
	field   string // child being captured, "" when none
	fieldAt int
	text    strings.Builder
}

// Document holds the sensor entries of a station document in document order.
type Document struct {
	entries []sensorEntry
}

// ParseDocument reads a station document. Sensor elements are collected at
// any depth, nested ones included, in start-tag order. Of a sensor's direct
// type and value children the first one counts. Everything else is ignored
// as long as the markup is well formed.
func ParseDocument(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	var open []*sensorFrame
	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return nil, errMultipleRoots
				}
			}
			depth++

			if n := len(open); n > 0 {
				top := open[n-1]
				if top.field == "" && depth == top.depth+1 && doc.entries[top.index].wants(t.Name.Local) {
					top.field, top.fieldAt = t.Name.Local, depth
					top.text.Reset()
				}
			}
			if t.Name.Local == "sensor" {
				doc.entries = append(doc.entries, sensorEntry{})
				open = append(open, &sensorFrame{index: len(doc.entries) - 1, depth: depth})
			}
		case xml.EndElement:
			for _, f := range open {
				if f.field != "" && f.fieldAt == depth {
					doc.entries[f.index].set(f.field, f.text.String())
					f.field = ""
				}
			}
			if n := len(open); n > 0 && open[n-1].depth == depth {
				open = open[:n-1]
			}
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, errTextOutsideRoot
			}
			for _, f := range open {
				if f.field != "" {
					f.text.Write(t)
				}
			}
		}
	}
	if roots == 0 {
		return nil, errEmptyDocument
	}
	return doc, nil
}

func (e *sensorEntry) wants(name string) bool {
	switch name {
	case "type":
		return e.Type == nil
	case "value":
		return e.Value == nil
	}
	return false
}

func (e *sensorEntry) set(name, text string) {
	switch name {
	case "type":
		e.Type = &text
	case "value":
		e.Value = &text
	}
}

// lookup returns the value of the first entry typed id.
func (d *Document) lookup(id SensorID) (string, bool) {
	for _, e := range d.entries {
		if e.Type == nil || strings.TrimSpace(*e.Type) != string(id) {
			continue
		}
		if e.Value == nil {
			return "", false
		}
		return *e.Value, true
	}
	return "", false
}

// Extract converts the sensor id to kind. It never fails: a missing or
// unconvertible sensor yields the zero value with a non-present Status.
func (d *Document) Extract(id SensorID, kind Kind) Value {
	v := Value{Kind: kind}

	raw, ok := d.lookup(id)
	if !ok {
		v.Status = StatusMissing
		return v
	}
	v.Raw = raw

	switch kind {
	case KindNumeric:
		text := strings.TrimSpace(raw)
		if !decimalPattern.MatchString(text) {
			v.Status = StatusInvalid
			return v
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			v.Status = StatusInvalid
			return v
		}
		v.Number = f
	case KindText:
		v.Text = raw
	default:
		v.Status = StatusInvalid
		return v
	}

	v.Status = StatusPresent
	return v
}
