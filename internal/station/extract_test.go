package station

import (
	"strings"
	"testing"
)

const fullDocument = `<?xml version="1.0" encoding="utf-8"?>
<station>
  <name>roof</name>
  <sensors>
    <sensor><type>temperature</type><value>21.4</value></sensor>
    <sensor><type>humidity</type><value>55</value></sensor>
    <sensor><type>wind_speed</type><value>3.2</value></sensor>
    <sensor><type>wind_direction</type><value>NW</value></sensor>
    <sensor><type>uv_index</type><value>4</value></sensor>
  </sensors>
</station>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(s))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return doc
}

func TestExtract_Numeric(t *testing.T) {
	doc := mustParse(t, fullDocument)

	v := doc.Extract(SensorTemperature, KindNumeric)
	if !v.Present() {
		t.Fatalf("temperature status = %v; want present", v.Status)
	}
	if v.Number != 21.4 {
		t.Fatalf("temperature = %v; want 21.4", v.Number)
	}
}

func TestExtract_Text(t *testing.T) {
	doc := mustParse(t, fullDocument)

	v := doc.Extract(SensorWindDirection, KindText)
	if !v.Present() || v.Text != "NW" {
		t.Fatalf("wind_direction = %q (%v); want \"NW\" (present)", v.Text, v.Status)
	}
}

func TestExtract_Missing(t *testing.T) {
	doc := mustParse(t, fullDocument)

	v := doc.Extract(SensorPressure, KindNumeric)
	if v.Status != StatusMissing {
		t.Fatalf("pressure status = %v; want missing", v.Status)
	}
	if v.Number != 0 {
		t.Fatalf("pressure = %v; want 0", v.Number)
	}

	v = mustParse(t, `<s/>`).Extract(SensorWindDirection, KindText)
	if v.Status != StatusMissing || v.Text != "" {
		t.Fatalf("wind_direction = %q (%v); want \"\" (missing)", v.Text, v.Status)
	}
}

func TestExtract_EntryWithoutValue(t *testing.T) {
	doc := mustParse(t, `<s>
		<sensor><type>humidity</type></sensor>
		<sensor><type>humidity</type><value>60</value></sensor>
	</s>`)

	v := doc.Extract(SensorHumidity, KindNumeric)
	if v.Status != StatusMissing {
		t.Fatalf("humidity status = %v; want missing (first entry wins)", v.Status)
	}
}

func TestExtract_FirstEntryWins(t *testing.T) {
	doc := mustParse(t, `<s>
		<sensor><type>temperature</type><value>1.5</value></sensor>
		<group><sensor><type>temperature</type><value>9.5</value></sensor></group>
	</s>`)

	if v := doc.Extract(SensorTemperature, KindNumeric); v.Number != 1.5 {
		t.Fatalf("temperature = %v; want 1.5", v.Number)
	}
}

func TestExtract_InvalidNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "comma decimal", raw: "23,5"},
		{name: "word", raw: "warm"},
		{name: "empty", raw: ""},
		{name: "nan", raw: "NaN"},
		{name: "inf", raw: "+Inf"},
		{name: "digit separator", raw: "1_0"},
		{name: "hex float", raw: "0x1p4"},
		{name: "hex int", raw: "0x10"},
		{name: "bare exponent", raw: "1e"},
		{name: "sign only", raw: "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, `<s><sensor><type>pressure</type><value>`+tt.raw+`</value></sensor></s>`)
			v := doc.Extract(SensorPressure, KindNumeric)
			if v.Status != StatusInvalid {
				t.Fatalf("status = %v; want invalid", v.Status)
			}
			if v.Number != 0 {
				t.Fatalf("number = %v; want 0", v.Number)
			}
			if v.Raw != tt.raw {
				t.Fatalf("raw = %q; want %q", v.Raw, tt.raw)
			}
		})
	}
}

func TestExtract_DecimalForms(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: "23.5", want: 23.5},
		{raw: " -4 ", want: -4},
		{raw: "+2", want: 2},
		{raw: "5.", want: 5},
		{raw: ".25", want: 0.25},
		{raw: "1.5e3", want: 1500},
		{raw: "1E-2", want: 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			doc := mustParse(t, `<s><sensor><type>pressure</type><value>`+tt.raw+`</value></sensor></s>`)
			v := doc.Extract(SensorPressure, KindNumeric)
			if v.Status != StatusPresent || v.Number != tt.want {
				t.Fatalf("pressure = %v (%v); want %v (present)", v.Number, v.Status, tt.want)
			}
		})
	}
}

func TestExtract_FirstChildWins(t *testing.T) {
	doc := mustParse(t, `<s>
		<sensor><type>temperature</type><type>humidity</type><value>1.5</value><value>9</value></sensor>
	</s>`)

	if v := doc.Extract(SensorTemperature, KindNumeric); v.Status != StatusPresent || v.Number != 1.5 {
		t.Fatalf("temperature = %v (%v); want 1.5 (present)", v.Number, v.Status)
	}
	if v := doc.Extract(SensorHumidity, KindNumeric); v.Status != StatusMissing {
		t.Fatalf("humidity status = %v; want missing", v.Status)
	}
}

func TestExtract_NestedSensor(t *testing.T) {
	doc := mustParse(t, `<s>
		<sensor>
			<type>humidity</type><value>55</value>
			<sensor><type>pressure</type><value>1013.2</value></sensor>
		</sensor>
		<sensor><type>pressure</type><value>900</value></sensor>
	</s>`)

	if v := doc.Extract(SensorHumidity, KindNumeric); v.Number != 55 {
		t.Fatalf("humidity = %v; want 55", v.Number)
	}
	if v := doc.Extract(SensorPressure, KindNumeric); v.Status != StatusPresent || v.Number != 1013.2 {
		t.Fatalf("pressure = %v (%v); want 1013.2 from the nested entry", v.Number, v.Status)
	}
}

func TestExtract_ValueChildOnlyDirect(t *testing.T) {
	doc := mustParse(t, `<s><sensor><type>humidity</type><meta><value>80</value></meta></sensor></s>`)

	if v := doc.Extract(SensorHumidity, KindNumeric); v.Status != StatusMissing {
		t.Fatalf("humidity status = %v; want missing", v.Status)
	}
}

func TestExtract_LocaleIndependent(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	t.Setenv("LANG", "de_DE.UTF-8")

	doc := mustParse(t, `<s><sensor><type>temperature</type><value> 23.5 </value></sensor></s>`)
	if v := doc.Extract(SensorTemperature, KindNumeric); v.Number != 23.5 {
		t.Fatalf("temperature = %v; want 23.5", v.Number)
	}
}

func TestExtract_TextKeepsRawValue(t *testing.T) {
	doc := mustParse(t, `<s><sensor><type>wind_direction</type><value> S W </value></sensor></s>`)
	if v := doc.Extract(SensorWindDirection, KindText); v.Text != " S W " {
		t.Fatalf("wind_direction = %q; want %q", v.Text, " S W ")
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "whitespace", body: "  \n"},
		{name: "plain text", body: "service unavailable"},
		{name: "unclosed", body: "<station><sensor><type>temperature</type>"},
		{name: "mismatched", body: "<station></sensor>"},
		{name: "two roots", body: "<a/><b/>"},
		{name: "html", body: "<html><body><br></body></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDocument(strings.NewReader(tt.body)); err == nil {
				t.Fatalf("ParseDocument(%q): expected error", tt.body)
			}
		})
	}
}

func TestParseDocument_DeclaredCharset(t *testing.T) {
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<s><sensor><type>wind_direction</type><value>S\xfcd</value></sensor></s>"

	doc := mustParse(t, body)
	if v := doc.Extract(SensorWindDirection, KindText); v.Text != "Süd" {
		t.Fatalf("wind_direction = %q; want %q", v.Text, "Süd")
	}
}
