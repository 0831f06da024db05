// Package report turns the model's loosely-typed verdict into display
// values. Every accessor tolerates missing or wrongly typed fields.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NotAvailable is shown for any field the model did not supply.
const NotAvailable = "N/A"

// Result is a decoded analysis payload.
type Result struct {
	// Fields is nil when the payload is not a JSON object.
	Fields map[string]any
	Raw    json.RawMessage
}

// Decode parses raw model output. It never fails: invalid or non-object
// JSON yields a Result with no fields.
func Decode(raw []byte) Result {
	res := Result{Raw: json.RawMessage(raw)}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err == nil {
		res.Fields = fields
	}
	return res
}

// Trend is the direction derived from the free-text trend field.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Symbol returns a single-glyph icon for the trend.
func (t Trend) Symbol() string {
	switch t {
	case TrendUp:
		return "▲"
	case TrendDown:
		return "▼"
	default:
		return "●"
	}
}

// TrendIcon matches "up" then "down" case-insensitively anywhere in trend.
func TrendIcon(trend string) Trend {
	lower := strings.ToLower(trend)
	switch {
	case strings.Contains(lower, "up"):
		return TrendUp
	case strings.Contains(lower, "down"):
		return TrendDown
	default:
		return TrendNeutral
	}
}

// PredictionClass maps an exact CALL/PUT to its color class.
func PredictionClass(prediction string) string {
	switch prediction {
	case "CALL":
		return "text-green"
	case "PUT":
		return "text-red"
	default:
		return "text-yellow"
	}
}

// MACDView holds the MACD sub-fields as display strings.
type MACDView struct {
	Value     string
	Signal    string
	Histogram string
	State     string
}

// FractalView is one fractal signal row.
type FractalView struct {
	Type       string
	Position   string
	Confidence string
}

// View is the rendered form of a Result.
type View struct {
	Prediction      string
	PredictionClass string
	Confidence      string
	Trend           string
	TrendIcon       Trend
	Timeframe       string
	Platform        string
	MACD            MACDView
	Fractals        []FractalView
	Explanation     string
	RawJSON         string
}

// NewView builds the display values for res.
func NewView(res Result) View {
	f := res.Fields
	macd, _ := f["macd"].(map[string]any)

	prediction := text(f["prediction"])
	trend := text(f["trend"])

	v := View{
		Prediction:      prediction,
		PredictionClass: PredictionClass(rawString(f["prediction"])),
		Confidence:      percent(f["confidence_score"]),
		Trend:           trend,
		TrendIcon:       TrendIcon(rawString(f["trend"])),
		Timeframe:       text(f["timeframe"]),
		Platform:        text(f["platform"]),
		MACD: MACDView{
			Value:     text(macd["macd_value"]),
			Signal:    text(macd["signal_value"]),
			Histogram: text(macd["histogram"]),
			State:     text(macd["signal_state"]),
		},
		Explanation: text(f["explanation"]),
		RawJSON:     RawJSON(res),
	}

	if signals, ok := f["fractal_signals"].([]any); ok {
		for _, s := range signals {
			m, _ := s.(map[string]any)
			v.Fractals = append(v.Fractals, FractalView{
				Type:       text(m["type"]),
				Position:   text(m["position"]),
				Confidence: text(m["confidence"]),
			})
		}
	}

	return v
}

// text formats any JSON value for display, falling back to NotAvailable.
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return NotAvailable
	case string:
		if val == "" {
			return NotAvailable
		}
		return val
	case json.Number:
		return val.String()
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return NotAvailable
		}
		return string(b)
	}
}

func rawString(v any) string {
	s, _ := v.(string)
	return s
}

func percent(v any) string {
	s := text(v)
	if s == NotAvailable {
		return s
	}
	return s + "%"
}

// RawJSON returns the payload indented for the collapsible raw view.
func RawJSON(res Result) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Raw, "", "  "); err != nil {
		return string(res.Raw)
	}
	return buf.String()
}

// Export serializes the displayed payload to a downloadable JSON file
// named after the current time.
func Export(res Result, now time.Time) (filename string, data []byte) {
	return fmt.Sprintf("analysis_%d.json", now.UnixMilli()), []byte(RawJSON(res))
}
