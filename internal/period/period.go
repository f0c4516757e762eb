package period

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind names a period selection
type Kind string

const (
	LastHour    Kind = "last-hour"
	Last6Hours  Kind = "last-6-hours"
	Last24Hours Kind = "last-24-hours"
	Today       Kind = "today"
	Yesterday   Kind = "yesterday"
	Last7Days   Kind = "last-7-days"
	Last30Days  Kind = "last-30-days"
	Custom      Kind = "custom"

	DefaultKind = Last24Hours
)

const (
	dateLayout   = "2006-01-02"
	lastMilli    = 999 * time.Millisecond
	customPrefix = "custom:"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrInvalidHour   = errors.New("hour must be between 00 and 23")
	ErrInvertedRange = errors.New("custom range ends before it starts")
)

// presetOffsets maps trailing presets to the offset subtracted from now
var presetOffsets = map[Kind]time.Duration{
	LastHour:    time.Hour,
	Last6Hours:  6 * time.Hour,
	Last24Hours: 24 * time.Hour,
	Last7Days:   7 * 24 * time.Hour,
	Last30Days:  30 * 24 * time.Hour,
}

// Window is a concrete time range used to scope telemetry queries
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	return w.To.Sub(w.From)
}

// Hours returns the window length rounded up to whole hours, never less than one.
func (w Window) Hours() int {
	hours := int(math.Ceil(w.Duration().Hours()))
	if hours < 1 {
		return 1
	}
	return hours
}

// Contains reports whether t falls inside the window, bounds included
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

func (w Window) String() string {
	const layout = "Jan 02, 2006 15:04"
	return w.From.Format(layout) + " - " + w.To.Format(layout)
}

// Selector is the active period selection. Only custom selectors use the date and hour fields.
type Selector struct {
	Kind      Kind
	FromDate  time.Time
	ToDate    time.Time
	StartHour int
	EndHour   int
}

// Preset returns a selector for a named period
func Preset(kind Kind) Selector {
	return Selector{Kind: kind}
}

// NewCustom builds a custom selector from two dates and two hour-of-day strings ("00".."23")
func NewCustom(fromDate time.Time, startHour string, toDate time.Time, endHour string) (Selector, error) {
	start, err := parseHour(startHour)
	if err != nil {
		return Selector{}, err
	}
	end, err := parseHour(endHour)
	if err != nil {
		return Selector{}, err
	}
	return Selector{
		Kind:      Custom,
		FromDate:  fromDate,
		ToDate:    toDate,
		StartHour: start,
		EndHour:   end,
	}, nil
}

// Label is the human readable name shown next to the range
func (s Selector) Label() string {
	if s.Kind == Custom {
		return "Custom"
	}
	words := strings.Split(string(s.Kind), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (s Selector) String() string {
	if s.Kind != Custom {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s%s@%02d..%s@%02d", customPrefix,
		s.FromDate.Format(dateLayout), s.StartHour,
		s.ToDate.Format(dateLayout), s.EndHour)
}

// Resolve maps a selector to a concrete window relative to now
func Resolve(sel Selector, now time.Time) (Window, error) {
	if offset, ok := presetOffsets[sel.Kind]; ok {
		return Window{From: now.Add(-offset), To: now}, nil
	}

	switch sel.Kind {
	case Today:
		return Window{From: startOfDay(now), To: endOfDay(now)}, nil
	case Yesterday:
		y := now.AddDate(0, 0, -1)
		return Window{From: startOfDay(y), To: endOfDay(y)}, nil
	case Custom:
		return resolveCustom(sel)
	}

	return Window{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, sel.Kind)
}

func resolveCustom(sel Selector) (Window, error) {
	if !validHour(sel.StartHour) || !validHour(sel.EndHour) {
		return Window{}, ErrInvalidHour
	}

	fy, fm, fd := sel.FromDate.Date()
	ty, tm, td := sel.ToDate.Date()
	from := time.Date(fy, fm, fd, sel.StartHour, 0, 0, 0, sel.FromDate.Location())
	to := time.Date(ty, tm, td, sel.EndHour, 59, 59, int(lastMilli), sel.ToDate.Location())

	if from.After(to) {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return Window{From: from, To: to}, nil
}

// ParseSelector parses a preset name or "custom:YYYY-MM-DD@HH..YYYY-MM-DD@HH".
// Dates are interpreted in loc.
func ParseSelector(s string, loc *time.Location) (Selector, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Preset(DefaultKind), nil
	}

	kind := Kind(s)
	if _, ok := presetOffsets[kind]; ok || kind == Today || kind == Yesterday {
		return Preset(kind), nil
	}

	if !strings.HasPrefix(s, customPrefix) {
		return Selector{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownPeriod, s, strings.Join(Names(), ", "))
	}

	bounds := strings.Split(strings.TrimPrefix(s, customPrefix), "..")
	if len(bounds) != 2 {
		return Selector{}, fmt.Errorf("custom period %q: want FROM..TO", s)
	}

	fromDate, startHour, err := parseBound(bounds[0], loc)
	if err != nil {
		return Selector{}, err
	}
	toDate, endHour, err := parseBound(bounds[1], loc)
	if err != nil {
		return Selector{}, err
	}
	return NewCustom(fromDate, startHour, toDate, endHour)
}

// Names lists every selectable period kind
func Names() []string {
	names := make([]string, 0, len(presetOffsets)+3)
	for k := range presetOffsets {
		names = append(names, string(k))
	}
	names = append(names, string(Today), string(Yesterday))
	sort.Strings(names)
	return append(names, string(Custom))
}

func parseBound(s string, loc *time.Location) (time.Time, string, error) {
	if loc == nil {
		loc = time.Local
	}
	date, hour, ok := strings.Cut(s, "@")
	if !ok {
		return time.Time{}, "", fmt.Errorf("custom bound %q: want YYYY-MM-DD@HH", s)
	}
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("custom bound %q: %w", s, err)
	}
	return t, hour, nil
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !validHour(h) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHour, s)
	}
	return h, nil
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(lastMilli), t.Location())
}
