package period

import (
	"errors"
	"testing"
	"time"
)

func TestResolvePresetDurations(t *testing.T) {
	now := time.Date(2024, 3, 10, 14, 30, 15, 0, time.UTC)

	tests := []struct {
		kind     Kind
		expected time.Duration
	}{
		{LastHour, time.Hour},
		{Last6Hours, 6 * time.Hour},
		{Last24Hours, 24 * time.Hour},
		{Last7Days, 7 * 24 * time.Hour},
		{Last30Days, 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w, err := Resolve(Preset(tt.kind), now)
			if err != nil {
				t.Fatalf("Resolve(%s) returned error: %v", tt.kind, err)
			}
			if got := w.Duration(); got != tt.expected {
				t.Errorf("Resolve(%s) duration = %v, want %v", tt.kind, got, tt.expected)
			}
			if !w.To.Equal(now) {
				t.Errorf("Resolve(%s) to = %v, want %v", tt.kind, w.To, now)
			}
		})
	}
}

func TestResolveDayBoundaries(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2024, 3, 1, 0, 45, 0, 0, loc)

	tests := []struct {
		name string
		kind Kind
		day  int
		mon  time.Month
	}{
		{"today", Today, 1, time.March},
		{"yesterday crosses month", Yesterday, 29, time.February},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Resolve(Preset(tt.kind), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantFrom := time.Date(2024, tt.mon, tt.day, 0, 0, 0, 0, loc)
			wantTo := time.Date(2024, tt.mon, tt.day, 23, 59, 59, 999_000_000, loc)
			if !w.From.Equal(wantFrom) {
				t.Errorf("from = %v, want %v", w.From, wantFrom)
			}
			if !w.To.Equal(wantTo) {
				t.Errorf("to = %v, want %v", w.To, wantTo)
			}
			if w.From.Location() != loc || w.To.Location() != loc {
				t.Errorf("window lost location: %v / %v", w.From.Location(), w.To.Location())
			}
		})
	}
}

func TestResolveCustom(t *testing.T) {
	fromDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	toDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	sel, err := NewCustom(fromDate, "09", toDate, "17")
	if err != nil {
		t.Fatalf("NewCustom returned error: %v", err)
	}

	w, err := Resolve(sel, time.Now())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	wantFrom := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	wantTo := time.Date(2024, 1, 2, 17, 59, 59, 999_000_000, time.Local)
	if !w.From.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", w.From, wantFrom)
	}
	if !w.To.Equal(wantTo) {
		t.Errorf("to = %v, want %v", w.To, wantTo)
	}
}

func TestResolveCustomEndHourInclusive(t *testing.T) {
	day := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	sel, err := NewCustom(day, "00", day, "23")
	if err != nil {
		t.Fatal(err)
	}
	w, err := Resolve(sel, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	last := time.Date(2024, 5, 5, 23, 59, 59, 999_000_000, time.UTC)
	if !w.Contains(last) {
		t.Errorf("window %v should contain %v", w, last)
	}
	if w.Contains(last.Add(time.Millisecond)) {
		t.Errorf("window %v should not contain next day", w)
	}
}

func TestResolveCustomErrors(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	inverted, err := NewCustom(d1, "00", d2, "23")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(inverted, time.Now()); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("inverted range error = %v, want ErrInvertedRange", err)
	}

	sameDay, err := NewCustom(d1, "18", d1, "09")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(sameDay, time.Now()); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("same-day inverted hours error = %v, want ErrInvertedRange", err)
	}

	if _, err := NewCustom(d1, "24", d1, "01"); !errors.Is(err, ErrInvalidHour) {
		t.Errorf("hour 24 error = %v, want ErrInvalidHour", err)
	}
	if _, err := NewCustom(d1, "ab", d1, "01"); !errors.Is(err, ErrInvalidHour) {
		t.Errorf("non-numeric hour error = %v, want ErrInvalidHour", err)
	}

	if _, err := Resolve(Selector{Kind: "fortnight"}, time.Now()); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("unknown kind error = %v, want ErrUnknownPeriod", err)
	}
}

func TestResolveIsPure(t *testing.T) {
	now := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	for _, name := range Names() {
		if name == string(Custom) {
			continue
		}
		sel := Preset(Kind(name))
		a, errA := Resolve(sel, now)
		b, errB := Resolve(sel, now)
		if errA != nil || errB != nil {
			t.Fatalf("%s: unexpected errors %v / %v", name, errA, errB)
		}
		if a != b {
			t.Errorf("%s: Resolve not idempotent: %v vs %v", name, a, b)
		}
	}
}

func TestWindowHours(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		length   time.Duration
		expected int
	}{
		{"ninety minutes rounds up", 90 * time.Minute, 2},
		{"exact hour", time.Hour, 1},
		{"one second", time.Second, 1},
		{"empty window floors to one", 0, 1},
		{"full day", 24 * time.Hour, 24},
		{"day with trailing millis", 24*time.Hour - time.Millisecond, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{From: base, To: base.Add(tt.length)}
			if got := w.Hours(); got != tt.expected {
				t.Errorf("Hours() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", string(Last24Hours), false},
		{"today", "today", false},
		{" Last-7-Days ", "last-7-days", false},
		{"custom:2024-01-01@09..2024-01-02@17", "custom:2024-01-01@09..2024-01-02@17", false},
		{"custom:2024-01-01@09", "", true},
		{"custom:2024-13-01@09..2024-01-02@17", "", true},
		{"custom:2024-01-01@25..2024-01-02@17", "", true},
		{"last-year", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := ParseSelector(tt.input, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSelector(%q) expected error, got %v", tt.input, sel)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelector(%q) returned error: %v", tt.input, err)
			}
			if got := sel.String(); got != tt.want {
				t.Errorf("ParseSelector(%q).String() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSelectorLabel(t *testing.T) {
	if got := Preset(Last6Hours).Label(); got != "Last 6 Hours" {
		t.Errorf("Label() = %q, want %q", got, "Last 6 Hours")
	}
	if got := (Selector{Kind: Custom}).Label(); got != "Custom" {
		t.Errorf("Label() = %q, want %q", got, "Custom")
	}
}
