package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}

	// Verify it's not returning time.Now() by waiting a bit
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_JSONRoundTrip(t *testing.T) {
	orig := Time(time.Date(2024, 3, 15, 8, 30, 0, 123456000, time.UTC))

	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	var got Time
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}

	if !got.Std().Equal(orig.Std()) {
		t.Errorf("round trip = %v, want %v", got, orig)
	}
}

func TestTime_UnmarshalWithoutFraction(t *testing.T) {
	var got Time
	if err := got.UnmarshalJSON([]byte(`"2024-01-02T00:00:00Z"`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Std().Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTime_After(t *testing.T) {
	a := Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := Time(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	if !b.After(a) {
		t.Error("b.After(a) = false, want true")
	}
	if a.After(b) {
		t.Error("a.After(b) = true, want false")
	}
	if a.After(a) {
		t.Error("a.After(a) = true, want false")
	}
}
