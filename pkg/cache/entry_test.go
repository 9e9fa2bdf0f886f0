package cache

import (
	"net/http"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{
			name: "just stored",
			now:  t0,
			want: false,
		},
		{
			name: "one nanosecond before expiry",
			now:  t0.Add(time.Hour - time.Nanosecond),
			want: false,
		},
		{
			name: "exactly at expiry",
			now:  t0.Add(time.Hour),
			want: true,
		},
		{
			name: "long expired",
			now:  t0.Add(24 * time.Hour),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{StoredAt: t0, TTL: time.Hour}
			if got := entry.IsExpired(tt.now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Remaining(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "full lifespan",
			now:  t0,
			want: time.Hour,
		},
		{
			name: "5 minutes remaining",
			now:  t0.Add(55 * time.Minute),
			want: 5 * time.Minute,
		},
		{
			name: "already expired",
			now:  t0.Add(2 * time.Hour),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{StoredAt: t0, TTL: time.Hour}
			if got := entry.Remaining(tt.now); got != tt.want {
				t.Errorf("Remaining() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Age(t *testing.T) {
	entry := &Entry{StoredAt: t0, TTL: time.Hour}

	if got := entry.Age(t0.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Age() = %v, want 90s", got)
	}
	if got := entry.Age(t0.Add(-time.Second)); got != 0 {
		t.Errorf("Age() before store = %v, want 0", got)
	}
}

func TestEntry_Clone(t *testing.T) {
	orig := &Entry{
		StatusCode: 200,
		Header:     http.Header{"Cache-Control": []string{"public, max-age=3600"}},
		Body:       []byte("body"),
		StoredAt:   t0,
		TTL:        time.Hour,
	}

	c := orig.Clone()
	c.Header.Set("Cache-Control", "no-store")

	if got := orig.Header.Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("original header modified through clone: %q", got)
	}
	if c.StatusCode != orig.StatusCode || string(c.Body) != string(orig.Body) || !c.StoredAt.Equal(orig.StoredAt) {
		t.Errorf("Clone() = %+v, want copy of %+v", c, orig)
	}

	empty := (&Entry{}).Clone()
	if empty.Header == nil {
		t.Error("Clone() of entry without headers should have a non-nil header map")
	}
}
