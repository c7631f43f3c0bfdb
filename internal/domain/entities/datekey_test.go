package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	days := []time.Time{
		time.Date(2025, time.September, 1, 0, 0, 0, 0, loc),
		time.Date(2025, time.December, 31, 0, 0, 0, 0, loc),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, loc),
	}
	offsets := []time.Duration{0, time.Hour, 12*time.Hour + 30*time.Minute, 23*time.Hour + 59*time.Minute + 59*time.Second}

	for _, day := range days {
		want, ok := DateKeyIn(day, loc)
		require.True(t, ok)
		for _, off := range offsets {
			got, ok := DateKeyIn(day.Add(off), loc)
			require.True(t, ok)
			assert.Equal(t, want, got, "offset %s", off)
		}
	}
}

func TestDateKeyPadsMonthAndDay(t *testing.T) {
	k, ok := DateKeyIn(time.Date(2025, time.March, 7, 18, 0, 0, 0, time.UTC), time.UTC)
	require.True(t, ok)
	assert.Equal(t, DateKey("2025-03-07"), k)
}

func TestDateKeyUsesTargetLocation(t *testing.T) {
	instant := time.Date(2025, time.September, 14, 23, 30, 0, 0, time.UTC)
	budapest := time.FixedZone("CEST", 2*3600)

	k, ok := DateKeyIn(instant, budapest)
	require.True(t, ok)
	assert.Equal(t, DateKey("2025-09-15"), k)
}

func TestDateKeyInvalidInput(t *testing.T) {
	k, ok := DateKeyOf(time.Time{})
	assert.False(t, ok)
	assert.Empty(t, k)
}

func TestParseDateKey(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	tests := []struct {
		name    string
		in      string
		want    DateKey
		wantErr bool
	}{
		{name: "canonical", in: "2025-09-15", want: "2025-09-15"},
		{name: "padded whitespace", in: " 2025-09-15 ", want: "2025-09-15"},
		{name: "utc instant crossing midnight", in: "2025-09-14T23:30:00Z", want: "2025-09-15"},
		{name: "offset instant", in: "2025-09-15T08:00:00+02:00", want: "2025-09-15"},
		{name: "local timestamp", in: "2025-09-15T08:00:00", want: "2025-09-15"},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "tomorrow", wantErr: true},
		{name: "impossible day", in: "2025-02-30", wantErr: true},
		{name: "unpadded", in: "2025-9-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateKey(tt.in, loc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateKeyAddDays(t *testing.T) {
	k, err := DateKey("2025-12-30").AddDays(3)
	require.NoError(t, err)
	assert.Equal(t, DateKey("2026-01-02"), k)

	_, err = DateKey("nope").AddDays(1)
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestDateSetToggleIsInvolution(t *testing.T) {
	sets := []DateSet{
		nil,
		{},
		{"2025-09-17"},
		{"2025-09-01", "2025-09-02", "2025-09-17"},
	}
	keys := []DateKey{"2025-09-17", "2025-10-01"}

	for _, s := range sets {
		for _, k := range keys {
			before := s.Sorted()
			once := s.Toggle(k)
			assert.NotEqual(t, s.Contains(k), once.Contains(k))
			twice := once.Toggle(k)
			assert.True(t, s.Equal(twice), "toggle(toggle(%v, %s)) = %v", s, k, twice)
			assert.Equal(t, before, s.Sorted(), "toggle must not mutate its receiver")
		}
	}
}

func TestDateSetEqualIgnoresOrder(t *testing.T) {
	a := DateSet{"2025-09-02", "2025-09-01"}
	b := DateSet{"2025-09-01", "2025-09-02"}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(DateSet{"2025-09-01"}))
	assert.False(t, DateSet{"2025-09-01"}.Equal(a))
}

func TestDateSetNormalize(t *testing.T) {
	s, err := DateSet{"2025-09-01", "2025-09-01T10:00:00", "2025-09-02"}.Normalize(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, DateSet{"2025-09-01", "2025-09-02"}, s)

	_, err = DateSet{"bad"}.Normalize(time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestIDSetAddRemoveIdempotent(t *testing.T) {
	s := IDSet{1, 2}

	added := s.Add(2)
	assert.Equal(t, IDSet{1, 2}, added)
	assert.Equal(t, IDSet{1, 2, 3}, s.Add(3))

	removed := s.Remove(9)
	assert.Equal(t, IDSet{1, 2}, removed)
	assert.Equal(t, IDSet{2}, s.Remove(1))
	assert.Equal(t, IDSet{1, 2}, s, "receiver must not change")
}

func TestNilSetsMarshalAsEmptyArrays(t *testing.T) {
	out, err := json.Marshal(Member{Name: "Anna"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"availability":[]`)

	out, err = json.Marshal(Job{Title: "Roof"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"assigned_team":[]`)
	assert.Contains(t, string(out), `"schedule":[]`)
}
