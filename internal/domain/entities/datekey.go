package entities

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD form of a DateKey.
const DateKeyLayout = "2006-01-02"

// DateKey identifies a calendar day in the local timezone of whoever produced
// it. Every conversion from a time value to a day goes through DateKeyIn so
// that the time-of-day component never influences which cell a date lands in.
type DateKey string

// DateKeyIn returns the key of the calendar day t falls on in loc. The zero
// time has no day and yields ok == false.
func DateKeyIn(t time.Time, loc *time.Location) (DateKey, bool) {
	if t.IsZero() {
		return "", false
	}
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	if y < 0 || y > 9999 {
		return "", false
	}
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)), true
}

// DateKeyOf is DateKeyIn with the process-local timezone.
func DateKeyOf(t time.Time) (DateKey, bool) {
	return DateKeyIn(t, time.Local)
}

// Today returns the key of the current local day.
func Today() DateKey {
	k, _ := DateKeyOf(time.Now())
	return k
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseDateKey normalizes s to a DateKey. It accepts the canonical form as
// well as full timestamps, which are read in loc (an explicit offset in the
// timestamp is converted to loc first).
func ParseDateKey(s string, loc *time.Location) (DateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDateKey)
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateKeyLayout, s, loc); err == nil {
		k, _ := DateKeyIn(t, loc)
		return k, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			k, _ := DateKeyIn(t, loc)
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
}

// Valid reports whether k is in canonical form and names a real day.
func (k DateKey) Valid() bool {
	if len(k) != len(DateKeyLayout) {
		return false
	}
	_, err := time.Parse(DateKeyLayout, string(k))
	return err == nil
}

// Time returns local midnight of the day k names.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, string(k))
	}
	return t, nil
}

// AddDays returns the key n days after k.
func (k DateKey) AddDays(n int) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, string(k))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, string(k))
	}
	return DateKey(t.AddDate(0, 0, n).Format(DateKeyLayout)), nil
}

func (k DateKey) String() string { return string(k) }

// DateSet is an unordered set of days. Insertion order carries no meaning;
// use Sorted for display.
type DateSet []DateKey

// Contains reports whether k is a member of s.
func (s DateSet) Contains(k DateKey) bool {
	for _, d := range s {
		if d == k {
			return true
		}
	}
	return false
}

// Toggle returns a new set with k removed if present, otherwise added. s is
// left untouched, and toggling twice yields a set equal to s.
func (s DateSet) Toggle(k DateKey) DateSet {
	if s.Contains(k) {
		out := make(DateSet, 0, len(s))
		for _, d := range s {
			if d != k {
				out = append(out, d)
			}
		}
		return out
	}
	out := make(DateSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, k)
}

// Sorted returns the members of s in calendar order.
func (s DateSet) Sorted() DateSet {
	out := s.clone()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports set equality, ignoring order and duplicates.
func (s DateSet) Equal(other DateSet) bool {
	seen := make(map[DateKey]struct{}, len(s))
	for _, d := range s {
		seen[d] = struct{}{}
	}
	theirs := make(map[DateKey]struct{}, len(other))
	for _, d := range other {
		if _, ok := seen[d]; !ok {
			return false
		}
		theirs[d] = struct{}{}
	}
	return len(seen) == len(theirs)
}

// Normalize returns a deduplicated copy with every entry in canonical form.
func (s DateSet) Normalize(loc *time.Location) (DateSet, error) {
	out := make(DateSet, 0, len(s))
	for _, d := range s {
		k, err := ParseDateKey(string(d), loc)
		if err != nil {
			return nil, err
		}
		if !out.Contains(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// MarshalJSON encodes a nil set as an empty array.
func (s DateSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]DateKey(s))
}

func (s DateSet) clone() DateSet {
	if s == nil {
		return nil
	}
	return append(DateSet(nil), s...)
}

// IDSet is an unordered set of member ids.
type IDSet []int64

// Contains reports whether id is a member of s.
func (s IDSet) Contains(id int64) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns s ∪ {id}. Adding an existing id returns an equal set.
func (s IDSet) Add(id int64) IDSet {
	out := s.clone()
	if out == nil {
		out = IDSet{}
	}
	if out.Contains(id) {
		return out
	}
	return append(out, id)
}

// Remove returns s \ {id}. Removing an absent id returns an equal set.
func (s IDSet) Remove(id int64) IDSet {
	out := make(IDSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Dedup returns s without repeated ids, keeping first occurrences.
func (s IDSet) Dedup() IDSet {
	out := make(IDSet, 0, len(s))
	for _, v := range s {
		if !out.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// MarshalJSON encodes a nil set as an empty array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(s))
}

func (s IDSet) clone() IDSet {
	if s == nil {
		return nil
	}
	return append(IDSet(nil), s...)
}
