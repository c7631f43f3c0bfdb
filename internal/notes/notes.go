// Package notes keeps the short per-day notes shown on the dashboard. They
// live in a local YAML file and never reach the API.
package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amire/crewboard/internal/domain/entities"
)

// Note is one line of a day's notes.
type Note struct {
	ID        int    `yaml:"id" json:"id"`
	Text      string `yaml:"text" json:"text"`
	Completed bool   `yaml:"completed" json:"completed"`
}

type dayNotes struct {
	Day   entities.DateKey `yaml:"day"`
	Notes []Note           `yaml:"notes"`
}

// Book holds every day's notes. The zero value is empty and ready to use.
type Book struct {
	days map[entities.DateKey][]Note
}

// For returns a copy of day's notes in the order they were added.
func (b *Book) For(day entities.DateKey) []Note {
	return append([]Note{}, b.days[day]...)
}

// Add appends an open note to day and returns it. Ids count up per day.
func (b *Book) Add(day entities.DateKey, text string) (Note, error) {
	if !day.Valid() {
		return Note{}, &entities.ValidationError{Field: "day", Reason: "must be a YYYY-MM-DD date"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, &entities.ValidationError{Field: "text", Reason: "is required"}
	}
	if b.days == nil {
		b.days = map[entities.DateKey][]Note{}
	}

	next := 1
	for _, n := range b.days[day] {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	note := Note{ID: next, Text: text}
	b.days[day] = append(b.days[day], note)
	return note, nil
}

// Toggle flips the completed flag of one of day's notes.
func (b *Book) Toggle(day entities.DateKey, id int) (Note, error) {
	notes := b.days[day]
	for i := range notes {
		if notes[i].ID == id {
			notes[i].Completed = !notes[i].Completed
			return notes[i], nil
		}
	}
	return Note{}, &entities.NotFoundError{Kind: "note", ID: id}
}

// File reads and writes a Book at a fixed path.
type File struct {
	path string
}

// NewFile creates a notes file handle. Nothing is read until Load.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the book. A missing file is an empty book.
func (f *File) Load() (*Book, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}

	var stored []dayNotes
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse notes %s: %w", f.path, err)
	}

	b := &Book{days: make(map[entities.DateKey][]Note, len(stored))}
	for _, d := range stored {
		if len(d.Notes) > 0 {
			b.days[d.Day] = append(b.days[d.Day], d.Notes...)
		}
	}
	return b, nil
}

// Save writes the book, oldest day first.
func (f *File) Save(b *Book) error {
	stored := make([]dayNotes, 0, len(b.days))
	for day, notes := range b.days {
		if len(notes) > 0 {
			stored = append(stored, dayNotes{Day: day, Notes: notes})
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].Day < stored[j].Day })

	data, err := yaml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create notes dir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write notes: %w", err)
	}
	return nil
}
