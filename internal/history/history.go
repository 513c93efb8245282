// Package history keeps an in-memory ring buffer per sensor field of the
// averages observed at each successful fetch, with min/peak/avg statistics.
// It backs the trend sparklines on the metric cards.
package history

import (
	"math"
	"time"

	"github.com/luki/linemon/internal/sensor"
)

// Point is a single observation in a trend.
type Point struct {
	Value float64
	Time  time.Time
}

// Buffer stores a ring buffer of observations for one field.
type Buffer struct {
	Points []Point
	Max    int // capacity
	Min    float64
	Peak   float64
}

// NewBuffer creates a new ring buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		Points: make([]Point, 0, capacity),
		Max:    capacity,
		Min:    math.MaxFloat64,
		Peak:   -math.MaxFloat64,
	}
}

// Push adds a new observation.
func (b *Buffer) Push(v float64, t time.Time) {
	p := Point{Value: v, Time: t}
	if len(b.Points) >= b.Max {
		copy(b.Points, b.Points[1:])
		b.Points[len(b.Points)-1] = p
	} else {
		b.Points = append(b.Points, p)
	}

	if v < b.Min {
		b.Min = v
	}
	if v > b.Peak {
		b.Peak = v
	}
}

// Avg returns the average across all stored points.
func (b *Buffer) Avg() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range b.Points {
		sum += p.Value
	}
	return sum / float64(len(b.Points))
}

// LastNPoints returns a copy of the last n points.
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := len(b.Points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.Points[start:]))
	copy(out, b.Points[start:])
	return out
}

// Store manages one buffer per field.
type Store struct {
	Data     map[sensor.Field]*Buffer
	Capacity int
}

// NewStore creates a new store with the given per-field capacity.
func NewStore(capacity int) *Store {
	return &Store{
		Data:     make(map[sensor.Field]*Buffer),
		Capacity: capacity,
	}
}

// Record adds an observation for the given field.
func (s *Store) Record(f sensor.Field, v float64, t time.Time) {
	b, ok := s.Data[f]
	if !ok {
		b = NewBuffer(s.Capacity)
		s.Data[f] = b
	}
	b.Push(v, t)
}

// Get returns the buffer for a field, or nil.
func (s *Store) Get(f sensor.Field) *Buffer {
	return s.Data[f]
}
