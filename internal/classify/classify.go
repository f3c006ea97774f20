package classify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pbaille/teambots/internal/dates"
	"github.com/pbaille/teambots/internal/domain"
)

// Threshold assigns Category to offsets of at most MaxDays
type Threshold struct {
	MaxDays  int             `yaml:"max_days"`
	Category domain.Category `yaml:"category"`
}

// Policy buckets a signed day offset. Negative offsets always land in
// Expired; the rest go to the first threshold they do not exceed.
type Policy struct {
	Expired    domain.Category `yaml:"expired"`
	Thresholds []Threshold     `yaml:"thresholds"`
}

// Validate checks that thresholds are non-negative and strictly ascending
func (p Policy) Validate() error {
	if p.Expired.Key == "" {
		return fmt.Errorf("expired category needs a key")
	}
	for i, t := range p.Thresholds {
		if t.MaxDays < 0 {
			return fmt.Errorf("threshold %d: max_days must be >= 0, got %d", i, t.MaxDays)
		}
		if t.Category.Key == "" {
			return fmt.Errorf("threshold %d: category needs a key", i)
		}
		if i > 0 && t.MaxDays <= p.Thresholds[i-1].MaxDays {
			return fmt.Errorf("threshold %d: max_days %d not above %d", i, t.MaxDays, p.Thresholds[i-1].MaxDays)
		}
	}
	return nil
}

// Categories lists Expired followed by the thresholds, in order
func (p Policy) Categories() []domain.Category {
	out := []domain.Category{p.Expired}
	for _, t := range p.Thresholds {
		out = append(out, t.Category)
	}
	return out
}

// Bucket returns the category for a day offset, or false when the offset is
// beyond the widest threshold.
func (p Policy) Bucket(days int) (domain.Category, bool) {
	if days < 0 {
		return p.Expired, true
	}
	for _, t := range p.Thresholds {
		if days <= t.MaxDays {
			return t.Category, true
		}
	}
	return domain.Category{}, false
}

// Classified pairs an item with its bucket
type Classified[T any] struct {
	Item     T
	Date     time.Time
	Days     int
	Category domain.Category
}

// Apply buckets every item whose date is known. Items without a date, or
// beyond every threshold, are left out.
func Apply[T any](items []T, dateOf func(T) (time.Time, bool), today time.Time, p Policy) []Classified[T] {
	var out []Classified[T]
	for _, item := range items {
		d, ok := dateOf(item)
		if !ok || d.IsZero() {
			continue
		}
		days := dates.DaysBetween(today, d)
		cat, ok := p.Bucket(days)
		if !ok {
			continue
		}
		out = append(out, Classified[T]{Item: item, Date: d, Days: days, Category: cat})
	}
	return out
}

// Counts tallies classified items per category key
func Counts[T any](items []Classified[T]) map[string]int {
	counts := make(map[string]int)
	for _, c := range items {
		counts[c.Category.Key]++
	}
	return counts
}

// SortByUrgency orders items by ascending day offset, then by name
func SortByUrgency[T any](items []Classified[T], name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Days != items[j].Days {
			return items[i].Days < items[j].Days
		}
		return name(items[i].Item) < name(items[j].Item)
	})
}

// Age is how a job listing is treated
type Age int

const (
	AgeSkip Age = iota
	AgeNew
	AgeStale
)

// JobWindow decides which listings are worth reporting
type JobWindow struct {
	NewDays   int `yaml:"new_days"`
	StaleDays int `yaml:"stale_days"`
}

// Classify returns AgeNew for listings at most NewDays old (including
// future-dated ones), AgeStale for listings older than StaleDays.
func (w JobWindow) Classify(listed, today time.Time) (Age, int) {
	age := dates.DaysBetween(listed, today)
	switch {
	case age <= w.NewDays:
		return AgeNew, age
	case age > w.StaleDays:
		return AgeStale, age
	}
	return AgeSkip, age
}

// NormalizeStatus folds dash variants and repeated spaces, and lowercases
func NormalizeStatus(s string) string {
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// StatusAllowed reports whether status is in the allow list after
// normalisation of both sides.
func StatusAllowed(status string, allowed []string) bool {
	n := NormalizeStatus(status)
	if n == "" {
		return false
	}
	for _, a := range allowed {
		if NormalizeStatus(a) == n {
			return true
		}
	}
	return false
}
