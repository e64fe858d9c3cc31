// Package sections tracks which named region of the page is under the
// viewport reference point.
package sections

import (
	"strings"
	"sync"
)

// Section is a named anchor of the page.
type Section string

const (
	Home           Section = "home"
	About          Section = "about"
	Projects       Section = "projects"
	Experience     Section = "experience"
	Certifications Section = "certifications"
	Publications   Section = "publications"
	SocialImpact   Section = "social-impact"
)

// DefaultOffset is added to the scroll position to find the reference point.
const DefaultOffset = 100

// All lists the sections in page order.
func All() []Section {
	return []Section{Home, About, Projects, Experience, Certifications, Publications, SocialImpact}
}

// Parse maps an anchor id to a Section.
func Parse(id string) (Section, bool) {
	for _, s := range All() {
		if string(s) == id {
			return s, true
		}
	}
	return "", false
}

// Label is the navigation caption, e.g. "Social Impact".
func (s Section) Label() string {
	words := strings.Split(string(s), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Bounds is the vertical extent of a rendered section.
type Bounds struct {
	Top    float64
	Height float64
}

// Contains reports whether y falls within [Top, Top+Height).
func (b Bounds) Contains(y float64) bool {
	return y >= b.Top && y < b.Top+b.Height
}

// Layout maps sections to their measured bounds. Sections missing from the
// layout are not rendered and never become active.
type Layout map[Section]Bounds

// Locate returns the first section in page order containing scrollY+offset,
// or previous when none does.
func Locate(scrollY, offset float64, layout Layout, previous Section) Section {
	point := scrollY + offset
	for _, s := range All() {
		b, ok := layout[s]
		if !ok {
			continue
		}
		if b.Contains(point) {
			return s
		}
	}
	return previous
}

// Tracker owns the active section and notifies listeners when it changes.
type Tracker struct {
	mu        sync.Mutex
	offset    float64
	active    Section
	nextID    int
	listeners map[int]func(Section)
}

// NewTracker starts on Home with the default offset.
func NewTracker() *Tracker {
	return &Tracker{offset: DefaultOffset, active: Home, listeners: make(map[int]func(Section))}
}

// Resume starts a tracker from a previously active section.
func Resume(active Section) *Tracker {
	t := NewTracker()
	if _, ok := Parse(string(active)); ok {
		t.active = active
	}
	return t
}

// Active returns the current section.
func (t *Tracker) Active() Section {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Subscribe registers fn for changes. The returned func removes it.
func (t *Tracker) Subscribe(fn func(Section)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.listeners, id)
			t.mu.Unlock()
		})
	}
}

// Observe handles one scroll position and returns the active section.
func (t *Tracker) Observe(scrollY float64, layout Layout) Section {
	t.mu.Lock()
	next := Locate(scrollY, t.offset, layout, t.active)
	if next == t.active {
		t.mu.Unlock()
		return next
	}
	t.active = next
	fns := make([]func(Section), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}
