package views

import (
	"fmt"

	"github.com/aristath/scenariodesk/internal/domain"
)

// List is an ordered list of admitted views. It is not safe for concurrent
// use; the owning desk serializes access.
type List struct {
	views []domain.View
}

// NewList creates a list seeded with a copy of initial.
func NewList(initial ...domain.View) *List {
	return &List{views: domain.CloneViews(initial)}
}

// Len returns the number of views.
func (l *List) Len() int { return len(l.views) }

// Views returns a copy of the current views.
func (l *List) Views() []domain.View {
	return domain.CloneViews(l.views)
}

// Append adds already-admitted views to the end of the list.
func (l *List) Append(vs ...domain.View) {
	l.views = append(l.views, vs...)
}

// Remove deletes the view at index i and shifts the rest down.
func (l *List) Remove(i int) (domain.View, error) {
	if i < 0 || i >= len(l.views) {
		return domain.View{}, domain.NewValidationError(domain.CodeIndexOutOfRange,
			fmt.Sprintf("view index %d out of range [0, %d)", i, len(l.views)))
	}
	removed := l.views[i]
	next := make([]domain.View, 0, len(l.views)-1)
	next = append(next, l.views[:i]...)
	l.views = append(next, l.views[i+1:]...)
	return removed, nil
}

// Replace swaps the whole list for a copy of vs.
func (l *List) Replace(vs []domain.View) {
	l.views = domain.CloneViews(vs)
}

// Clear empties the list.
func (l *List) Clear() {
	l.views = l.views[:0:0]
}

// ApplyTemplate replaces the list with the template's views. An empty key
// leaves the list untouched and reports false.
func (l *List) ApplyTemplate(key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	t, err := LookupTemplate(key)
	if err != nil {
		return false, err
	}
	l.Replace(t.Views)
	return true, nil
}
