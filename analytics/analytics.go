// Package analytics delivers "view item list" page views to external sinks
// without ever blocking or failing the caller.
package analytics

import (
	"context"
	"strings"

	"github.com/ncobase/unicourse/course"
)

// EventName is the name page views are published under.
const EventName = "view_item_list"

// Item is one course shown on a page.
type Item struct {
	ID       string `json:"item_id"`
	Name     string `json:"item_name"`
	Category string `json:"item_category"`
	Index    int    `json:"index"`
}

// PageView reports one page of results delivered to the user.
type PageView struct {
	ListID   string `json:"list_id"`
	ListName string `json:"list_name"`
	Page     int    `json:"page"`
	Items    []Item `json:"items"`
}

// ItemIDs returns the identifiers of the page's items in order.
func (p PageView) ItemIDs() []string {
	ids := make([]string, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	return ids
}

// Event returns the flat event payload.
func (p PageView) Event() map[string]any {
	return map[string]any{
		"event":      EventName,
		"list_id":    p.ListID,
		"list_name":  p.ListName,
		"page":       p.Page,
		"item_ids":   p.ItemIDs(),
		"item_count": len(p.Items),
	}
}

// ListName names a listing after its active category constraints, in the
// order location, discipline, university.
func ListName(f course.FilterSet) string {
	parts := []string{"Corsi"}
	for _, v := range []string{f.Location, f.Discipline, f.University} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

// NewPageView builds a page view for courses delivered at page index page.
// offset is the number of items delivered before this page.
func NewPageView(listID string, f course.FilterSet, page, offset int, items []course.Course) PageView {
	pv := PageView{
		ListID:   listID,
		ListName: ListName(f),
		Page:     page,
		Items:    make([]Item, len(items)),
	}
	for i, c := range items {
		category := c.Discipline.Name
		if category == "" {
			category = "course"
		}
		pv.Items[i] = Item{ID: c.ID, Name: c.Name, Category: category, Index: offset + i}
	}
	return pv
}

// Notifier receives page views.
type Notifier interface {
	Notify(ctx context.Context, pv PageView) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, pv PageView) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, pv PageView) error {
	return f(ctx, pv)
}

// Nop discards every page view.
var Nop Notifier = NotifierFunc(func(context.Context, PageView) error { return nil })
