// Package selection holds the package currently inspected in the detail view.
package selection

import (
	"sync"

	"github.com/glorpus-work/aurseek/pkg/aur"
)

// Item is anything the detail view can render: a search row or a full detail record.
type Item interface {
	Summary() aur.PackageSummary
}

// Holder keeps the most recently selected item. Each Select replaces the
// previous item; there is no explicit reset.
type Holder struct {
	mu      sync.RWMutex
	current Item
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Select makes item the current selection.
func (h *Holder) Select(item Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = item
}

// Current returns the selected item, or false when nothing has been selected
// and the detail view has nothing to render.
func (h *Holder) Current() (Item, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current, h.current != nil
}

// Detail returns the current selection when it is a full detail record.
func (h *Holder) Detail() (aur.PackageDetail, bool) {
	item, ok := h.Current()
	if !ok {
		return aur.PackageDetail{}, false
	}
	switch v := item.(type) {
	case aur.PackageDetail:
		return v, true
	case *aur.PackageDetail:
		if v == nil {
			return aur.PackageDetail{}, false
		}
		return *v, true
	default:
		return aur.PackageDetail{}, false
	}
}
