// internal/wishes/wishes.go
//
// Provides the fixed, ordered list of wishes that daily selection indexes into.
//
// Loading behavior (Load):
//   1. If a path is given (WISHES_FILE), read one wish per line from it.
//   2. Otherwise fall back to the embedded assets/wishes.txt.
//
// File format:
//   • One wish per line, shown verbatim (case and emoji preserved).
//   • Blank lines and lines starting with '#' are skipped.
//
// Changing the order or length of the list reshuffles every user's wish
// and orphans that day's vote counters, so edit between days.

package wishes

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dailywish/go-server/assets"
)

// ErrEmpty is returned when a wish source has no usable lines.
var ErrEmpty = errors.New("wishes: list is empty")

// List is an immutable ordered wish list.
type List struct {
	items []string
}

// New copies items into a List.
func New(items ...string) List {
	return List{items: append([]string(nil), items...)}
}

// Len returns the number of wishes.
func (l List) Len() int { return len(l.items) }

// At returns the wish at i, or "" when i is out of range.
func (l List) At(i int) string {
	if i < 0 || i >= len(l.items) {
		return ""
	}
	return l.items[i]
}

// All returns a copy of the wishes in order.
func (l List) All() []string { return append([]string(nil), l.items...) }

var (
	defaultOnce sync.Once
	defaultList List
	defaultErr  error
)

// Default returns the embedded list, parsed once.
func Default() (List, error) {
	defaultOnce.Do(func() {
		items, err := assets.WishList()
		if err != nil {
			defaultErr = fmt.Errorf("wishes: read embedded list: %w", err)
			return
		}
		if len(items) == 0 {
			defaultErr = ErrEmpty
			return
		}
		defaultList = List{items: items}
	})
	return defaultList, defaultErr
}

// Load reads wishes from path, or returns Default when path is empty.
func Load(path string) (List, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return List{}, fmt.Errorf("wishes: open %s: %w", path, err)
	}
	defer f.Close()

	items, err := assets.ReadLines(f)
	if err != nil {
		return List{}, fmt.Errorf("wishes: read %s: %w", path, err)
	}
	if len(items) == 0 {
		return List{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return List{items: items}, nil
}
