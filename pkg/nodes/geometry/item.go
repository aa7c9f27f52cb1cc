// Package geometry is the reference plug-in for geometry graphs. It
// registers primitive, transform, boolean, math and output node types
// whose geometry values are solids built by a kernel.Kernel.
package geometry

import (
	"encoding/json"

	"github.com/chazu/nodeforge/pkg/kernel"
)

// Item is one named solid flowing along a geometry socket. A socket
// carries either a single Item or a []Item.
type Item struct {
	Name  string
	Solid kernel.Solid
}

// MarshalJSON reports the item's name and bounding box; the solid
// itself has no serial form.
func (it Item) MarshalJSON() ([]byte, error) {
	var w struct {
		Name string     `json:"name"`
		Min  [3]float64 `json:"min"`
		Max  [3]float64 `json:"max"`
	}
	w.Name = it.Name
	if it.Solid != nil {
		w.Min, w.Max = it.Solid.BoundingBox()
	}
	return json.Marshal(w)
}

// Items flattens a geometry socket value into a list. Nil, unknown values
// and items without a solid are dropped.
func Items(v any) []Item {
	switch x := v.(type) {
	case Item:
		if x.Solid != nil {
			return []Item{x}
		}
	case *Item:
		if x != nil && x.Solid != nil {
			return []Item{*x}
		}
	case []Item:
		out := make([]Item, 0, len(x))
		for _, it := range x {
			if it.Solid != nil {
				out = append(out, it)
			}
		}
		return out
	case []any:
		var out []Item
		for _, e := range x {
			out = append(out, Items(e)...)
		}
		return out
	}
	return nil
}

// value packs items back into a socket value: nil for none, the bare item
// for one, the list otherwise.
func value(items []Item) any {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	return items
}
