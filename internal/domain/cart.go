package domain

// Cart is a student's unsubmitted selection. It lives only in the process
// that builds it and is never persisted.
type Cart struct {
	lines []MenuItem
}

// Add puts one more unit of item into the cart.
func (c *Cart) Add(item MenuItem) {
	for i := range c.lines {
		if c.lines[i].ID == item.ID {
			c.lines[i].Qty = c.lines[i].Quantity() + 1
			return
		}
	}
	item.Qty = 1
	c.lines = append(c.lines, item)
}

// UpdateQty changes a line's quantity by delta and drops it when it reaches zero.
func (c *Cart) UpdateQty(id int64, delta int) {
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.ID == id {
			l.Qty = l.Quantity() + delta
			if l.Qty <= 0 {
				continue
			}
		}
		out = append(out, l)
	}
	c.lines = out
}

func (c *Cart) Remove(id int64) {
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.ID != id {
			out = append(out, l)
		}
	}
	c.lines = out
}

// Replace overwrites the cart, used when a pending order is loaded back for changes.
func (c *Cart) Replace(items []MenuItem) {
	c.lines = append([]MenuItem(nil), items...)
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) Items() []MenuItem { return append([]MenuItem(nil), c.lines...) }

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Total() float64 { return LineTotal(c.lines) }
