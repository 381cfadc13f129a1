package domain

type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Phone    string `json:"phone,omitempty"`
}

// MenuItem doubles as a cart line and an order line through Qty.
type MenuItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
	Qty      int     `json:"qty,omitempty"`
}

// Quantity treats a missing qty as one.
func (m MenuItem) Quantity() int {
	if m.Qty <= 0 {
		return 1
	}
	return m.Qty
}

func (m MenuItem) Subtotal() float64 { return m.Price * float64(m.Quantity()) }

type Order struct {
	ID           string     `json:"id"`
	StudentID    int        `json:"studentId"`
	StudentName  string     `json:"studentName"`
	StudentPhone string     `json:"studentPhone"`
	Items        []MenuItem `json:"items"`
	Total        float64    `json:"total"`
	Status       Status     `json:"status"`
	Location     string     `json:"location"`
	Date         string     `json:"date"` // YYYY-MM-DD
	Time         string     `json:"time"` // HH:MM
	IsReviewed   bool       `json:"isReviewed,omitempty"`
}

func (o Order) Clone() Order {
	c := o
	c.Items = append([]MenuItem(nil), o.Items...)
	return c
}

// ItemNames joins line item names for one-line listings.
func (o Order) ItemNames() []string {
	names := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		names = append(names, it.Name)
	}
	return names
}

type Review struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Stars   int    `json:"stars"`
	Date    string `json:"date,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// LineTotal sums price*qty over items.
func LineTotal(items []MenuItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
