package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"campus-crave/internal/domain"
)

var (
	brandStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316"))
	headStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

var statusStyles = map[domain.Status]lipgloss.Style{
	domain.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")),
	domain.StatusPreparing: lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
	domain.StatusReady:     lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")),
	domain.StatusOut:       lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE")),
	domain.StatusDelivered: lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
	domain.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
}

var roleKeys = map[domain.Role]string{
	domain.RoleStudent: "↑/↓ move · tab menu/orders · enter add · - less · l location · c checkout · x cancel · m modify · r rate · ? bot",
	domain.RoleKitchen: "↑/↓ move · s start cooking · r ready",
	domain.RoleRider:   "↑/↓ move · a accept · d delivered · o optimize route",
	domain.RoleAdmin:   "↑/↓ move · n new item · x delete item · R reset revenue · t today/yesterday",
}

func (a *App) View() string {
	switch a.state {
	case stateLanding:
		return a.viewLanding()
	case stateLogin:
		return a.viewLogin()
	}

	var body string
	switch a.user.Role {
	case domain.RoleStudent:
		body = a.viewStudent()
	case domain.RoleKitchen:
		body = a.viewKitchen()
	case domain.RoleRider:
		body = a.viewRider()
	case domain.RoleAdmin:
		body = a.viewAdmin()
	}

	header := brandStyle.Render("Campus Crave") + mutedStyle.Render(" · "+a.user.Role.Label()+" portal · "+a.user.Name)
	parts := []string{header, "", body, ""}
	if a.prompt != promptNone {
		parts = append(parts, a.promptLabel()+" "+a.input.View())
	}
	parts = append(parts, a.statusLine(), mutedStyle.Render(roleKeys[a.user.Role]+" · q quit"))
	return strings.Join(parts, "\n")
}

func (a *App) viewLanding() string {
	lines := []string{
		brandStyle.Render("Campus Crave"),
		"Hot campus food, cooked to order and brought to your block.",
		"",
		headStyle.Render("Portals"),
	}
	for _, r := range domain.Roles {
		lines = append(lines, "  • "+r.Label())
	}
	lines = append(lines, "", mutedStyle.Render("enter sign in · q quit"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) viewLogin() string {
	tabs := make([]string, 0, len(domain.Roles))
	for i, r := range domain.Roles {
		if i == a.loginRole {
			tabs = append(tabs, cursorStyle.Render("["+r.Label()+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+r.Label()+" "))
		}
	}

	email, password := a.loginEmail, ""
	switch a.prompt {
	case promptEmail:
		email = a.input.View()
	case promptPassword:
		password = a.input.View()
	}

	lines := []string{
		brandStyle.Render("Campus Crave") + mutedStyle.Render(" · sign in"),
		"",
		strings.Join(tabs, " "),
		"",
		"Email    " + email,
		"Password " + password,
	}
	if a.err != nil {
		lines = append(lines, "", errStyle.Render(a.err.Error()))
	}
	lines = append(lines, "", mutedStyle.Render("tab portal · enter continue · esc quit"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) viewStudent() string {
	var menu []string
	menu = append(menu, a.title("Menu", a.focus == focusMenu))
	category := ""
	for i, m := range a.menu {
		if m.Category != category {
			category = m.Category
			menu = append(menu, mutedStyle.Render(category))
		}
		menu = append(menu, a.row(a.focus == focusMenu && i == a.cursor, fmt.Sprintf("%-28s %s", m.Name, money(m.Price))))
	}

	cart := []string{headStyle.Render("Cart")}
	if a.cart.Len() == 0 {
		cart = append(cart, mutedStyle.Render("empty"))
	}
	for _, l := range a.cart.Items() {
		cart = append(cart, fmt.Sprintf("%dx %-24s %s", l.Quantity(), l.Name, money(l.Subtotal())))
	}
	cart = append(cart,
		"Total "+money(a.cart.Total()),
		"Drop at "+domain.Locations[a.location],
		"",
		a.title("My orders", a.focus == focusOrders),
	)
	if len(a.orders) == 0 {
		cart = append(cart, mutedStyle.Render("no orders yet"))
	}
	for i, o := range a.orders {
		line := fmt.Sprintf("%s %s %s", o.ID, status(o.Status), money(o.Total))
		if o.IsReviewed {
			line += mutedStyle.Render(" rated")
		}
		cart = append(cart, a.row(a.focus == focusOrders && i == a.cursor, line))
	}
	if a.reply != "" {
		cart = append(cart, "", headStyle.Render("CampusBot"), a.reply)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(strings.Join(menu, "\n")),
		boxStyle.Render(strings.Join(cart, "\n")),
	)
}

func (a *App) viewKitchen() string {
	b := a.kitchen
	counts := fmt.Sprintf("Pending %d · Preparing %d", b.Pending, b.Preparing)

	prep := []string{headStyle.Render("To prepare")}
	if len(b.ToPrepare) == 0 {
		prep = append(prep, mutedStyle.Render("nothing to cook"))
	}
	for _, p := range b.ToPrepare {
		prep = append(prep, fmt.Sprintf("%3dx %s", p.Qty, p.Name))
	}

	active := []string{headStyle.Render("Active orders")}
	for i, o := range b.Active {
		active = append(active, a.row(i == a.cursor, orderLine(o)))
	}
	if len(b.Completed) > 0 {
		active = append(active, "", headStyle.Render("Recently completed"))
		for _, o := range b.Completed {
			active = append(active, "  "+orderLine(o))
		}
	}

	return counts + "\n" + lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(strings.Join(active, "\n")),
		boxStyle.Render(strings.Join(prep, "\n")),
	)
}

func (a *App) viewRider() string {
	b := a.rider
	jobs := []string{headStyle.Render("Available pickups")}
	for i, o := range b.Available {
		jobs = append(jobs, a.row(i == a.cursor, jobLine(o)))
	}
	jobs = append(jobs, "", headStyle.Render("My deliveries"))
	for i, o := range b.MyJobs {
		jobs = append(jobs, a.row(len(b.Available)+i == a.cursor, jobLine(o)))
	}

	side := []string{headStyle.Render("Route")}
	if a.route == nil {
		side = append(side, mutedStyle.Render("accept two or more jobs, then press o"))
	} else {
		side = append(side, a.route.Route)
		for i, s := range a.route.Stops {
			side = append(side, fmt.Sprintf("%d. %s", i+1, s))
		}
	}
	if len(b.Delivered) > 0 {
		side = append(side, "", headStyle.Render("Delivered"))
		for _, o := range b.Delivered {
			side = append(side, okStyle.Render(o.ID)+" "+o.Location)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(strings.Join(jobs, "\n")),
		boxStyle.Render(strings.Join(side, "\n")),
	)
}

func (a *App) viewAdmin() string {
	s := a.stats
	stats := boxStyle.Render(strings.Join([]string{
		headStyle.Render("Stats"),
		"Today     " + money(s.TodayRevenue),
		"Weekly    " + money(s.WeeklyRevenue),
		"Monthly   " + money(s.MonthlyRevenue),
		fmt.Sprintf("Orders    %d", s.OrdersToday),
		fmt.Sprintf("Users     %d", s.TotalUsers),
	}, "\n"))

	menu := []string{headStyle.Render("Menu")}
	for i, m := range a.menu {
		menu = append(menu, a.row(i == a.cursor, fmt.Sprintf("%-28s %-14s %s", m.Name, m.Category, money(m.Price))))
	}

	orders := []string{headStyle.Render("Orders " + a.day)}
	if len(a.dayOrders) == 0 {
		orders = append(orders, mutedStyle.Render("none"))
	}
	for _, o := range a.dayOrders {
		orders = append(orders, orderLine(o))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		stats,
		boxStyle.Render(strings.Join(menu, "\n")),
		boxStyle.Render(strings.Join(orders, "\n")),
	)
}

func (a *App) title(s string, focused bool) string {
	if focused {
		return cursorStyle.Render(s)
	}
	return headStyle.Render(s)
}

func (a *App) row(selected bool, s string) string {
	if selected {
		return cursorStyle.Render("> ") + s
	}
	return "  " + s
}

func (a *App) promptLabel() string {
	switch a.prompt {
	case promptPhone:
		return "Phone"
	case promptReview:
		return "Rate " + a.reviewID
	case promptBot:
		return "Ask"
	case promptMenuItem:
		return "New item"
	}
	return ">"
}

func (a *App) statusLine() string {
	switch {
	case a.err != nil:
		return errStyle.Render(a.err.Error())
	case a.busy:
		return mutedStyle.Render("working…")
	case a.note != "":
		return okStyle.Render(a.note)
	}
	return ""
}

func orderLine(o domain.Order) string {
	return fmt.Sprintf("%s %s %s %s", o.ID, status(o.Status), o.Time, strings.Join(o.ItemNames(), ", "))
}

func jobLine(o domain.Order) string {
	return fmt.Sprintf("%s %s %s · %s %s", o.ID, status(o.Status), o.Location, o.StudentName, o.StudentPhone)
}

func status(s domain.Status) string {
	if st, ok := statusStyles[s]; ok {
		return st.Render(string(s))
	}
	return string(s)
}

func money(v float64) string { return fmt.Sprintf("Rs. %.0f", v) }
