// Package tui is the terminal dashboard. One App shows one signed-in role's
// board, follows changes made by other instances and binds the role's
// actions to keys. It follows bubbletea's Model/Update/View loop.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"campus-crave/internal/domain"
	admindto "campus-crave/internal/microservices/admin/domain/dto"
	adminservice "campus-crave/internal/microservices/admin/service"
	authservice "campus-crave/internal/microservices/auth/service"
	botservice "campus-crave/internal/microservices/bot/service"
	kitchendto "campus-crave/internal/microservices/kitchen/domain/dto"
	kitchenservice "campus-crave/internal/microservices/kitchen/service"
	orderdto "campus-crave/internal/microservices/order/domain/dto"
	orderservice "campus-crave/internal/microservices/order/service"
	riderdto "campus-crave/internal/microservices/rider/domain/dto"
	riderservice "campus-crave/internal/microservices/rider/service"
)

// appState is the screen being shown.
type appState int

const (
	stateLanding appState = iota
	stateLogin
	statePortal
)

// prompt is what the text input is currently collecting.
type prompt int

const (
	promptNone prompt = iota
	promptEmail
	promptPassword
	promptPhone
	promptReview
	promptBot
	promptMenuItem
)

// focus picks which student list the cursor walks.
type focus int

const (
	focusMenu focus = iota
	focusOrders
)

var (
	ErrNothingSelected = errors.New("nothing selected")
	ErrNotReviewable   = errors.New("only delivered orders that are not yet reviewed can be rated")
	ErrBadMenuItem     = errors.New(`enter the item as "<name> <price>"`)
	ErrCartNotEmpty    = errors.New("your cart has items; press m again to replace them with this order")
)

// Services are the role services the dashboard drives.
type Services struct {
	Auth    authservice.AuthServiceInterface
	Orders  orderservice.OrderServiceInterface
	Kitchen kitchenservice.KitchenServiceInterface
	Rider   riderservice.RiderServiceInterface
	Admin   adminservice.AdminServiceInterface
	Bot     botservice.BotServiceInterface
}

// StoreChangedMsg reports that another instance rewrote a collection.
type StoreChangedMsg struct{ Key string }

// actionMsg carries the outcome of a service call run off the UI loop.
// after, when set, applies the result to the model.
type actionMsg struct {
	note  string
	err   error
	after func(*App)
}

type AppOption func(*App)

// WithContext sets the context service calls run under.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

type App struct {
	ctx    context.Context
	svc    Services
	launch Launch
	state  appState
	user   domain.User

	width  int
	height int

	input    textinput.Model
	prompt   prompt
	reviewID string

	loginRole  int
	loginEmail string

	focus    focus
	cursor   int
	cart     domain.Cart
	location int
	phone    string
	day      string
	modifyID string

	menu      []domain.MenuItem
	orders    []domain.Order
	kitchen   kitchendto.Board
	rider     riderdto.Board
	route     *riderdto.RouteResponse
	stats     admindto.Stats
	dayOrders []domain.Order
	reply     string

	busy bool
	note string
	err  error
}

// NewApp opens the screen launch asks for. A portal launch with an email
// signs that identity in directly; without one it shows the login form,
// which checks the shared password and the chosen portal.
func NewApp(svc Services, launch Launch, opts ...AppOption) *App {
	input := textinput.New()
	input.CharLimit = 200
	input.Width = 48

	a := &App{
		ctx:    context.Background(),
		svc:    svc,
		launch: launch,
		input:  input,
		day:    adminservice.DayToday,
	}
	for _, opt := range opts {
		opt(a)
	}

	switch {
	case !launch.Portal():
		a.state = stateLanding
	case launch.Email == "":
		a.state = stateLogin
		a.openPrompt(promptEmail, "you@campus.edu")
	default:
		a.signIn(launch.Email)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.prompt != promptNone {
		return textinput.Blink
	}
	return nil
}

// signIn opens the portal of a pre-selected identity.
func (a *App) signIn(email string) {
	u, err := a.svc.Auth.Lookup(email)
	if err != nil {
		a.err = err
		a.state = stateLogin
		a.openPrompt(promptEmail, "you@campus.edu")
		return
	}
	a.enter(u)
}

// login runs the full form check: account, shared password, then portal.
func (a *App) login(password string) tea.Cmd {
	s, err := a.svc.Auth.Login(a.ctx, a.loginEmail, password, domain.Roles[a.loginRole])
	if err != nil {
		a.err, a.note = err, ""
		cmd := a.openPrompt(promptEmail, "you@campus.edu")
		a.input.SetValue(a.loginEmail)
		return cmd
	}
	a.enter(s.User)
	return nil
}

func (a *App) enter(u domain.User) {
	a.user = u
	a.state = statePortal
	a.err = nil
	a.note = "Signed in as " + u.Name
	a.refresh()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case StoreChangedMsg:
		a.refresh()
		return a, nil

	case actionMsg:
		a.busy = false
		if msg.err != nil {
			a.err, a.note = msg.err, ""
		} else {
			a.err, a.note = nil, msg.note
			if msg.after != nil {
				msg.after(a)
			}
		}
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		if a.prompt != promptNone {
			return a.updatePrompt(msg)
		}
		return a.updateKey(msg)
	}
	return a, nil
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	}

	switch a.state {
	case stateLanding:
		if key == "enter" {
			a.state = stateLogin
			return a, a.openPrompt(promptEmail, "you@campus.edu")
		}
		return a, nil
	case stateLogin:
		return a, a.openPrompt(promptEmail, "you@campus.edu")
	}

	switch key {
	case "up", "k":
		a.cursor = max(a.cursor-1, 0)
		return a, nil
	case "down", "j":
		a.cursor = min(a.cursor+1, max(a.listLen()-1, 0))
		return a, nil
	case "esc":
		a.err, a.note = nil, ""
		return a, nil
	}

	switch a.user.Role {
	case domain.RoleStudent:
		return a, a.studentKey(key)
	case domain.RoleKitchen:
		return a, a.kitchenKey(key)
	case domain.RoleRider:
		return a, a.riderKey(key)
	case domain.RoleAdmin:
		return a, a.adminKey(key)
	}
	return a, nil
}

func (a *App) studentKey(key string) tea.Cmd {
	switch key {
	case "tab":
		if a.focus == focusMenu {
			a.focus = focusOrders
		} else {
			a.focus = focusMenu
		}
		a.cursor = 0
	case "enter", "a", "+":
		if item, ok := a.selectedMenuItem(); ok && a.focus == focusMenu {
			a.cart.Add(item)
			a.err, a.note = nil, "Added "+item.Name
		}
	case "-":
		if item, ok := a.selectedMenuItem(); ok && a.focus == focusMenu {
			a.cart.UpdateQty(item.ID, -1)
		}
	case "l":
		a.location = (a.location + 1) % len(domain.Locations)
	case "c":
		return a.checkout()
	case "x":
		o, ok := a.selectedOrder()
		if !ok {
			return a.fail(ErrNothingSelected)
		}
		user := a.user
		return a.run("Order "+o.ID+" cancelled", func(ctx context.Context) (func(*App), error) {
			_, err := a.svc.Orders.Cancel(ctx, user, o.ID)
			return nil, err
		})
	case "m":
		o, ok := a.selectedOrder()
		if !ok {
			return a.fail(ErrNothingSelected)
		}
		if a.cart.Len() > 0 && a.modifyID != o.ID {
			a.modifyID = o.ID
			return a.fail(ErrCartNotEmpty)
		}
		a.modifyID = ""
		user := a.user
		return a.run("Order "+o.ID+" moved back to the cart", func(ctx context.Context) (func(*App), error) {
			items, err := a.svc.Orders.Modify(ctx, user, o.ID)
			if err != nil {
				return nil, err
			}
			return func(a *App) {
				a.cart.Replace(items)
				a.focus, a.cursor = focusMenu, 0
			}, nil
		})
	case "r":
		o, ok := a.selectedOrder()
		if !ok {
			return a.fail(ErrNothingSelected)
		}
		if o.Status != domain.StatusDelivered || o.IsReviewed {
			return a.fail(ErrNotReviewable)
		}
		a.reviewID = o.ID
		return a.openPrompt(promptReview, "5 Great biryani, still hot")
	case "?":
		return a.openPrompt(promptBot, "Ask CampusBot")
	}
	return nil
}

func (a *App) kitchenKey(key string) tea.Cmd {
	var (
		to   domain.Status
		verb string
	)
	switch key {
	case "s":
		to, verb = domain.StatusPreparing, "is cooking"
	case "r":
		to, verb = domain.StatusReady, "is ready"
	default:
		return nil
	}
	if a.cursor >= len(a.kitchen.Active) {
		return a.fail(ErrNothingSelected)
	}
	o, user := a.kitchen.Active[a.cursor], a.user
	return a.run("Order "+o.ID+" "+verb, func(ctx context.Context) (func(*App), error) {
		var err error
		if to == domain.StatusPreparing {
			_, err = a.svc.Kitchen.StartCooking(ctx, user, o.ID)
		} else {
			_, err = a.svc.Kitchen.MarkReady(ctx, user, o.ID)
		}
		return nil, err
	})
}

func (a *App) riderKey(key string) tea.Cmd {
	user := a.user
	switch key {
	case "a", "d":
		o, ok := a.selectedJob()
		if !ok {
			return a.fail(ErrNothingSelected)
		}
		if key == "a" {
			return a.run("Job "+o.ID+" accepted", func(ctx context.Context) (func(*App), error) {
				_, err := a.svc.Rider.AcceptJob(ctx, user, o.ID)
				return nil, err
			})
		}
		return a.run("Order "+o.ID+" delivered", func(ctx context.Context) (func(*App), error) {
			_, err := a.svc.Rider.CompleteDelivery(ctx, user, o.ID)
			return nil, err
		})
	case "o":
		return a.run("Route ready", func(ctx context.Context) (func(*App), error) {
			r, err := a.svc.Rider.OptimizeRoute(ctx)
			if err != nil {
				return nil, err
			}
			return func(a *App) { a.route = &r }, nil
		})
	}
	return nil
}

func (a *App) adminKey(key string) tea.Cmd {
	switch key {
	case "t":
		if a.day == adminservice.DayToday {
			a.day = adminservice.DayYesterday
		} else {
			a.day = adminservice.DayToday
		}
		a.refresh()
	case "R":
		return a.run("Revenue reset", func(ctx context.Context) (func(*App), error) {
			return nil, a.svc.Admin.ResetRevenue(ctx)
		})
	case "x":
		item, ok := a.selectedMenuItem()
		if !ok {
			return a.fail(ErrNothingSelected)
		}
		return a.run(item.Name+" removed from the menu", func(ctx context.Context) (func(*App), error) {
			return nil, a.svc.Admin.DeleteMenuItem(ctx, item.ID)
		})
	case "n":
		return a.openPrompt(promptMenuItem, "Masala Fries 220")
	}
	return nil
}

func (a *App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		if a.state == stateLogin {
			return a, tea.Quit
		}
		a.closePrompt()
		return a, nil
	case "tab":
		if a.state == stateLogin {
			a.loginRole = (a.loginRole + 1) % len(domain.Roles)
			return a, nil
		}
	case "enter":
		p, value := a.prompt, strings.TrimSpace(a.input.Value())
		a.closePrompt()
		return a, a.submit(p, value)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) submit(p prompt, value string) tea.Cmd {
	switch p {
	case promptEmail:
		if value == "" {
			a.fail(authservice.ErrAccountNotFound)
			return a.openPrompt(promptEmail, "you@campus.edu")
		}
		a.loginEmail = value
		cmd := a.openPrompt(promptPassword, "shared password")
		a.input.EchoMode = textinput.EchoPassword
		return cmd
	case promptPassword:
		return a.login(value)
	case promptPhone:
		if value == "" {
			return a.fail(orderservice.ErrMissingPhone)
		}
		a.phone = value
		return a.checkout()
	case promptReview:
		stars, text := parseReview(value)
		id, user := a.reviewID, a.user
		return a.run("Thanks for rating "+id, func(ctx context.Context) (func(*App), error) {
			_, err := a.svc.Orders.SubmitReview(ctx, user, id, stars, text)
			return nil, err
		})
	case promptBot:
		return a.run("", func(ctx context.Context) (func(*App), error) {
			reply, err := a.svc.Bot.Ask(ctx, value)
			if err != nil {
				return nil, err
			}
			return func(a *App) { a.reply = reply }, nil
		})
	case promptMenuItem:
		name, price, err := parseMenuItem(value)
		if err != nil {
			return a.fail(err)
		}
		return a.run(name+" added to the menu", func(ctx context.Context) (func(*App), error) {
			_, err := a.svc.Admin.AddMenuItem(ctx, name, price, "", "")
			return nil, err
		})
	}
	return nil
}

func (a *App) checkout() tea.Cmd {
	if a.cart.Len() == 0 {
		return a.fail(orderservice.ErrEmptyCart)
	}
	if a.user.Phone == "" && a.phone == "" {
		return a.openPrompt(promptPhone, "03xx-xxxxxxx")
	}
	items, user, phone := a.cart.Items(), a.user, a.phone
	location := domain.Locations[a.location]
	return a.run("", func(ctx context.Context) (func(*App), error) {
		o, err := a.svc.Orders.Checkout(ctx, user, items, location, phone)
		if err != nil {
			return nil, err
		}
		return func(a *App) {
			a.cart.Clear()
			a.note = fmt.Sprintf("Order %s placed for %s", o.ID, o.Location)
		}, nil
	})
}

// run executes fn off the UI loop and reports back with an actionMsg.
func (a *App) run(note string, fn func(ctx context.Context) (func(*App), error)) tea.Cmd {
	a.busy = true
	ctx := a.ctx
	return func() tea.Msg {
		after, err := fn(ctx)
		return actionMsg{note: note, err: err, after: after}
	}
}

func (a *App) fail(err error) tea.Cmd {
	a.err, a.note = err, ""
	return nil
}

func (a *App) openPrompt(p prompt, placeholder string) tea.Cmd {
	a.prompt = p
	a.input.Reset()
	a.input.EchoMode = textinput.EchoNormal
	a.input.Placeholder = placeholder
	return a.input.Focus()
}

func (a *App) closePrompt() {
	a.prompt = promptNone
	a.input.Blur()
	a.input.Reset()
}

// refresh reloads the signed-in role's board from the services.
func (a *App) refresh() {
	if a.state != statePortal {
		return
	}
	switch a.user.Role {
	case domain.RoleStudent:
		a.menu = flatten(a.svc.Orders.Menu())
		a.orders = a.svc.Orders.MyOrders(a.user)
	case domain.RoleKitchen:
		a.kitchen = a.svc.Kitchen.Board()
	case domain.RoleRider:
		a.rider = a.svc.Rider.Board()
	case domain.RoleAdmin:
		a.menu = flatten(a.svc.Orders.Menu())
		a.stats = a.svc.Admin.Stats()
		orders, err := a.svc.Admin.Orders(a.day)
		if err != nil {
			a.err = err
		}
		a.dayOrders = orders
	}
	a.cursor = min(a.cursor, max(a.listLen()-1, 0))
}

func (a *App) listLen() int {
	switch a.user.Role {
	case domain.RoleStudent:
		if a.focus == focusOrders {
			return len(a.orders)
		}
		return len(a.menu)
	case domain.RoleKitchen:
		return len(a.kitchen.Active)
	case domain.RoleRider:
		return len(a.rider.Available) + len(a.rider.MyJobs)
	case domain.RoleAdmin:
		return len(a.menu)
	}
	return 0
}

func (a *App) selectedMenuItem() (domain.MenuItem, bool) {
	if a.cursor < 0 || a.cursor >= len(a.menu) {
		return domain.MenuItem{}, false
	}
	return a.menu[a.cursor], true
}

func (a *App) selectedOrder() (domain.Order, bool) {
	if a.focus != focusOrders || a.cursor >= len(a.orders) {
		return domain.Order{}, false
	}
	return a.orders[a.cursor], true
}

// selectedJob walks available jobs first, then the accepted ones.
func (a *App) selectedJob() (domain.Order, bool) {
	jobs := append(append([]domain.Order(nil), a.rider.Available...), a.rider.MyJobs...)
	if a.cursor >= len(jobs) {
		return domain.Order{}, false
	}
	return jobs[a.cursor], true
}

func flatten(cats []orderdto.MenuCategory) []domain.MenuItem {
	var out []domain.MenuItem
	for _, c := range cats {
		out = append(out, c.Items...)
	}
	return out
}

// parseReview reads "<stars> <text>"; without a leading number the whole
// value is the text and the rating is five stars.
func parseReview(value string) (int, string) {
	first, rest, _ := strings.Cut(value, " ")
	if n, err := strconv.Atoi(first); err == nil {
		return n, strings.TrimSpace(rest)
	}
	return 5, value
}

// parseMenuItem reads "<name> <price>" with the price as the last word.
func parseMenuItem(value string) (string, float64, error) {
	i := strings.LastIndex(value, " ")
	if i <= 0 {
		return "", 0, ErrBadMenuItem
	}
	price, err := strconv.ParseFloat(value[i+1:], 64)
	if err != nil || price <= 0 {
		return "", 0, ErrBadMenuItem
	}
	return strings.TrimSpace(value[:i]), price, nil
}
