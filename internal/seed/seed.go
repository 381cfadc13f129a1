// Package seed holds the first-run dataset: the staff and demo student
// accounts and the cafeteria menu.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"campus-crave/internal/domain"
)

//go:embed seed.yaml
var defaultYAML []byte

type Data struct {
	Users []domain.User
	Menu  []domain.MenuItem
}

type userYAML struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
	Phone string `yaml:"phone,omitempty"`
}

type menuItemYAML struct {
	ID       int64   `yaml:"id"`
	Name     string  `yaml:"name"`
	Price    float64 `yaml:"price"`
	Category string  `yaml:"category"`
	Image    string  `yaml:"image"`
}

type fileYAML struct {
	Users []userYAML     `yaml:"users"`
	Menu  []menuItemYAML `yaml:"menu"`
}

// Default returns the embedded dataset. It panics only if the embedded file is broken.
func Default() Data {
	d, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded dataset: %v", err))
	}
	return d
}

func Parse(b []byte) (Data, error) {
	var f fileYAML
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Data{}, fmt.Errorf("seed: decode: %w", err)
	}
	d := Data{
		Users: make([]domain.User, 0, len(f.Users)),
		Menu:  make([]domain.MenuItem, 0, len(f.Menu)),
	}
	for _, u := range f.Users {
		role, err := domain.ParseRole(u.Role)
		if err != nil {
			return Data{}, fmt.Errorf("seed: user %s: %w", u.Email, err)
		}
		d.Users = append(d.Users, domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: role, Phone: u.Phone})
	}
	for _, m := range f.Menu {
		if m.Price <= 0 {
			return Data{}, fmt.Errorf("seed: menu item %d has no price", m.ID)
		}
		d.Menu = append(d.Menu, domain.MenuItem{ID: m.ID, Name: m.Name, Price: m.Price, Category: m.Category, Image: m.Image})
	}
	return d, nil
}
