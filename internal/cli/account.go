package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/validation"
)

type RegisterCmd struct {
	Name     string `help:"Display name."`
	Email    string `help:"Email address."`
	Password string `help:"Password (prompted when omitted)." env:"HABITFLOW_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx *Context) error {
	if c.Name == "" || c.Email == "" || c.Password == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	u, err := ctx.Tracker.Sessions.Register(context.Background(), c.Name, c.Email, c.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			return errors.New("user already exists")
		}
		return err
	}
	ctx.printf("Registered and logged in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func (c *RegisterCmd) prompt() error {
	var confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&c.Name).
				Validate(func(s string) error { return validation.Required("name", s) }),
			huh.NewInput().
				Title("Email").
				Value(&c.Email).
				Validate(validation.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(validation.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error { return validation.PasswordsMatch(c.Password, s) }),
		),
	)
	return form.Run()
}

type LoginCmd struct {
	Email    string `help:"Email address."`
	Password string `help:"Password (prompted when omitted)." env:"HABITFLOW_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *Context) error {
	if c.Email == "" || c.Password == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Email").Value(&c.Email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	u, err := ctx.Tracker.Sessions.Login(context.Background(), c.Email, c.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			return errors.New("invalid email or password")
		}
		return err
	}
	ctx.printf("Logged in as %s <%s>\n", u.Name, u.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.Tracker.Sessions.Logout(context.Background()); err != nil {
		return err
	}
	ctx.println("Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	ns, err := ctx.Tracker.Sessions.Begin(context.Background())
	if err != nil {
		if session.IsNoSession(err) {
			ctx.println("Not logged in.")
			return nil
		}
		return err
	}
	ctx.printf("%s <%s>\n", ns.User.Name, ns.User.Email)
	return nil
}
