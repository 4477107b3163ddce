package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitflow/internal/export"
)

type DebugCmd struct {
	DBPath DebugDBPathCmd `cmd:"" name:"db-path" help:"Show the storage location."`
	Dump   DebugDumpCmd   `cmd:"" help:"Dump the logged-in user's data as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return printJSON(ctx, map[string]string{
		"backend":  string(ctx.Settings.Backend),
		"location": ctx.Store.Describe(),
	})
}

type DebugDumpCmd struct {
	What string `arg:"" help:"habits, goals, ledger or users." enum:"habits,goals,ledger,users"`
}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	bg := context.Background()
	if cmd.What == "users" {
		var profiles []export.Profile
		for _, u := range ctx.Tracker.Sessions.Users(bg) {
			profiles = append(profiles, export.Profile{Name: u.Name, Email: u.Email})
		}
		return printJSON(ctx, profiles)
	}

	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}
	switch cmd.What {
	case "habits":
		return printJSON(ctx, ctx.Tracker.Habits.List(bg, ns))
	case "goals":
		return printJSON(ctx, ctx.Tracker.Goals.List(bg, ns))
	default:
		return printJSON(ctx, ctx.Tracker.Habits.Ledger(bg, ns))
	}
}

func printJSON(ctx *Context, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}
