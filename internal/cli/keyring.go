package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/habitflow/internal/config"
	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/keyring"
	"github.com/julianstephens/habitflow/internal/storage/postgres"
)

var remoteBackends = []constants.Backend{constants.BackendPostgres, constants.BackendRedis, constants.BackendMongo}

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string (masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability and stored entries."`
}

// parseRemote picks the backend from --for or from the connection string
func parseRemote(name, connStr string) (constants.Backend, error) {
	var b constants.Backend
	if name != "" {
		parsed, err := config.ParseBackend(name)
		if err != nil {
			return "", err
		}
		b = parsed
	} else {
		b = config.DetectBackend(connStr)
	}
	for _, r := range remoteBackends {
		if r == b {
			return b, nil
		}
	}
	return "", fmt.Errorf("keyring entries are only used for postgres, redis and mongo (got %s)", b)
}

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"Connection string to store."`
	For              string `help:"Backend the string belongs to (detected from the scheme when omitted)."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	backend, err := parseRemote(cmd.For, cmd.ConnectionString)
	if err != nil {
		return err
	}

	switch backend {
	case constants.BackendPostgres:
		if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.println("   It will be stored in the OS keyring, but the postgres backend refuses it at startup.")
			ctx.println("   Keep the password in ~/.pgpass or PGPASSWORD instead.")
		}
	default:
		if _, err := url.Parse(cmd.ConnectionString); err != nil {
			return fmt.Errorf("invalid connection string: %w", err)
		}
	}

	if err := keyring.SetConnectionString(backend, cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.printf("✓ Connection string for %s stored in OS keyring\n", backend)
	ctx.printf("  Run with --backend %s to use it\n", backend)
	return nil
}

// KeyringGetCmd retrieves database connection credentials from the OS keyring
type KeyringGetCmd struct {
	For string `arg:"" help:"Backend: postgres, redis or mongo."`
}

func (cmd *KeyringGetCmd) Run(ctx *Context) error {
	backend, err := parseRemote(cmd.For, "")
	if err != nil {
		return err
	}
	connStr, err := keyring.GetConnectionString(backend)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no connection string for %s in keyring. Use '%s keyring set' to store one", backend, constants.AppName)
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	ctx.println(maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct {
	For string `arg:"" help:"Backend: postgres, redis or mongo."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	backend, err := parseRemote(cmd.For, "")
	if err != nil {
		return err
	}
	if err := keyring.DeleteConnectionString(backend); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no connection string for %s in keyring", backend)
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.printf("✓ Connection string for %s deleted from OS keyring\n", backend)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.println("✓ OS keyring is available")
	for _, b := range remoteBackends {
		if _, err := keyring.GetConnectionString(b); err == nil {
			ctx.printf("✓ %s: connection string stored\n", b)
		} else {
			ctx.printf("ℹ %s: none stored\n", b)
		}
	}
	return nil
}

// maskPassword hides the password in URL and key=value connection strings
func maskPassword(connStr string) string {
	if idx := strings.Index(connStr, "://"); idx != -1 {
		remaining := connStr[idx+3:]
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
