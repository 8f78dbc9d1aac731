// Command migrate manages the inspection service schema with the SQL
// migrations embedded in the binary.
//
//	migrate [-dsn DSN] up|down|version
//	migrate [-dsn DSN] steps N
//	migrate [-dsn DSN] force VERSION
//
// Without -dsn the connection string comes from INSPECT_DB_DSN, then from the
// service configuration.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "INSPECT_DB_DSN"

var errUsage = errors.New("usage: migrate [-dsn DSN] up|down|version|steps N|force VERSION")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dsn := fs.String("dsn", "", "database connection string")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd, err := parseCommand(fs.Args())
	if err != nil {
		return err
	}

	conn, err := resolveDSN(*dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, conn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	return cmd(m, out)
}

type command func(m *migrate.Migrate, out io.Writer) error

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return nil, errUsage
	}

	switch name, rest := args[0], args[1:]; {
	case name == "up" && len(rest) == 0:
		return apply("up", func(m *migrate.Migrate) error { return m.Up() }), nil
	case name == "down" && len(rest) == 0:
		return apply("down", func(m *migrate.Migrate) error { return m.Down() }), nil
	case name == "version" && len(rest) == 0:
		return func(m *migrate.Migrate, out io.Writer) error {
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(out, "version: none")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read version: %w", err)
			}
			fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
			return nil
		}, nil
	case name == "steps" && len(rest) == 1:
		n, err := strconv.Atoi(rest[0])
		if err != nil || n == 0 {
			return nil, fmt.Errorf("steps needs a non-zero integer: %q", rest[0])
		}
		return apply(fmt.Sprintf("%+d steps", n), func(m *migrate.Migrate) error { return m.Steps(n) }), nil
	case name == "force" && len(rest) == 1:
		v, err := strconv.Atoi(rest[0])
		if err != nil || v < -1 {
			return nil, fmt.Errorf("force needs a version: %q", rest[0])
		}
		return func(m *migrate.Migrate, out io.Writer) error {
			if err := m.Force(v); err != nil {
				return fmt.Errorf("force version %d: %w", v, err)
			}
			fmt.Fprintf(out, "forced to version %d\n", v)
			return nil
		}, nil
	}
	return nil, errUsage
}

func apply(label string, fn func(m *migrate.Migrate) error) command {
	return func(m *migrate.Migrate, out io.Writer) error {
		err := fn(m)
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintf(out, "%s: no change\n", label)
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", label, err)
		}
		fmt.Fprintf(out, "%s: applied\n", label)
		return nil
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("no -dsn or %s, and config load failed: %w", envDSN, err)
	}
	return cfg.Database.Dsn(), nil
}
