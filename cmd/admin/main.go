package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"campusvoice/backend/internal/account"
	"campusvoice/backend/internal/complaint"
	"campusvoice/backend/internal/config"
	"campusvoice/backend/internal/logger"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/storage"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatalf("admin: %v", err)
	}
}

// env holds the services a command runs against.
type env struct {
	cfg        *config.Config
	store      storage.Storage
	accounts   *account.Service
	complaints *complaint.Service
	close      func()
}

func open(ctx context.Context, cmd *cli.Command) (*env, error) {
	cfg, err := config.Load(cmd.Root().String("config"))
	if err != nil {
		return nil, err
	}
	if _, err := logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	store, closeStore, err := storage.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:        cfg,
		store:      store,
		accounts:   account.NewService(store, cfg.Auth),
		complaints: complaint.NewService(store),
		close:      closeStore,
	}, nil
}

// withEnv opens the services for the duration of fn.
func withEnv(fn func(ctx context.Context, cmd *cli.Command, e *env) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		e, err := open(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(ctx, cmd, e)
	}
}

func parseRole(s string) (models.Role, error) {
	role, ok := models.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("unknown role %q, want one of %v", s, models.Roles)
	}
	return role, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid complaint id %q", s)
	}
	return uint(id), nil
}

// actorFor resolves username to the Actor workflow calls are made as.
func actorFor(ctx context.Context, e *env, username string) (models.Actor, error) {
	u, err := e.accounts.Lookup(ctx, username)
	if err != nil {
		return models.Actor{}, fmt.Errorf("user %q: %w", username, err)
	}
	return u.Actor(), nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "operator tasks for the complaint workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update the database tables",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.Root().String("config"))
					if err != nil {
						return err
					}
					db, err := storage.Open(cfg.Database)
					if err != nil {
						return err
					}
					if err := storage.Migrate(db); err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, "migrations complete")
					return nil
				},
			},
			{
				Name:  "create-user",
				Usage: "create an account with any role, including ADMIN",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: string(models.RoleAdmin)},
					&cli.StringFlag{Name: "department"},
				},
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, e *env) error {
					role, err := parseRole(cmd.String("role"))
					if err != nil {
						return err
					}
					u, err := e.accounts.CreateUser(ctx, cmd.String("username"), cmd.String("password"), role, cmd.String("department"))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
					return nil
				}),
			},
			{
				Name:      "set-role",
				Usage:     "change a user's role",
				ArgsUsage: "<username> <role>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "department"},
				},
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, e *env) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("usage: admin set-role <username> <role> [--department DEPT]")
					}
					role, err := parseRole(cmd.Args().Get(1))
					if err != nil {
						return err
					}
					var dept *string
					if cmd.IsSet("department") {
						d := cmd.String("department")
						dept = &d
					}
					u, err := e.accounts.SetRole(ctx, cmd.Args().Get(0), role, dept)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "user %s is now %s (department %q)\n", u.Username, u.Role, u.Department)
					return nil
				}),
			},
			{
				Name:      "validate",
				Usage:     "record a verdict on a complaint as the given reviewer",
				ArgsUsage: "<complaint-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reviewer", Required: true, Usage: "username of the reviewing staff member"},
					&cli.BoolFlag{Name: "valid", Value: true},
					&cli.StringFlag{Name: "note"},
				},
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, e *env) error {
					id, err := parseID(cmd.Args().First())
					if err != nil {
						return err
					}
					reviewer, err := actorFor(ctx, e, cmd.String("reviewer"))
					if err != nil {
						return err
					}
					valid := cmd.Bool("valid")
					if err := e.complaints.Validate(ctx, reviewer, id, valid, cmd.String("note")); err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "complaint %d marked valid=%t\n", id, valid)
					return nil
				}),
			},
			{
				Name:      "set-status",
				Usage:     "update a complaint's status and level as the given staff member",
				ArgsUsage: "<complaint-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "actor", Required: true, Usage: "username of the staff member"},
					&cli.StringFlag{Name: "status"},
					&cli.StringFlag{Name: "level"},
				},
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, e *env) error {
					id, err := parseID(cmd.Args().First())
					if err != nil {
						return err
					}
					staff, err := actorFor(ctx, e, cmd.String("actor"))
					if err != nil {
						return err
					}
					if err := e.complaints.UpdateStatus(ctx, staff, id, cmd.String("status"), cmd.String("level")); err != nil {
						return err
					}
					c, err := e.store.GetComplaintByID(ctx, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "complaint %d is %s at level %s\n", id, c.Status, c.Level)
					return nil
				}),
			},
			{
				Name:      "credits",
				Usage:     "show a user's credit balance and ledger",
				ArgsUsage: "<username>",
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, e *env) error {
					a, err := actorFor(ctx, e, cmd.Args().First())
					if err != nil {
						return err
					}
					ledger, err := e.complaints.Credits(ctx, a)
					if err != nil {
						return err
					}
					w := cmd.Root().Writer
					fmt.Fprintf(w, "balance: %d\n", ledger.Balance)
					for _, txn := range ledger.Transactions {
						fmt.Fprintf(w, "%s  %+d  %s\n", txn.CreatedAt.Format("2006-01-02 15:04"), txn.Amount, txn.Reason)
					}
					return nil
				}),
			},
		},
	}
}
