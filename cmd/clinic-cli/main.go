// Command clinic-cli signs in to the clinic portal from a terminal and keeps
// the session in a local profile file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/UdayGopi/Dental-Clinic/config"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/filekv"
	"github.com/UdayGopi/Dental-Clinic/internal/bootstrap"
	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/nav"
	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Config  config.AppConfig
	Out     io.Writer
	Manager *service.SessionManager
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	// Diagnostics go to stderr so stdout stays scriptable.
	logger = bootstrap.ConfigureLogger(cfg.Observability, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx, err := newCommandContext(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.ErrorContext(ctx, "open profile", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal setup failure to shell scripts
	}
	defer cmdCtx.Manager.Teardown()

	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

// newCommandContext opens the profile file and hydrates its session manager.
func newCommandContext(ctx context.Context, cfg config.AppConfig, logger *slog.Logger, out io.Writer) (*commandContext, error) {
	path, err := cfg.CLI.ResolveProfilePath()
	if err != nil {
		return nil, err
	}
	backend, err := bootstrap.BuildAuthBackend(cfg.Auth, nil)
	if err != nil {
		return nil, err
	}
	return newCommandContextWith(ctx, commandDeps{
		Config:  cfg,
		Logger:  logger,
		Out:     out,
		KV:      filekv.NewStore(path, logger),
		Backend: backend,
	}), nil
}

type commandDeps struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Out     io.Writer
	KV      ports.KeyValueStore
	Backend ports.AuthBackend
}

func newCommandContextWith(ctx context.Context, deps commandDeps) *commandContext {
	store := service.NewSessionStore(service.SessionStoreOptions{
		KV:     deps.KV,
		Prefix: deps.Config.Session.KeyPrefix,
		Logger: deps.Logger,
	})
	m := service.NewSessionManager(service.SessionManagerOptions{
		Store:          store,
		Backend:        deps.Backend,
		RequestTimeout: deps.Config.Auth.RequestTimeout,
		Logger:         deps.Logger,
	})
	m.Init(ctx)
	return &commandContext{Ctx: ctx, Logger: deps.Logger, Config: deps.Config, Out: deps.Out, Manager: m}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the session in the profile file",
			run:         runLogin,
		},
		"register": {
			name:        "register",
			description: "Create an account and sign in",
			run:         runRegister,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the signed-in identity and permissions",
			run:         runWhoami,
		},
		"nav": {
			name:        "nav",
			description: "List the navigation entries for the signed-in role",
			run:         runNav,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: clinic-cli <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(w, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

type loginOptions struct {
	Email    string
	Password string
	Role     string
}

func parseLoginOptions(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", os.Getenv("CLINIC_PASSWORD"), "Password (defaults to $CLINIC_PASSWORD)")
	fs.StringVar(&opts.Role, "role", "", "Sign in as patient, staff, or admin (optional)")
	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	opts.Role = strings.ToLower(strings.TrimSpace(opts.Role))
	return opts, nil
}

func runLogin(ctx *commandContext, args []string) error {
	opts, err := parseLoginOptions(args)
	if err != nil {
		return err
	}
	in := service.LoginInput{Email: opts.Email, Password: opts.Password}
	if opts.Role != "" {
		role, ok := domainauth.ParseRole(opts.Role)
		if !ok {
			return fmt.Errorf("invalid role %q (valid: patient, staff, admin)", opts.Role)
		}
		in.Role = &role
	}

	id, err := ctx.Manager.Login(ctx.Ctx, in)
	if err != nil {
		return err
	}
	if ctx.Manager.DemoSession() {
		if err := writef(ctx.Out, "warning: auth service unavailable; signed in with a local demo account\n"); err != nil {
			return err
		}
	}
	return writef(ctx.Out, "Signed in as %s (%s). Home: %s\n", displayName(id), id.Role, routing.HomeFor(ctx.Manager.Permissions()))
}

type registerOptions struct {
	Email    string
	Password string
	Name     string
	Role     string
	Fields   fieldFlags
}

// fieldFlags collects repeated -field key=value flags.
type fieldFlags map[string]any

func (f fieldFlags) String() string { return fmt.Sprint(map[string]any(f)) }

func (f fieldFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("field must be key=value, got %q", v)
	}
	f[k] = val
	return nil
}

func parseRegisterOptions(args []string) (registerOptions, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := registerOptions{Fields: fieldFlags{}}
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", os.Getenv("CLINIC_PASSWORD"), "Password (defaults to $CLINIC_PASSWORD)")
	fs.StringVar(&opts.Name, "name", "", "Display name")
	fs.StringVar(&opts.Role, "role", string(domainauth.RolePatient), "patient, staff, or admin")
	fs.Var(opts.Fields, "field", "Extra registration field as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return registerOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	opts.Name = strings.TrimSpace(opts.Name)
	opts.Role = strings.ToLower(strings.TrimSpace(opts.Role))
	if opts.Email == "" || opts.Password == "" {
		return registerOptions{}, errors.New("--email and --password are required")
	}
	return opts, nil
}

func runRegister(ctx *commandContext, args []string) error {
	opts, err := parseRegisterOptions(args)
	if err != nil {
		return err
	}
	in := service.RegisterInput{
		Email:    opts.Email,
		Password: opts.Password,
		Name:     opts.Name,
		Role:     domainauth.Role(opts.Role),
	}
	if len(opts.Fields) > 0 {
		in.Extra = opts.Fields
	}

	id, regErr := ctx.Manager.Register(ctx.Ctx, in)
	if regErr != nil {
		if id.ID == "" {
			return regErr
		}
		if err := writef(ctx.Out, "warning: registration failed; signed in with a local demo account as %s (%s)\n",
			displayName(id), id.Role); err != nil {
			return errors.Join(regErr, err)
		}
		return regErr
	}
	return writef(ctx.Out, "Registered and signed in as %s (%s). Home: %s\n",
		displayName(id), id.Role, routing.HomeFor(ctx.Manager.Permissions()))
}

func runLogout(ctx *commandContext, _ []string) error {
	ctx.Manager.Logout(ctx.Ctx)
	return writef(ctx.Out, "Signed out.\n")
}

func runWhoami(ctx *commandContext, _ []string) error {
	id, ok := ctx.Manager.Identity()
	if !ok {
		return writef(ctx.Out, "Not signed in.\n")
	}
	p := ctx.Manager.Permissions()
	w := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", id.ID},
		{"Name", displayName(id)},
		{"Email", id.Email},
		{"Role", string(id.Role)},
		{"Portal", nav.PortalTitle(string(id.Role))},
		{"Home", routing.HomeFor(p)},
		{"Admin", fmt.Sprint(p.IsAdmin)},
		{"Staff", fmt.Sprint(p.IsStaff)},
		{"Patient", fmt.Sprint(p.IsPatient)},
	}
	if id.PatientRef != nil {
		rows = append(rows, [2]string{"Patient ID", fmt.Sprint(*id.PatientRef)})
	}
	for _, r := range rows {
		if err := writef(w, "%s\t%s\n", r[0], r[1]); err != nil {
			return fmt.Errorf("write %s: %w", strings.ToLower(r[0]), err)
		}
	}
	return w.Flush()
}

func runNav(ctx *commandContext, _ []string) error {
	id, ok := ctx.Manager.Identity()
	if !ok {
		return errors.New("not signed in; run clinic-cli login first")
	}
	w := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	if err := writef(w, "Path\tLabel\tIcon\n"); err != nil {
		return fmt.Errorf("write nav header: %w", err)
	}
	for _, item := range nav.Resolve(string(id.Role)) {
		if err := writef(w, "%s\t%s\t%s\n", item.Path, item.Label, item.Icon); err != nil {
			return fmt.Errorf("write nav item %q: %w", item.Path, err)
		}
	}
	return w.Flush()
}

func displayName(id domainauth.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return "User"
}
