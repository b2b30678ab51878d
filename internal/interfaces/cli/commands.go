package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
	"github.com/erp/posconsole/internal/infrastructure/resource"
)

// passwordEnv is read when -password is omitted
const passwordEnv = "POS_PASSWORD"

func newFlagSet(a *App, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet(a, "login")
	username := fs.String("username", "", "Account name")
	password := fs.String("password", "", "Password (defaults to $"+passwordEnv+")")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(passwordEnv)
	}
	if *username == "" || *password == "" {
		return usageError("login requires -username and -password")
	}
	user, err := a.session.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	a.notify(collection.LevelSuccess, fmt.Sprintf("%s: %s", a.loc.Message(i18n.KeyLoginSuccess), name))
	return nil
}

func runLogout(ctx context.Context, a *App, args []string) error {
	if len(args) > 0 {
		return usageError("logout takes no arguments")
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.notify(collection.LevelInfo, a.loc.Message(i18n.KeyLogoutSuccess))
	return nil
}

func runResources(_ context.Context, a *App, _ []string) error {
	rows := make([][]string, 0, len(resource.Specs()))
	for _, spec := range resource.Specs() {
		rows = append(rows, []string{
			spec.Name,
			spec.Title,
			"/" + strings.TrimLeft(spec.Path, "/"),
			strings.Join(spec.Aliases, ", "),
			yesNo(spec.HasStats()),
			yesNo(spec.HasExport()),
		})
	}
	return writeTable(a.stdout, []string{"NAME", "TITLE", "PATH", "ALIASES", "STATS", "EXPORT"}, rows)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// addListFlags registers the query flags on fs
func addListFlags(a *App, fs *flag.FlagSet, args *listArgs) {
	args.filters = keyValues{}
	fs.StringVar(&args.search, "search", "", "Free-text search")
	fs.StringVar(&args.status, "status", "", "Status filter")
	fs.Var(keyValues(args.filters), "filter", "Filter as key=value, repeatable (e.g. product=3, date_from=2024-01-01)")
	fs.IntVar(&args.page, "page", 1, "Page number")
	fs.IntVar(&args.limit, "limit", a.cfg.View.PageSize, "Rows per page")
}

// resourceArgs parses flags and returns the screen named by the first
// positional followed by the remaining positionals
func resourceArgs(fs *flag.FlagSet, args []string, want int) (screen, []string, error) {
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, nil, err
	}
	if len(positional) != want+1 {
		return nil, nil, usageError("%s: expected %d argument(s), got %d", fs.Name(), want+1, len(positional))
	}
	s, err := lookupScreen(positional[0])
	if err != nil {
		return nil, nil, usageError("%v", err)
	}
	return s, positional[1:], nil
}

func runList(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet(a, "list")
	var la listArgs
	addListFlags(a, fs, &la)
	s, _, err := resourceArgs(fs, args, 0)
	if err != nil {
		return err
	}
	if la.limit <= 0 {
		return usageError("-limit must be positive")
	}
	return s.list(a.scoped(ctx, s), a, la)
}

func runShowStats(ctx context.Context, a *App, args []string) error {
	s, _, err := resourceArgs(newFlagSet(a, "show-stats"), args, 0)
	if err != nil {
		return err
	}
	return s.showStats(a.scoped(ctx, s), a)
}

// readData resolves -data: literal JSON, @file, or - for stdin
func readData(data string, stdin io.Reader) ([]byte, error) {
	switch {
	case data == "":
		return nil, usageError("-data is required")
	case data == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(strings.TrimPrefix(data, "@"))
	default:
		return []byte(data), nil
	}
}

func runCreate(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet(a, "create")
	data := fs.String("data", "", "Record as JSON, @file or - for stdin")
	s, _, err := resourceArgs(fs, args, 0)
	if err != nil {
		return err
	}
	body, err := readData(*data, os.Stdin)
	if err != nil {
		return err
	}
	return s.create(a.scoped(ctx, s), a, body)
}

func runUpdate(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet(a, "update")
	data := fs.String("data", "", "Changed fields as JSON, @file or - for stdin")
	s, rest, err := resourceArgs(fs, args, 1)
	if err != nil {
		return err
	}
	body, err := readData(*data, os.Stdin)
	if err != nil {
		return err
	}
	return s.update(a.scoped(ctx, s), a, rest[0], body)
}

func runDelete(ctx context.Context, a *App, args []string) error {
	s, rest, err := resourceArgs(newFlagSet(a, "delete"), args, 1)
	if err != nil {
		return err
	}
	return s.remove(a.scoped(ctx, s), a, rest[0])
}

func runExport(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet(a, "export")
	var la listArgs
	addListFlags(a, fs, &la)
	out := fs.String("out", "", "Output file or directory (defaults to the server's file name)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	s, _, err := resourceArgs(fs, args, 0)
	if err != nil {
		return err
	}
	if !s.spec().HasExport() {
		return usageError("%s has no export", s.spec().Name)
	}
	return s.export(a.scoped(ctx, s), a, la, *out, *force)
}
