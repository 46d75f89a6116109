// package main provides eventsctl, a command line front end for the event API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"eventhub-be/pkg/client"
)

const usage = `usage: eventsctl [-api URL] [-session FILE] <command> [args]

commands:
  register -name N -email E -password P [-photo URL]
  login -email E -password P
  logout
  whoami
  list [-title T] [-today] [-range currentWeek|lastWeek|currentMonth|lastMonth]
  show <id>
  create -title T -date YYYY-MM-DD -time HH:MM -location L -description D [-attendees N]
  update <id> [-title T] [-date D] [-time T] [-location L] [-description D]
  delete <id>
  join <id>
  mine
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	c      *client.Client
	out    io.Writer
	errOut io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("eventsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	var (
		apiURL      = fs.String("api", envOr("EVENTHUB_API", "http://localhost:8080"), "base URL of the event API")
		sessionPath = fs.String("session", os.Getenv("EVENTHUB_SESSION"), "session file (default: user config dir)")
		verbose     = fs.Bool("v", false, "log session diagnostics")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log := zap.NewNop()
	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}

	path := *sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			fmt.Fprintln(stderr, "eventsctl:", err)
			return 1
		}
		path = p
	}
	session := client.NewSession(client.FileStore{Path: path}, log)
	session.Load()

	app := &cli{c: client.New(*apiURL, session), out: stdout, errOut: stderr}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := app.dispatch(ctx, cmd, rest); err != nil {
		return app.fail(err)
	}
	return 0
}

var errUsage = errors.New("usage")

func (a *cli) fail(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(a.errOut, usage)
		return 2
	case errors.Is(err, client.ErrNotLoggedIn):
		fmt.Fprintln(a.errOut, "please log in: eventsctl login -email E -password P")
		return 1
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.errOut, "error:", apiErr.Message)
		for _, e := range apiErr.Errors {
			fmt.Fprintln(a.errOut, "  -", e)
		}
		return 1
	}
	fmt.Fprintln(a.errOut, "eventsctl:", err)
	return 1
}

// loginRequired lists the commands that act as the stored user.
var loginRequired = map[string]bool{
	"whoami": true,
	"create": true,
	"update": true,
	"delete": true,
	"join":   true,
	"mine":   true,
}

func (a *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	err := a.command(ctx, cmd, args)
	if loginRequired[cmd] && client.IsUnauthorized(err) {
		// The stored token expired or its user is gone.
		return fmt.Errorf("%w: %w", client.ErrNotLoggedIn, err)
	}
	return err
}

func (a *cli) command(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.c.Auth.Logout()
	case "whoami":
		return a.whoami(ctx)
	case "list":
		return a.list(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "join":
		return a.join(ctx, args)
	case "mine":
		return a.mine(ctx)
	}
	return errUsage
}

// requireLogin is the guard in front of every command that needs a user.
func (a *cli) requireLogin() error {
	_, err := a.c.Session.Require()
	return err
}

func (a *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// oneID parses a command whose only positional argument is an event id.
func oneID(fs *flag.FlagSet, args []string) (string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", errUsage
	}
	if err := fs.Parse(args[1:]); err != nil {
		return "", errUsage
	}
	return args[0], nil
}

func (a *cli) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "")
	email := fs.String("email", "", "")
	password := fs.String("password", os.Getenv("EVENTHUB_PASSWORD"), "")
	photo := fs.String("photo", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	u, err := a.c.Auth.Register(ctx, *name, *email, *password, *photo)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered and logged in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "")
	password := fs.String("password", os.Getenv("EVENTHUB_PASSWORD"), "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	u, err := a.c.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func (a *cli) whoami(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	u, err := a.c.Auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", u.Name, u.Email, u.ID)
	return nil
}

func (a *cli) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	var f client.Filter
	fs.StringVar(&f.Title, "title", "", "")
	fs.BoolVar(&f.Today, "today", false, "")
	fs.StringVar(&f.DateRange, "range", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	events, err := a.c.Events.List(ctx, f)
	if err != nil {
		return err
	}
	a.printEvents(events)
	return nil
}

func (a *cli) show(ctx context.Context, args []string) error {
	id, err := oneID(a.flags("show"), args)
	if err != nil {
		return err
	}
	e, err := a.c.Events.Get(ctx, id)
	if err != nil {
		return err
	}

	owner := e.PostedByName
	if e.Owner != nil {
		owner = fmt.Sprintf("%s <%s>", e.Owner.Name, e.Owner.Email)
	}
	fmt.Fprintf(a.out, "%s\n  id:        %s\n  when:      %s %s\n  where:     %s\n  posted by: %s\n  attendees: %d\n\n%s\n",
		e.Title, e.ID, e.Date.Format("2006-01-02"), e.Time, e.Location, owner, e.AttendeeCount, e.Description)
	return nil
}

func (a *cli) create(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	fs := a.flags("create")
	var in client.EventInput
	fs.StringVar(&in.Title, "title", "", "")
	fs.StringVar(&in.Date, "date", "", "")
	fs.StringVar(&in.Time, "time", "", "")
	fs.StringVar(&in.Location, "location", "", "")
	fs.StringVar(&in.Description, "description", "", "")
	attendees := fs.Int("attendees", -1, "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *attendees >= 0 {
		in.AttendeeCount = attendees
	}

	e, err := a.c.Events.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %s %s\n", e.ID, e.Title)
	return nil
}

func (a *cli) update(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	fs := a.flags("update")
	values := map[string]*string{}
	for _, name := range []string{"title", "date", "time", "location", "description"} {
		values[name] = fs.String(name, "", "")
	}
	id, err := oneID(fs, args)
	if err != nil {
		return err
	}

	// Only flags given on the command line are sent.
	var patch client.EventPatch
	fs.Visit(func(f *flag.Flag) {
		v := values[f.Name]
		switch f.Name {
		case "title":
			patch.Title = v
		case "date":
			patch.Date = v
		case "time":
			patch.Time = v
		case "location":
			patch.Location = v
		case "description":
			patch.Description = v
		}
	})

	e, err := a.c.Events.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated %s %s\n", e.ID, e.Title)
	return nil
}

func (a *cli) delete(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := oneID(a.flags("delete"), args)
	if err != nil {
		return err
	}
	if err := a.c.Events.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "deleted", id)
	return nil
}

func (a *cli) join(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := oneID(a.flags("join"), args)
	if err != nil {
		return err
	}
	e, err := a.c.Events.Join(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "joined %s (%d attending)\n", e.Title, e.AttendeeCount)
	return nil
}

func (a *cli) mine(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	events, err := a.c.Events.Mine(ctx)
	if err != nil {
		return err
	}
	a.printEvents(events)
	return nil
}

func (a *cli) printEvents(events []client.Event) {
	if len(events) == 0 {
		fmt.Fprintln(a.out, "no events")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tTITLE\tLOCATION\tATTENDING")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.ID, e.Date.Format("2006-01-02"), e.Time, e.Title, e.Location, e.AttendeeCount)
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
