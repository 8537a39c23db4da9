// Package main is the Technovus command line client: login with a mobile
// OTP, browse events, register a team, invite teammates, and check
// registration status.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/technovus/client-go/internal/api"
	"github.com/technovus/client-go/internal/auth"
	"github.com/technovus/client-go/internal/config"
	eventModel "github.com/technovus/client-go/internal/event/model"
	"github.com/technovus/client-go/internal/registration"
	"github.com/technovus/client-go/internal/session"
	teamModel "github.com/technovus/client-go/internal/team/model"
	"github.com/technovus/client-go/internal/team/workflow"
	"github.com/technovus/client-go/internal/validate"
	"github.com/technovus/client-go/pkg/logger"
)

const usage = `usage: technovus <command> [flags]

commands:
  login       authenticate with a mobile OTP
  events      list the event catalogue
  status      show registration status for an event
  register    create a team, invite members, register for an event
  invite      send one more invitation to an existing team
  logout      clear the local session
`

// app bundles the wired-up client components the subcommands share.
type app struct {
	cfg       config.Config
	logger    *zap.SugaredLogger
	api       *api.Client
	session   *session.Store
	flow      *auth.Flow
	validator *validate.Validator
	engine    *workflow.Engine
	rec       *registration.Reconciler
}

func newApp() (*app, error) {
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	zl, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	apiClient := api.New(cfg.API, zl)
	store, err := session.Open(cfg.Store, apiClient, zl)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	cache := validate.NewCache(cfg.Validator.CacheTTL)
	validator := validate.New(apiClient, store, cache, zl)

	return &app{
		cfg:       cfg,
		logger:    zl,
		api:       apiClient,
		session:   store,
		flow:      auth.New(apiClient, store, cfg.Auth, zl),
		validator: validator,
		engine:    workflow.New(apiClient, store, validator, zl),
		rec:       registration.NewReconciler(apiClient, store, zl),
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("technovus: %v", err)
	}
	defer a.logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch cmd := os.Args[1]; cmd {
	case "login":
		err = a.login(ctx)
	case "events":
		err = a.listEvents(ctx)
	case "status":
		err = a.status(ctx, os.Args[2:])
	case "register":
		err = a.register(ctx, os.Args[2:])
	case "invite":
		err = a.invite(ctx, os.Args[2:])
	case "logout":
		err = a.logout(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "technovus: %v\n", err)
		os.Exit(1)
	}
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) login(ctx context.Context) error {
	mobile, err := prompt("mobile number: ")
	if err != nil {
		return err
	}
	if err := a.flow.RequestOTP(ctx, mobile); err != nil {
		return err
	}
	fmt.Println("code sent")

	for {
		code, err := prompt("code: ")
		if err != nil {
			return err
		}
		user, err := a.flow.VerifyOTP(ctx, code)
		if err != nil {
			fmt.Printf("verification failed: %v\n", err)
			if a.flow.State() == auth.StateVerifying {
				continue
			}
			return err
		}
		name := user.Name
		if name == "" {
			name = user.Mobile
		}
		fmt.Printf("logged in as %s (%s)\n", name, user.Role)
		return nil
	}
}

func (a *app) listEvents(ctx context.Context) error {
	events, err := a.api.ListEvents(ctx)
	if err != nil {
		return err
	}
	for _, e := range events {
		size := "solo"
		if e.IsTeamEvent() {
			size = fmt.Sprintf("team %d-%d", e.TeamMinSize, e.TeamMaxSize)
		}
		fmt.Printf("%-16s %-24s %s\n", e.ID, e.Name, size)
	}
	return nil
}

// findEvent resolves an event id against the catalogue.
func (a *app) findEvent(ctx context.Context, eventID string) (eventModel.Event, error) {
	if eventID == "" {
		return eventModel.Event{}, fmt.Errorf("--event is required")
	}
	events, err := a.api.ListEvents(ctx)
	if err != nil {
		return eventModel.Event{}, err
	}
	for _, e := range events {
		if e.ID == eventID {
			return e, nil
		}
	}
	return eventModel.Event{}, fmt.Errorf("unknown event %q", eventID)
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	eventID := fs.String("event", "", "event id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	event, err := a.findEvent(ctx, *eventID)
	if err != nil {
		return err
	}

	st := a.rec.Reconcile(ctx, event)
	switch st.Status {
	case registration.StatusRegistered:
		fmt.Printf("registered: team %q, %d accepted\n", st.TeamName, st.AcceptedCount)
	case registration.StatusPending:
		fmt.Printf("pending: team %q, %d of %d accepted\n", st.TeamName, st.AcceptedCount, event.TeamMinSize)
	case registration.StatusNotRegistered:
		fmt.Println("not registered")
	default:
		fmt.Println("status unknown, try again")
	}
	for _, m := range st.Members {
		fmt.Printf("  %-16s %-12s %s\n", m.Name, m.Mobile, m.Status)
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	eventID := fs.String("event", "", "event id")
	teamName := fs.String("name", "", "team name")
	mobiles := fs.String("mobiles", "", "comma-separated teammate mobiles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	event, err := a.findEvent(ctx, *eventID)
	if err != nil {
		return err
	}

	draft := workflow.NewDraft()
	draft.Name = *teamName
	for _, mobile := range strings.Split(*mobiles, ",") {
		if mobile = strings.TrimSpace(mobile); mobile != "" {
			draft.Add(mobile)
		}
	}

	result, err := a.engine.Register(ctx, draft, event)
	if err != nil {
		for _, c := range draft.Candidates() {
			if c.Err != "" {
				fmt.Printf("  %s: %s\n", c.Mobile, c.Err)
			}
		}
		return err
	}

	fmt.Printf("team %q registered for %s\n", result.Team.Name, event.Name)
	for _, inv := range result.Invites {
		if inv.Err != nil {
			fmt.Printf("  invite to %s failed: %v\n", inv.Mobile, inv.Err)
		} else {
			fmt.Printf("  invited %s\n", inv.Mobile)
		}
	}
	return nil
}

func (a *app) invite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("invite", flag.ExitOnError)
	eventID := fs.String("event", "", "event id")
	teamID := fs.String("team", "", "team id")
	mobile := fs.String("mobile", "", "teammate mobile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	event, err := a.findEvent(ctx, *eventID)
	if err != nil {
		return err
	}

	var members []teamModel.TeamMember
	err = a.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		var fetchErr error
		members, fetchErr = a.api.TeamMembers(ctx, token, *teamID)
		return fetchErr
	})
	if err != nil {
		return err
	}

	if err := a.engine.SendInvite(ctx, *teamID, *mobile, members, event); err != nil {
		return err
	}
	fmt.Printf("invited %s\n", *mobile)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.flow.Reset()
	fmt.Println("logged out")
	return nil
}
