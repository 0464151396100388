// kremactl is a terminal front end for the Krema admin API: it logs in,
// switches salons, and manages the catalog and bookings of the active salon.
// All wiring happens here; the stores only see their constructor arguments.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/RS-Eagle/krema-admin-go/internal/api"
	"github.com/RS-Eagle/krema-admin-go/internal/config"
	"github.com/RS-Eagle/krema-admin-go/internal/credstore"
	"github.com/RS-Eagle/krema-admin-go/internal/models"
	"github.com/RS-Eagle/krema-admin-go/internal/session"
	"github.com/RS-Eagle/krema-admin-go/internal/store"
	"github.com/RS-Eagle/krema-admin-go/internal/telemetry"
)

const usage = `usage: kremactl <command> [flags]

commands:
  login         authenticate and persist credentials
  logout        clear persisted credentials
  me            show the current user and salons
  salons        list salons, create one, or switch scope
  services      manage the active salon's service catalog
  staff         manage the active salon's staff roster
  appointments  manage the active salon's bookings
`

type app struct {
	cfg      config.Config
	log      *slog.Logger
	client   *api.Client
	sess     *session.Store
	services *store.Services
	staff    *store.Staff
	appts    *store.Appointments
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config error: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Log.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	shutdownTracing := telemetry.Setup("kremactl", logger)
	defer shutdownTracing(ctx)

	creds, err := credstore.New(cfg.Credentials.Driver, cfg.Credentials.Dir)
	if err != nil {
		fatal("%v", err)
	}
	client := api.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, logger)
	sess := session.New(client, creds, logger)

	a := &app{cfg: cfg, log: logger, client: client, sess: sess}
	a.services = store.NewServices(client, sess, logger)
	a.staff = store.NewStaff(client, sess, logger)
	a.appts = store.NewAppointments(client, sess, logger)
	defer a.services.Close()
	defer a.staff.Close()
	defer a.appts.Close()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fatal("%v", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.sess.Logout()
		fmt.Println("logged out")
		return nil
	case "me":
		return a.cmdMe(ctx)
	case "salons":
		return a.cmdSalons(ctx, args)
	case "services":
		return a.cmdServices(ctx, args)
	case "staff":
		return a.cmdStaff(ctx, args)
	case "appointments":
		return a.cmdAppointments(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ExitOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	_ = flags.Parse(args)
	if *email == "" || *password == "" {
		return errors.New("login requires --email and --password")
	}

	if err := a.sess.Login(ctx, *email, *password); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return errors.New("invalid email or password")
		}
		return err
	}
	user, _ := a.sess.User()
	fmt.Printf("logged in as %s (%s), %d salon(s)\n", user.Name, user.Email, len(a.sess.Salons()))
	return nil
}

func (a *app) cmdMe(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	user, ok := a.sess.User()
	if !ok {
		return errors.New("not logged in")
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return printSalons(a.sess.Salons(), a.sess.ActiveSalonID())
}

func (a *app) cmdSalons(ctx context.Context, args []string) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}
	switch sub {
	case "list":
		return printSalons(a.sess.Salons(), a.sess.ActiveSalonID())
	case "create":
		flags := pflag.NewFlagSet("salons create", pflag.ExitOnError)
		name := flags.String("name", "", "salon name")
		currency := flags.String("currency", "", "currency code")
		timezone := flags.String("timezone", "", "IANA timezone")
		_ = flags.Parse(args)
		if *name == "" {
			return errors.New("salons create requires --name")
		}
		salon, err := a.sess.AddSalon(ctx, models.CreateSalonRequest{
			Name: *name, Currency: *currency, Timezone: *timezone,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created salon %d (%s), now active\n", salon.ID, salon.Name)
		return nil
	case "use":
		if len(args) != 1 {
			return errors.New("usage: kremactl salons use <id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid salon id %q", args[0])
		}
		if err := a.sess.SetActiveSalon(id); err != nil {
			return err
		}
		fmt.Printf("active salon is now %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown salons subcommand %q", sub)
	}
}

func (a *app) cmdServices(ctx context.Context, args []string) error {
	sub, args := subcommand(args)
	scope, args := scopeFlag(args)
	if err := a.restoreScoped(ctx, scope); err != nil {
		return err
	}

	switch sub {
	case "list":
		flags := pflag.NewFlagSet("services list", pflag.ExitOnError)
		status := flags.String("status", "all", "all, active or inactive")
		search := flags.String("search", "", "name substring filter")
		_ = flags.Parse(args)
		if err := a.services.Refresh(ctx); err != nil {
			return err
		}
		items := a.services.Filtered(store.StatusFilter(*status), *search)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tDURATION\tACTIVE")
		for _, svc := range items {
			fmt.Fprintf(w, "%d\t%s\t%d\t%dmin\t%t\n", svc.ID, svc.Name, svc.Price, svc.DurationMin, svc.IsActive)
		}
		return w.Flush()
	case "create":
		flags := pflag.NewFlagSet("services create", pflag.ExitOnError)
		name := flags.String("name", "", "service name")
		price := flags.Int64("price", 0, "price in minor currency units")
		duration := flags.Int("duration", 30, "duration in minutes")
		_ = flags.Parse(args)
		svc, err := a.services.Create(ctx, models.CreateServiceRequest{
			Name: *name, Price: *price, DurationMin: *duration,
		})
		if err != nil {
			return describeFailure(err)
		}
		fmt.Printf("created service %d (%s)\n", svc.ID, svc.Name)
		return nil
	case "delete":
		flags := pflag.NewFlagSet("services delete", pflag.ExitOnError)
		id := flags.Int64("id", 0, "service id")
		_ = flags.Parse(args)
		if err := a.services.Delete(ctx, *id); err != nil {
			return describeFailure(err)
		}
		fmt.Printf("deleted service %d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown services subcommand %q", sub)
	}
}

func (a *app) cmdStaff(ctx context.Context, args []string) error {
	sub, args := subcommand(args)
	scope, args := scopeFlag(args)
	if err := a.restoreScoped(ctx, scope); err != nil {
		return err
	}

	switch sub {
	case "list":
		flags := pflag.NewFlagSet("staff list", pflag.ExitOnError)
		status := flags.String("status", "all", "all, active or inactive")
		search := flags.String("search", "", "name substring filter")
		_ = flags.Parse(args)
		if err := a.staff.Refresh(ctx); err != nil {
			return err
		}
		items := a.staff.Filtered(store.StatusFilter(*status), *search)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTITLE\tACTIVE")
		for _, st := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", st.ID, st.Name, st.Title, st.IsActive)
		}
		return w.Flush()
	case "create":
		flags := pflag.NewFlagSet("staff create", pflag.ExitOnError)
		name := flags.String("name", "", "staff name")
		title := flags.String("title", "", "job title")
		_ = flags.Parse(args)
		st, err := a.staff.Create(ctx, models.CreateStaffRequest{Name: *name, Title: *title})
		if err != nil {
			return describeFailure(err)
		}
		fmt.Printf("created staff member %d (%s)\n", st.ID, st.Name)
		return nil
	case "delete":
		flags := pflag.NewFlagSet("staff delete", pflag.ExitOnError)
		id := flags.Int64("id", 0, "staff id")
		_ = flags.Parse(args)
		if err := a.staff.Delete(ctx, *id); err != nil {
			return describeFailure(err)
		}
		fmt.Printf("deleted staff member %d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown staff subcommand %q", sub)
	}
}

func (a *app) cmdAppointments(ctx context.Context, args []string) error {
	sub, args := subcommand(args)
	scope, args := scopeFlag(args)
	if err := a.restoreScoped(ctx, scope); err != nil {
		return err
	}

	switch sub {
	case "list":
		flags := pflag.NewFlagSet("appointments list", pflag.ExitOnError)
		status := flags.String("status", "", "filter by status")
		staffID := flags.Int64("staff", 0, "filter by staff id")
		_ = flags.Parse(args)
		if err := a.appts.Fetch(ctx, models.AppointmentFilter{
			Status:  models.AppointmentStatus(*status),
			StaffID: *staffID,
		}); err != nil {
			return describeFailure(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCUSTOMER\tSTART\tSTATUS")
		for _, appt := range a.appts.Items() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", appt.ID, appt.CustomerName,
				appt.StartAt.Format(time.RFC3339), appt.Status)
		}
		return w.Flush()
	case "create":
		flags := pflag.NewFlagSet("appointments create", pflag.ExitOnError)
		serviceID := flags.Int64("service", 0, "service id")
		staffID := flags.Int64("staff", 0, "staff id (optional)")
		customer := flags.String("customer", "", "customer name")
		phone := flags.String("phone", "", "customer phone")
		start := flags.String("start", "", "start (RFC 3339)")
		end := flags.String("end", "", "end (RFC 3339)")
		_ = flags.Parse(args)
		startAt, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		endAt, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		req := models.CreateAppointmentRequest{
			ServiceID:     *serviceID,
			StartAt:       startAt,
			EndAt:         endAt,
			CustomerName:  *customer,
			CustomerPhone: *phone,
		}
		if *staffID != 0 {
			req.StaffID = staffID
		}
		appt, err := a.appts.Create(ctx, req)
		if err != nil {
			return describeFailure(err)
		}
		fmt.Printf("booked appointment %d for %s\n", appt.ID, appt.CustomerName)
		return nil
	case "status":
		flags := pflag.NewFlagSet("appointments status", pflag.ExitOnError)
		id := flags.Int64("id", 0, "appointment id")
		status := flags.String("to", "", "new status")
		_ = flags.Parse(args)
		if err := a.appts.SetStatus(ctx, *id, models.AppointmentStatus(*status)); err != nil {
			return describeFailure(err)
		}
		fmt.Printf("appointment %d is now %s\n", *id, *status)
		return nil
	case "reschedule":
		flags := pflag.NewFlagSet("appointments reschedule", pflag.ExitOnError)
		id := flags.Int64("id", 0, "appointment id")
		start := flags.String("start", "", "new start (RFC 3339)")
		end := flags.String("end", "", "new end (RFC 3339)")
		notes := flags.String("notes", "", "updated notes")
		_ = flags.Parse(args)
		startAt, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		endAt, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		if err := a.appts.Reschedule(ctx, *id, models.RescheduleRequest{
			StartAt: startAt, EndAt: endAt, Notes: *notes,
		}); err != nil {
			return describeFailure(err)
		}
		fmt.Printf("rescheduled appointment %d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown appointments subcommand %q", sub)
	}
}

// restore loads persisted credentials and revalidates the profile.
func (a *app) restore(ctx context.Context) error {
	if err := a.sess.Restore(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("session expired, run kremactl login")
		}
		return err
	}
	return nil
}

// restoreScoped restores the session, optionally switches the scope, and
// waits for the stores to bind to the active salon.
func (a *app) restoreScoped(ctx context.Context, salonID int64) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	if !a.sess.IsAuthenticated() {
		return errors.New("not logged in")
	}
	if salonID != 0 {
		if err := a.sess.SetActiveSalon(salonID); err != nil {
			return err
		}
	}
	active := a.sess.ActiveSalonID()
	if active == 0 {
		return errors.New("no salon available; create one with kremactl salons create")
	}
	for _, bound := range []interface{ SalonID() int64 }{a.services, a.staff, a.appts} {
		if err := waitBound(bound, active); err != nil {
			return err
		}
	}
	return nil
}

func waitBound(st interface{ SalonID() int64 }, want int64) error {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st.SalonID() == want {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("store did not bind to salon %d", want)
}

func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "list", nil
	}
	return args[0], args[1:]
}

// scopeFlag strips --salon <id> from the argument list so every resource
// command can override the active salon for one invocation.
func scopeFlag(args []string) (int64, []string) {
	var salon int64
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--salon" && i+1 < len(args):
			salon, _ = strconv.ParseInt(args[i+1], 10, 64)
			i++
		case strings.HasPrefix(args[i], "--salon="):
			salon, _ = strconv.ParseInt(strings.TrimPrefix(args[i], "--salon="), 10, 64)
		default:
			out = append(out, args[i])
		}
	}
	return salon, out
}

// describeFailure flattens the error taxonomy into operator-facing text.
func describeFailure(err error) error {
	var validation *api.ValidationError
	if errors.As(err, &validation) {
		msg := validation.Message
		for field, problems := range validation.Fields {
			for _, p := range problems {
				msg += fmt.Sprintf("\n  %s: %s", field, p)
			}
		}
		return errors.New(msg)
	}
	if errors.Is(err, api.ErrNotScoped) {
		return errors.New("no active salon selected")
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return errors.New("session expired, run kremactl login")
	}
	return err
}

func printSalons(salons []models.Salon, activeID int64) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tTIMEZONE\tROLE\tACTIVE")
	for _, salon := range salons {
		marker := ""
		if salon.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			salon.ID, salon.Name, salon.Currency, salon.Timezone, salon.Role, marker)
	}
	return w.Flush()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
