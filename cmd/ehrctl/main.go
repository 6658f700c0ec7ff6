// ehrctl is a terminal client for the Lumina Health backend: sign in,
// browse charts and schedules, and watch the urgent views live.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/pkg/api"
	"luminahealth.io/client-go/pkg/authstore"
	"luminahealth.io/client-go/pkg/billing"
	"luminahealth.io/client-go/pkg/config"
	"luminahealth.io/client-go/pkg/ehr"
	"luminahealth.io/client-go/pkg/i18n"
	"luminahealth.io/client-go/pkg/logging"
	"luminahealth.io/client-go/pkg/querycache"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: ehrctl <command> [args]

Commands:
  login                    Sign in (prompts for credentials)
  logout                   Sign out and clear stored credentials
  whoami                   Show the signed-in user
  patients                 List patients
  patient <id>             Show one patient
  appointments <patient>   List a patient's appointments
  today                    Show today's schedule
  stat                     Show active STAT orders
  labs                     Show critical lab results
  invoices <patient>       List a patient's invoices
  watch                    Follow the urgent views until interrupted`)
	os.Exit(2)
}

// app bundles the wired client stack.
type app struct {
	cfg     config.Config
	client  *api.Client
	store   *authstore.Store
	cache   *querycache.Cache
	ehr     *ehr.Service
	billing *billing.Service
	tr      *i18n.Translator
}

func buildApp() (*app, error) {
	cfg := config.Load()

	if err := logging.Setup(logging.Options{
		App:              "ehrctl",
		Level:            cfg.LogLevel,
		Pretty:           true,
		ElasticsearchURL: cfg.ElasticsearchURL,
	}); err != nil {
		return nil, err
	}

	i18n.RegisterBuiltin()
	tr := i18n.NewTranslator(cfg.Locale)

	client := api.New(api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	})

	var creds authstore.CredentialStore
	if cfg.CredentialDir != "" {
		fileStore, err := authstore.NewFileCredentialStore(cfg.CredentialDir)
		if err != nil {
			return nil, err
		}
		creds = fileStore
	} else {
		creds = authstore.NewMemoryCredentialStore()
	}

	store, err := authstore.New(authstore.Config{
		Strategy:    authstore.Strategy(cfg.AuthStrategy),
		API:         authstore.NewHTTPAuthAPI(client),
		Credentials: creds,
		Namespace:   cfg.AppNamespace,
	})
	if err != nil {
		return nil, err
	}
	client.SetTokenSource(store)

	cache := querycache.New(client.Timeout())

	return &app{
		cfg:     cfg,
		client:  client,
		store:   store,
		cache:   cache,
		ehr:     ehr.NewService(client, cache),
		billing: billing.NewService(client, cache),
		tr:      tr,
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	a, err := buildApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.store.Logout(ctx)
	case "whoami":
		return a.whoami()
	case "patients":
		return a.listPatients(ctx)
	case "patient":
		if len(args) != 1 {
			usage()
		}
		return a.showPatient(ctx, args[0])
	case "appointments":
		if len(args) != 1 {
			usage()
		}
		return a.listAppointments(ctx, args[0])
	case "today":
		return a.today(ctx)
	case "stat":
		return a.statOrders(ctx)
	case "labs":
		return a.criticalLabs(ctx)
	case "invoices":
		if len(args) != 1 {
			usage()
		}
		return a.listInvoices(ctx, args[0])
	case "watch":
		return a.watch(ctx)
	default:
		usage()
		return nil
	}
}

func (a *app) login(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')

	err := a.store.Login(ctx, authstore.Credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	})
	if err != nil {
		return err
	}
	if user, ok := a.store.User(); ok {
		fmt.Println(a.tr.T("auth.signed_in", user.Name))
	} else {
		fmt.Println(a.tr.T("auth.signed_in", strings.TrimSpace(username)))
	}
	return nil
}

func (a *app) whoami() error {
	user, ok := a.store.User()
	if !ok {
		fmt.Println("state:", a.store.State())
		return nil
	}
	fmt.Printf("%s (%s) roles=%s\n", user.Name, user.Username, strings.Join(user.Roles, ","))
	return nil
}

func (a *app) listPatients(ctx context.Context) error {
	pageResult, err := a.ehr.Patients(ctx, api.ListParams{})
	if err != nil {
		return err
	}
	for _, p := range pageResult.Items {
		fmt.Printf("%-12s %-24s %s\n", p.MRN, p.LastName+", "+p.FirstName, p.DOB)
	}
	fmt.Println(a.tr.T("list.showing", len(pageResult.Items), pageResult.Total))
	return nil
}

func (a *app) showPatient(ctx context.Context, id string) error {
	p, err := a.ehr.Patient(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", p.FirstName, p.LastName)
	fmt.Printf("  %s: %s\n", a.tr.T("patient.mrn"), p.MRN)
	fmt.Printf("  %s: %s\n", a.tr.T("patient.dob"), p.DOB)
	fmt.Printf("  status: %s\n", p.Status)
	if p.Insurance != nil {
		fmt.Printf("  insurance: %s (%s)\n", p.Insurance.PayerName, p.Insurance.MemberID)
	}
	return nil
}

func (a *app) listAppointments(ctx context.Context, patientID string) error {
	pageResult, err := a.ehr.AppointmentsByPatient(ctx, patientID)
	if err != nil {
		return err
	}
	printAppointments(pageResult.Items)
	return nil
}

func (a *app) today(ctx context.Context) error {
	pageResult, err := a.ehr.AppointmentsToday(ctx)
	if err != nil {
		return err
	}
	printAppointments(pageResult.Items)
	return nil
}

func printAppointments(items []ehr.Appointment) {
	for _, appt := range items {
		fmt.Printf("%-22s %-12s %-10s %s\n", appt.ScheduledDatetime, appt.Type, appt.Status, appt.ID)
	}
}

func (a *app) statOrders(ctx context.Context) error {
	pageResult, err := a.ehr.STATOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range pageResult.Items {
		fmt.Printf("%-22s %-10s %s\n", o.StartTime, o.Type, o.Description)
	}
	return nil
}

func (a *app) criticalLabs(ctx context.Context) error {
	pageResult, err := a.ehr.CriticalLabs(ctx)
	if err != nil {
		return err
	}
	for _, l := range pageResult.Items {
		fmt.Printf("%-22s %-20s %.2f %s (ref %.1f-%.1f)\n",
			l.ResultedAt, l.TestName, l.Value, l.Unit, l.ReferenceLow, l.ReferenceHigh)
	}
	return nil
}

func (a *app) listInvoices(ctx context.Context, patientID string) error {
	pageResult, err := a.billing.InvoicesByPatient(ctx, patientID, api.ListParams{})
	if err != nil {
		return err
	}
	for _, inv := range pageResult.Items {
		fmt.Printf("%-38s %-16s %s\n", inv.ID, inv.Status,
			a.tr.FormatMoney(inv.Balance, inv.Currency))
	}
	return nil
}

// watch primes the urgent views, then lets the refetcher keep them fresh
// while printing a summary line on every tick.
func (a *app) watch(ctx context.Context) error {
	refetcher := querycache.NewRefetcher(a.cache)
	a.ehr.RegisterUrgentViews(refetcher)

	go refetcher.Run(ctx)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		stat, err := a.ehr.STATOrders(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("STAT order view unavailable")
		}
		labs, err := a.ehr.CriticalLabs(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Critical lab view unavailable")
		}
		fmt.Printf("[%s] stat=%d critical-labs=%d\n",
			time.Now().Format("15:04:05"), stat.Total, labs.Total)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}
