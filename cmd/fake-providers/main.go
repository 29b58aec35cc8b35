// Command fake-providers serves scripted upstream endpoints for local runs of
// riskview: a dashboard, a student roster, an incident log and a detail route.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/riskview/internal/fakeprovider"
	"github.com/okian/riskview/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr       = ":9090"
	defaultSubjects   = 40
	defaultSeed       = 1
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// routes maps the names accepted by -fail and -slow onto served patterns.
var routes = map[string]string{
	"dashboard": "GET " + fakeprovider.DashboardPath,
	"students":  "GET " + fakeprovider.StudentsPath,
	"incidents": "GET " + fakeprovider.IncidentsPath,
}

func main() {
	var (
		addr     = flag.String("addr", defaultAddr, "Listen address")
		subjects = flag.Int("subjects", defaultSubjects, "Number of generated subjects")
		seed     = flag.Uint64("seed", defaultSeed, "Generator seed")
		fail     = flag.String("fail", "", "Comma separated routes answering with a failure envelope (dashboard,students,incidents)")
		slow     = flag.Duration("slow", 0, "Delay added to every collection route")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get().Named("fake-providers")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fake, err := build(*subjects, *seed, *fail, *slow, log)
	if err != nil {
		log.Error(ctx, "invalid flags", logger.Error(err))
		os.Exit(2)
	}

	srv := &http.Server{Addr: *addr, Handler: fake, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		log.Info(ctx, "serving fake providers",
			logger.String("addr", *addr),
			logger.Int("subjects", *subjects),
			logger.Uint64("seed", *seed),
			logger.String("fail", *fail),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "listen failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// build scripts a fake provider set from the command line flags.
func build(subjects int, seed uint64, fail string, slow time.Duration, log logger.Logger) (*fakeprovider.Server, error) {
	if subjects < 0 {
		return nil, fmt.Errorf("subjects must not be negative: %d", subjects)
	}
	fake := fakeprovider.New(fakeprovider.WithLogger(log))
	g := fakeprovider.NewGenerator(seed)
	fakeprovider.Populate(fake, g, subjects)

	failing, err := parseRoutes(fail)
	if err != nil {
		return nil, err
	}
	if slow > 0 {
		// Re-script with the same seed so the delayed payload is identical.
		g = fakeprovider.NewGenerator(seed)
		records := g.Subjects(subjects)
		fake.Set(routes["dashboard"], fakeprovider.OK(map[string]any{fakeprovider.DashboardDataKey: records}).After(slow))
		fake.Set(routes["students"], fakeprovider.OK(records).After(slow))
		fake.Set(routes["incidents"], fakeprovider.OK(g.Incidents(subjects*3, subjects)).After(slow))
	}
	for _, pattern := range failing {
		fake.Set(pattern, fakeprovider.Failure("scripted failure"))
	}
	return fake, nil
}

// parseRoutes resolves a comma separated list of route names.
func parseRoutes(s string) ([]string, error) {
	var out []string
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		pattern, ok := routes[name]
		if !ok {
			return nil, fmt.Errorf("unknown route %q", name)
		}
		out = append(out, pattern)
	}
	return out, nil
}
