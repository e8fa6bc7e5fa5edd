package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nasdf/campus"
	"github.com/nasdf/campus/config"
	"github.com/nasdf/campus/fixture"
	"github.com/nasdf/campus/logging"
	"github.com/nasdf/campus/ref"
	"github.com/nasdf/campus/remote"
	"github.com/nasdf/campus/storage"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("campus", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to a config file")
	fixturePath := flags.String("fixture", "", "path to a YAML fixture, defaults to the sample directory")
	association := flags.String("association", "", "id of an association to resolve")
	addr := flags.String("addr", "", "address to serve documents and metrics on")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	dir, err := campus.Open(ctx, storage.NewMemory(),
		campus.WithLogger(log),
		campus.WithRegisterer(reg),
		campus.WithFetchOptions(cfg.Resolver.Options()...))
	if err != nil {
		return err
	}

	seed := fixture.Default()
	if *fixturePath != "" {
		seed, err = fixture.Load(*fixturePath)
		if err != nil {
			return err
		}
	}
	if err := dir.Seed(ctx, seed); err != nil {
		return err
	}

	if *association != "" {
		if err := printAssociation(ctx, out, dir, *association); err != nil {
			return err
		}
	}
	if cfg.Server.Addr == "" {
		return nil
	}
	return serve(ctx, log, cfg.Server, dir, reg)
}

func printAssociation(ctx context.Context, out io.Writer, dir *campus.Directory, id string) error {
	a, err := dir.Association(ctx, id)
	if err != nil {
		return err
	}
	members := a.Members.ResolveAll(ctx, dir.Fetcher(), nil)
	events := a.Events.ResolveAll(ctx, dir.Fetcher(), nil)

	fmt.Fprintf(out, "%s (%s)\n", a.DisplayName(), a.ID)

	result := members.Wait()
	fmt.Fprintf(out, "members: %d of %d resolved\n", result.Resolved, result.Total)
	for _, id := range a.Members.IDs() {
		if u, ok := a.Members.Get(id); ok {
			fmt.Fprintf(out, "  %s\t%s\n", u.ID, u.Name)
		} else {
			fmt.Fprintf(out, "  %s\t(%s)\n", id, a.Members.Status(id).State)
		}
	}

	result = events.Wait()
	fmt.Fprintf(out, "events: %d of %d resolved\n", result.Resolved, result.Total)
	for _, e := range a.Events.Ordered() {
		fmt.Fprintf(out, "  %s\t%s\t%s\n", e.ID, e.Start.Format("2006-01-02 15:04"), e.Title)
	}
	for _, id := range a.Events.IDs() {
		if a.Events.Status(id).State == ref.Failed {
			fmt.Fprintf(out, "  %s\t(%s)\n", id, ref.Failed)
		}
	}
	return nil
}

func serve(ctx context.Context, log *zap.Logger, cfg config.ServerConfig, dir *campus.Directory, reg *prometheus.Registry) error {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/", remote.Handler(dir.Store(), remote.WithLogger(log)))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	errs := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
