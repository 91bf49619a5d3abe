package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/kispace-io/appspace/internal/config"
	"github.com/kispace-io/appspace/internal/hostapi"
	"github.com/kispace-io/appspace/internal/loader"
	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/registry"
	"github.com/kispace-io/appspace/internal/resolver"
	"github.com/kispace-io/appspace/internal/store"
	"github.com/kispace-io/appspace/internal/tracing"
	"github.com/kispace-io/appspace/internal/workbench"
)

// env holds the services built for the running command.
var env *environment

type environment struct {
	settings  config.Settings
	registry  *registry.Client
	loader    *loader.Loader
	resolver  *resolver.Resolver
	commands  *workbench.CommandRegistry
	resources *workbench.Resources
	host      *hostapi.Host
	store     store.Store
	tracing   *tracing.Provider
}

// newEnv loads configuration, applies flag overrides and wires the services.
// Loader progress is reported on cmd's stderr.
func newEnv(ctx context.Context, cmd *cobra.Command) (*environment, error) {
	config.Load()
	s, err := config.Current()
	if err != nil {
		return nil, err
	}
	if flagRegistry != "" {
		s.RegistryURL = flagRegistry
	}
	if flagCache != "" {
		s.CacheURL = flagCache
	}
	if flagLogLevel != "" {
		s.LogLevel = flagLogLevel
	}
	log.Init(os.Stderr, s.LogLevel)

	tp, err := tracing.NewProvider(ctx, s.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	e := &environment{settings: s, tracing: tp}
	if !flagNoCache {
		st, err := store.Open(ctx, s.CacheURL)
		if err != nil {
			// The cache is an optimisation; run without it.
			log.WarnErr(log.CatCache, "package cache unavailable", err, "url", s.CacheURL)
		} else {
			e.store = st
		}
	}

	client := &http.Client{Timeout: s.HTTPTimeout}
	e.registry = registry.New(registry.WithHTTPClient(client), registry.WithBaseURL(s.RegistryURL))
	e.resolver = resolver.New(
		resolver.WithHTTPClient(client),
		resolver.WithCDNBase(s.CDNURL),
		resolver.WithAPIBase(s.GitHubAPIURL),
		resolver.WithToken(s.GitHubToken),
	)

	opts := []loader.Option{
		loader.WithHTTPClient(client),
		loader.WithRegistry(e.registry),
		loader.WithProgress(progressPrinter(cmd)),
	}
	if e.store != nil {
		opts = append(opts, loader.WithStore(e.store))
	}
	e.loader = loader.New(opts...)

	e.commands = workbench.NewCommandRegistry()
	e.resources = workbench.NewResources(nil)
	if s.WorkspaceURL != "" {
		e.resources.Open(s.WorkspaceURL, afs.New())
	}
	e.host = hostapi.NewHost(e.commands, e.resources)
	return e, nil
}

// Close deactivates extensions, closes the cache and flushes traces.
func (e *environment) Close(ctx context.Context) error {
	e.host.Close(ctx)
	var errs []error
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing cache: %w", err))
		}
	}
	if err := e.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flushing traces: %w", err))
	}
	return errors.Join(errs...)
}

// progressPrinter reports downloads and failures; cache hits stay quiet.
func progressPrinter(cmd *cobra.Command) loader.ProgressFunc {
	return func(id string, state loader.State, err error) {
		w := cmd.ErrOrStderr()
		switch state {
		case loader.StateDownloading:
			fmt.Fprintf(w, "%s %s\n", color.HiBlackString("downloading"), id)
		case loader.StateFailed:
			fmt.Fprintf(w, "%s %s: %v\n", color.RedString("failed"), id, err)
		}
	}
}
