package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/launchpadhq/schoolhub/internal/authz"
	"github.com/launchpadhq/schoolhub/internal/config"
	"github.com/launchpadhq/schoolhub/internal/datastore"
	httpx "github.com/launchpadhq/schoolhub/internal/http"
	"github.com/launchpadhq/schoolhub/internal/http/handlers"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/identity"
	"github.com/launchpadhq/schoolhub/internal/observability"
	"github.com/launchpadhq/schoolhub/internal/ranking"
	"github.com/launchpadhq/schoolhub/internal/repo/supabase"
	"github.com/launchpadhq/schoolhub/internal/roster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "schoolhub", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	// metrics
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// data store + identity provider clients
	store := datastore.New(cfg.SupabaseURL, cfg.SupabaseSecret, cfg.StoreTimeout)
	store.SetMetrics(prom)

	verifier := identity.NewVerifier(cfg.SupabaseURL, cfg.SupabaseSecret, cfg.StoreTimeout)
	provisioner := identity.NewProvisioner(cfg.SupabaseURL, cfg.SupabaseSecret, cfg.StoreTimeout)

	// repositories
	profiles := supabase.NewProfilesRepo(store)
	classes := supabase.NewClassesRepo(store)
	enrollments := supabase.NewEnrollmentsRepo(store)
	subjects := supabase.NewSubjectsRepo(store)
	comments := supabase.NewCommentsRepo(store)
	assessments := supabase.NewAssessmentsRepo(store)
	portfolio := supabase.NewPortfolioRepo(store)

	resolver := authz.NewResolver(profiles)
	reconciler := roster.New(profiles, enrollments)
	ranker := ranking.New()

	auth := middlewares.NewAuthMiddleware(verifier, resolver)

	ping := func() error {
		ctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, cfg.SupabaseURL+"/rest/v1/", nil)
		if err != nil {
			return err
		}
		req.Header.Set("apikey", cfg.SupabaseSecret)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()

		return nil
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Prom:     prom,
		Registry: registry,
		Auth:     auth,
		Ping:     ping,

		Students:      handlers.NewStudentHandler(assessments, enrollments, classes, subjects, comments, portfolio, ranker),
		Teachers:      handlers.NewTeacherHandler(classes, enrollments, profiles, comments, assessments),
		AdminStudents: handlers.NewAdminStudentsHandler(profiles, enrollments, classes, assessments, comments, provisioner),
		AdminTeachers: handlers.NewAdminTeachersHandler(profiles, classes, subjects, provisioner),
		AdminClasses:  handlers.NewAdminClassesHandler(classes, subjects, profiles, enrollments, reconciler),
		Subjects:      handlers.NewSubjectsHandler(subjects, classes),
		Reports:       handlers.NewReportsHandler(profiles, classes, assessments),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
