package main

import (
	"log/slog"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/borrowbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/recalculateoverdue"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/reconcilestock"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/returnbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/lendingstats"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/loanjournal"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/loansearch"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/overdueloans"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/sweephistory"
	"github.com/AntonStoeckl/lending-ledger-go/lending/scheduler"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell/observable"
)

// lendingHandlers are the observable feature handlers the HTTP layer talks to.
type lendingHandlers struct {
	borrow    shell.CommandHandler[borrowbook.Command, borrowbook.Result]
	giveBack  shell.CommandHandler[returnbook.Command, returnbook.Result]
	reconcile shell.CommandHandler[reconcilestock.Command, reconcilestock.Result]

	overdue shell.QueryHandler[overdueloans.Query, overdueloans.OverdueLoans]
	search  shell.QueryHandler[loansearch.Query, loansearch.Loans]
	stats   shell.QueryHandler[lendingstats.Query, lendingstats.Stats]
	journal shell.QueryHandler[loanjournal.Query, loanjournal.Journal]
	sweeps  shell.QueryHandler[sweephistory.Query, sweephistory.SweepHistory]
}

// applicationDependencies holds everything the HTTP handlers, the middleware and the server loop need.
type applicationDependencies struct {
	config    serverConfig
	logger    *slog.Logger
	store     ledger.Store
	handlers  lendingHandlers
	scheduler *scheduler.Scheduler
	clock     func() time.Time
	done      chan struct{}
}

func newApplication(
	cfg serverConfig,
	logger *slog.Logger,
	store ledger.Store,
	tel *telemetry,
	clock func() time.Time,
) (*applicationDependencies, error) {

	var (
		handlers lendingHandlers
		err      error
	)

	if handlers.borrow, err = observable.NewCommandWrapper[borrowbook.Command, borrowbook.Result](
		borrowbook.NewCommandHandler(store),
		commandOptions[borrowbook.Command, borrowbook.Result](logger, tel)...,
	); err != nil {
		return nil, err
	}

	if handlers.giveBack, err = observable.NewCommandWrapper[returnbook.Command, returnbook.Result](
		returnbook.NewCommandHandler(store),
		commandOptions[returnbook.Command, returnbook.Result](logger, tel)...,
	); err != nil {
		return nil, err
	}

	if handlers.reconcile, err = observable.NewCommandWrapper[reconcilestock.Command, reconcilestock.Result](
		reconcilestock.NewCommandHandler(store, reconcilestock.WithLogger(logger)),
		commandOptions[reconcilestock.Command, reconcilestock.Result](logger, tel)...,
	); err != nil {
		return nil, err
	}

	sweeper, err := observable.NewCommandWrapper[recalculateoverdue.Command, recalculateoverdue.Result](
		recalculateoverdue.NewCommandHandler(store, recalculateoverdue.WithLogger(logger)),
		commandOptions[recalculateoverdue.Command, recalculateoverdue.Result](logger, tel)...,
	)
	if err != nil {
		return nil, err
	}

	if handlers.overdue, err = observable.NewQueryWrapper[overdueloans.Query, overdueloans.OverdueLoans](
		overdueloans.NewQueryHandler(store),
		queryOptions[overdueloans.Query, overdueloans.OverdueLoans](logger, tel)...,
	); err != nil {
		return nil, err
	}

	if handlers.search, err = observable.NewQueryWrapper[loansearch.Query, loansearch.Loans](
		loansearch.NewQueryHandler(store),
		queryOptions[loansearch.Query, loansearch.Loans](logger, tel)...,
	); err != nil {
		return nil, err
	}

	if handlers.stats, err = observable.NewQueryWrapper[lendingstats.Query, lendingstats.Stats](
		lendingstats.NewQueryHandler(store),
		queryOptions[lendingstats.Query, lendingstats.Stats](logger, tel)...,
	); err != nil {
		return nil, err
	}

	if handlers.journal, err = observable.NewQueryWrapper[loanjournal.Query, loanjournal.Journal](
		loanjournal.NewQueryHandler(store),
		queryOptions[loanjournal.Query, loanjournal.Journal](logger, tel)...,
	); err != nil {
		return nil, err
	}

	if handlers.sweeps, err = observable.NewQueryWrapper[sweephistory.Query, sweephistory.SweepHistory](
		sweephistory.NewQueryHandler(store),
		queryOptions[sweephistory.Query, sweephistory.SweepHistory](logger, tel)...,
	); err != nil {
		return nil, err
	}

	finePerDay, err := cfg.finePerDayRate()
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.sweep.timezone)
	if err != nil {
		return nil, err
	}

	sweepScheduler, err := scheduler.NewScheduler(
		sweeper,
		finePerDay,
		scheduler.WithDailyAt(cfg.sweep.at),
		scheduler.WithLocation(location),
		scheduler.WithLogger(logger),
		scheduler.WithClock(clock),
	)
	if err != nil {
		return nil, err
	}

	return &applicationDependencies{
		config:    cfg,
		logger:    logger,
		store:     store,
		handlers:  handlers,
		scheduler: sweepScheduler,
		clock:     clock,
		done:      make(chan struct{}),
	}, nil
}
