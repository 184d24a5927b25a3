package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/config"
	"github.com/rongwang/sitecrew-server/internal/ledger"
	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
	"github.com/rongwang/sitecrew-server/internal/utils"
)

// App holds the CLI's connections, opened once per invocation
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	repo   *repository.SQLRepository
	ledger *ledger.Ledger
	out    io.Writer
}

// Open loads configuration and connects to the store, applying migrations
func (a *App) Open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	db, err := config.SetupDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.db = db
	a.repo = repository.NewSQLRepository(db)
	a.ledger = ledger.New(a.repo, location.NewProvider(cfg.Location, logger), logger)
	if a.out == nil {
		a.out = os.Stdout
	}

	return a.ledger.Refresh(ctx)
}

// Close releases the database connection
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

func (a *App) ClockIn(ctx context.Context, userID, projectID string, loc *models.Location) error {
	log, err := a.ledger.ClockIn(location.WithReported(ctx, loc), userID, projectID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Clocked in at %s (log %s)\n", log.ClockIn.Local().Format("15:04:05"), log.ID)
	return nil
}

func (a *App) ClockOut(ctx context.Context, userID string, loc *models.Location) error {
	log, err := a.ledger.ClockOut(location.WithReported(ctx, loc), userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Clocked out after %s, cost %.2f\n",
		formatDuration(time.Duration(*log.DurationMs)*time.Millisecond), *log.Cost)
	return nil
}

func (a *App) Status(ctx context.Context, userID string) error {
	open, err := a.ledger.OpenLogFor(ctx, userID)
	if err != nil {
		return err
	}
	if open == nil {
		fmt.Fprintln(a.out, "Clocked out")
		return nil
	}

	elapsed := time.Since(open.ClockIn)
	fmt.Fprintf(a.out, "Clocked in on project %s since %s (%s)\n",
		open.ProjectID, open.ClockIn.Local().Format("Jan 02 15:04"), formatDuration(elapsed))
	return nil
}

// Logs prints the user's most recent logs as a table
func (a *App) Logs(ctx context.Context, userID string, limit int) error {
	logs, err := a.ledger.RecentLogsFor(ctx, userID, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Day\tStart\tEnd\tDuration\tCost\tProject")

	var total time.Duration
	var totalCost float64
	for _, log := range logs {
		end, duration, cost := "-", "-", "-"
		if log.ClockOut != nil {
			d := time.Duration(*log.DurationMs) * time.Millisecond
			total += d
			totalCost += *log.Cost
			end = log.ClockOut.Local().Format("15:04:05")
			duration = formatDuration(d)
			cost = fmt.Sprintf("%.2f", *log.Cost)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			log.ClockIn.Local().Format("Jan 02, 2006"),
			log.ClockIn.Local().Format("15:04:05"),
			end, duration, cost, log.ProjectID)
	}
	fmt.Fprintf(w, "\t\tTotal:\t%s\t%.2f\t\n", formatDuration(total), totalCost)

	return w.Flush()
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
