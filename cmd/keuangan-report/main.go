package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"

	"keuangan/internal/auth"
	"keuangan/internal/cli"
	"keuangan/internal/core"
	applog "keuangan/internal/log"
	"keuangan/internal/report"
	"keuangan/internal/services"
)

type Params struct {
	View     string `descr:"What to print" alts:"balances,summary,transactions,dashboard" strict:"true" positional:"true"`
	Year     int    `descr:"Year of the month to report (default: current)" optional:"true"`
	Month    int    `descr:"Month to report, 1-12 (default: current)" optional:"true"`
	Password string `descr:"Ledger password (default: APP_PASSWORD)" optional:"true"`
	Color    bool   `descr:"Highlight overspent lines" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("keuangan-report").
		WithShort("Print balances and budget consumption of the ledger").
		WithLong("Reads the configured ledger store and renders account balances, net worth, the monthly budget summary or the transaction list as tables.").
		WithRunFunc(func(params *Params) {
			cli.LoadEnvFile()
			cfg := cli.LoadAndValidateConfig()
			logger := cli.SetupLogger(os.Stderr, cfg, applog.ComponentApp)

			ctx := context.Background()
			plan := cli.LoadPlan(logger, cfg)
			store := cli.OpenStore(ctx, logger, cfg)
			defer store.Cleanup()

			password := params.Password
			if password == "" {
				password = cfg.AppPassword
			}
			sess, err := auth.NewAuthenticator(cfg.AppPassword).Login(auth.Anonymous(), password)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			ledger := services.NewLedgerService(store.Store, plan, nil, logger)
			if err := run(ctx, os.Stdout, ledger, sess, *params, time.Now()); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		}).
		Run()
}

// run renders one view. Year and month default to now's.
func run(ctx context.Context, w io.Writer, ledger *services.LedgerService, sess auth.Session, p Params, now time.Time) error {
	year, month := p.Year, p.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	opts := report.DefaultOptions()
	opts.Color = p.Color

	switch p.View {
	case "balances":
		balances, err := ledger.Balances(ctx, sess)
		if err != nil {
			return err
		}
		netWorth, err := ledger.NetWorth(ctx, sess)
		if err != nil {
			return err
		}
		report.Balances(w, balances, netWorth, opts)
	case "summary":
		s, err := ledger.MonthlySummary(ctx, sess, year, month)
		if err != nil {
			return err
		}
		report.Summary(w, s, opts)
	case "transactions":
		var filter *core.Period
		if p.Year != 0 || p.Month != 0 {
			filter = &core.Period{Year: year, Month: month}
		}
		txs, err := ledger.Transactions(ctx, sess, filter)
		if err != nil {
			return err
		}
		report.Transactions(w, core.SortByDateDesc(txs), opts)
	case "dashboard":
		d, err := ledger.Dashboard(ctx, sess, year, month)
		if err != nil {
			return err
		}
		report.Balances(w, d.Balances, d.NetWorth, opts)
		fmt.Fprintf(w, "Net receivables: %s\n\n", opts.Format.Money(d.NetReceivables))
		report.Summary(w, d.Summary, opts)
		report.Skipped(w, d.Skipped)
	default:
		return fmt.Errorf("unknown view %q", p.View)
	}
	return nil
}
