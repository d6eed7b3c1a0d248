package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"fusepair/internal/modkit"
	"fusepair/internal/modkit/repokit"
	"fusepair/internal/platform/config"
	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/store"
	"fusepair/internal/platform/timeutil"

	attmod "fusepair/internal/services/attendance/module"
	dirmod "fusepair/internal/services/directory/module"
	histmod "fusepair/internal/services/history/module"
	pairdom "fusepair/internal/services/pairing/domain"
	pairmod "fusepair/internal/services/pairing/module"

	"github.com/joho/godotenv"
)

// surfaceFlags mirrors command line flags into the CORE_FUSE_ env the
// modules read. Flags the caller never passed leave the env untouched so
// .env settings survive; testPassed must come from flag.Visit because a
// bool flag's value alone cannot distinguish "-test=false" from unset
func surfaceFlags(host, out string, test, testPassed bool) {
	if host != "" {
		_ = os.Setenv("CORE_FUSE_HOST", host)
	}
	if out != "" {
		_ = os.Setenv("CORE_FUSE_OUT_DIR", out)
	}
	if testPassed || test {
		_ = os.Setenv("CORE_FUSE_TEST_MODE", strconv.FormatBool(test))
	}
}

func main() {
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		AppName: "fusepair-match",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	var (
		fDate    = flag.String("date", "", "session date YYYY-MM-DD (default: stored session date)")
		fRoster  = flag.String("roster", "", "RSVP roster CSV to intake before pairing")
		fSetDate = flag.Bool("set-date", false, "record -date as the current session date and exit")
		fTest    = flag.Bool("test", false, "test mode: no history writes, no csv")
		fHost    = flag.String("host", "", "host alias injected on odd attendance")
		fOut     = flag.String("out", "", "output directory for match csv files")
	)
	flag.Parse()

	testPassed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "test" {
			testPassed = true
		}
	})
	surfaceFlags(*fHost, *fOut, *fTest, testPassed)

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	dm := dirmod.New(deps)
	hm := histmod.New(deps)
	am := attmod.New(deps)
	pm := pairmod.New(deps, modkit.WithPorts(pairmod.PortsIn{
		Directory:  dm.Ports().(dirmod.Ports).Store,
		History:    hm.Ports().(histmod.Ports).Store,
		Attendance: am.Ports().(attmod.Ports).Intake,
	}))

	ctx := context.Background()
	intake := am.Ports().(attmod.Ports).Intake

	date := *fDate
	if date != "" {
		t, err := timeutil.ParseSessionDate(date)
		if err != nil {
			l.Panic().Err(err).Msg("bad -date")
		}
		date = timeutil.FormatSessionDate(t)
	}

	if *fSetDate {
		if date == "" {
			l.Panic().Msg("-set-date requires -date")
		}
		if err := intake.SetSessionDate(ctx, date); err != nil {
			l.Fatal().Err(err).Msg("set session date failed")
		}
		l.Info().Str("date", date).Msg("session date recorded")
		return
	}

	if date == "" {
		date, err = intake.SessionDate(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("no -date given and no stored session date")
		}
	}

	if *fRoster != "" {
		f, err := os.Open(*fRoster)
		if err != nil {
			l.Fatal().Err(err).Str("roster", *fRoster).Msg("open roster failed")
		}
		sum, err := intake.Intake(ctx, date, f)
		_ = f.Close()
		if err != nil {
			l.Fatal().Err(err).Msg("roster intake failed")
		}
		l.Info().
			Int("accepted", sum.Accepted).
			Int("declined", sum.Declined).
			Int("tentative", sum.Tentative).
			Int("no_response", sum.NoResponse).
			Msg("roster processed")
	}

	engine := pm.Ports().(pairmod.Ports).Engine
	outcome, err := engine.Run(ctx, date)
	if err != nil {
		switch perr.CodeOf(err) {
		case perr.ErrorCodeInfeasible:
			o := outcome.(pairdom.Infeasible)
			l.Fatal().Int("resets", o.Resets).Int("status", perr.HTTPStatus(err)).
				Msg("pairing infeasible")
		case perr.ErrorCodeInfeasiblePersist:
			l.Error().Err(err).
				Msg("pairs selected but history writes failed; csv emitted for manual reconciliation")
		default:
			l.Fatal().Err(err).Int("status", perr.HTTPStatus(err)).Msg("pairing run failed")
		}
	}

	if o, ok := outcome.(pairdom.Success); ok {
		fmt.Println(o.CSVPath)
	}
}
