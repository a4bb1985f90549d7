package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleetsim/fleetsim/internal/combat"
	"github.com/fleetsim/fleetsim/internal/config"
	"github.com/fleetsim/fleetsim/internal/core/event"
	"github.com/fleetsim/fleetsim/internal/data"
	"github.com/fleetsim/fleetsim/internal/mission"
	"github.com/fleetsim/fleetsim/internal/persist"
	"github.com/fleetsim/fleetsim/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	rep := newReport(os.Stdout)
	rep.banner()

	// 3. Load unit catalog
	rep.section("Catalog")
	catalog, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	ammo, weapons, planes, ships := catalog.Count()
	rep.stat("Ammo types", ammo)
	rep.stat("Weapons", weapons)
	rep.stat("Planes", planes)
	rep.stat("Ships", ships)
	rep.blank()

	// 4. Run the scenario script against a fresh mission
	rep.section("Scenario")
	m := mission.New(log)
	engine := scripting.NewEngine(m, catalog, log)
	defer engine.Close()
	if err := engine.Run(cfg.Data.Scenario); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	rep.ok(fmt.Sprintf("%s loaded", cfg.Data.Scenario))
	rep.stat("Defenders", m.Defenders().Len())
	rep.stat("Attackers", m.Attackers().Len())
	rep.money("Spend", m.Spend())
	rep.money("Budget", m.MaxSpend())
	rep.money("Enemy fleet", m.EnemyFleetCost())
	rep.blank()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Optional ledger
	var ledger *persist.LedgerRepo
	if cfg.Database.Enabled {
		rep.section("Database")
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		rep.ok("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		rep.ok("Migrations applied")
		rep.blank()
		ledger = persist.NewLedgerRepo(db)
	}

	// 6. Battle
	rep.section("Battle")
	battle := combat.New(combat.Config{
		MaxRounds:   cfg.Battle.MaxRounds,
		StallRounds: cfg.Battle.StallRounds,
		AutoReload:  cfg.Battle.AutoReload,
	}, m.AttackerShips(), m.DefenderShips(), log)

	event.Subscribe(battle.Bus(), func(e event.ShipSunk) {
		rep.loss(e.Round, string(e.Side), e.Ship)
	})
	event.Subscribe(battle.Bus(), func(e event.PlaneDowned) {
		rep.loss(e.Round, string(e.Side), e.Carrier+"/"+e.Plane)
	})

	battleCtx := ctx
	if cfg.Battle.Timeout > 0 {
		var cancel context.CancelFunc
		battleCtx, cancel = context.WithTimeout(ctx, cfg.Battle.Timeout)
		defer cancel()
	}
	res, err := battle.Run(battleCtx)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("battle: %w", err)
		}
		log.Warn("battle timed out, recording partial result", zap.Int("round", res.Rounds))
	}

	m.RecordBattle(mission.Outcome{
		DamageByAttackers: res.DamageByAttackers,
		DamageByDefenders: res.DamageByDefenders,
	})
	won := m.Won()
	engine.OnBattle(scripting.BattleSummary{
		ID:                res.ID.String(),
		Winner:            string(res.Winner),
		Rounds:            res.Rounds,
		DamageByAttackers: res.DamageByAttackers,
		DamageByDefenders: res.DamageByDefenders,
		Won:               won,
	})
	rep.result(res, m, won)

	// 7. Flush ledger
	if ledger != nil {
		if err := flushLedger(ctx, ledger, m, res); err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
		rep.ok("Ledger written")
	}
	return nil
}

// flushLedger stores the mission snapshot, its pending journal and the battle.
func flushLedger(ctx context.Context, ledger *persist.LedgerRepo, m *mission.Mission, res combat.Result) error {
	if err := ledger.SaveMission(ctx, persist.MissionRowOf(m)); err != nil {
		return err
	}
	if err := ledger.WriteJournal(ctx, m.ID(), m.DrainJournal()); err != nil {
		return err
	}
	return ledger.SaveBattle(ctx, m.ID(), res)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
