// Package main runs battles from the command line: one battle printed round by
// round, or many simulated battles summarized as win rates.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/setup"
	"github.com/cory-johannsen/battlesim/internal/observability"
	"github.com/cory-johannsen/battlesim/internal/render"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	settingsPath := flag.String("settings", "", "battle settings file (.json/.yaml); defaults when empty")
	restorePath := flag.String("restore", "", "continue a battle from a snapshot file")
	maxRounds := flag.Int("max-rounds", -1, "stop after this many rounds; 0 = no cap, -1 = battle.max_rounds")
	sims := flag.Int("sims", 0, "run this many battles concurrently and print a tally")
	seed := flag.Uint64("seed", 0, "dice seed; 0 = battle.seed, or crypto/rand when that is 0 too")
	save := flag.Bool("save", false, "save the settings under battle.settings_dir")
	snapshot := flag.Bool("snapshot", false, "save the final battle state under battle.settings_dir")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	verbose := flag.Bool("v", false, "log rounds and dice to stderr")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if !*verbose {
		cfg.Logging.Level = "warn"
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if *maxRounds < 0 {
		*maxRounds = cfg.Battle.MaxRounds
	}
	if *seed == 0 {
		*seed = cfg.Battle.Seed
	}

	settings := setup.DefaultSettings()
	if *settingsPath != "" {
		if settings, err = setup.Load(*settingsPath); err != nil {
			logger.Fatal("loading settings", zap.String("path", *settingsPath), zap.Error(err))
		}
	}

	store := setup.NewFileStore(cfg.Battle.SettingsDir)
	if *save {
		path, err := store.Save(settings)
		if err != nil {
			logger.Fatal("saving settings", zap.Error(err))
		}
		fmt.Printf("settings saved to %s\n", path)
	}

	printer := render.NewPrinter(os.Stdout, !*noColor)

	if *sims > 0 {
		start := time.Now()
		res, err := runSims(context.Background(), settings, *sims, *maxRounds, *seed)
		if err != nil {
			logger.Fatal("simulation failed", zap.Error(err))
		}
		if err := printer.Tally(settings.SideNames[:settings.NumSides], res.Wins, res.Draws, res.Unfinished, *sims); err != nil {
			logger.Fatal("writing tally", zap.Error(err))
		}
		logger.Info("simulations finished", zap.Int("battles", *sims), zap.Duration("elapsed", time.Since(start)))
		return
	}

	engine := combat.NewEngine(func() dice.Source {
		if *seed != 0 {
			return dice.NewSeededSource(*seed)
		}
		return dice.NewCryptoSource()
	}, logger)

	var b *combat.Battle
	if *restorePath != "" {
		snap, err := setup.LoadSnapshot(*restorePath)
		if err != nil {
			logger.Fatal("loading snapshot", zap.String("path", *restorePath), zap.Error(err))
		}
		b, err = engine.Restore(snap.State)
		if err != nil {
			logger.Fatal("restoring battle", zap.Error(err))
		}
	} else {
		sides, _, err := settings.Build()
		if err != nil {
			logger.Fatal("building battle", zap.Error(err))
		}
		if b, err = engine.Start(sides); err != nil {
			logger.Fatal("starting battle", zap.Error(err))
		}
	}

	if err := printer.Status(b.View()); err != nil {
		logger.Fatal("writing status", zap.Error(err))
	}
	if err := play(b, printer, *maxRounds); err != nil {
		logger.Fatal("battle failed", zap.Error(err))
	}
	if err := printer.Status(b.View()); err != nil {
		logger.Fatal("writing status", zap.Error(err))
	}

	if *snapshot {
		path, err := store.SaveSnapshot(setup.SnapshotOf(b, time.Now()))
		if err != nil {
			logger.Fatal("saving snapshot", zap.Error(err))
		}
		fmt.Printf("snapshot saved to %s\n", path)
	}
}

// play runs rounds until the battle is decided or maxRounds rounds have been
// played in this session. A battle that is already decided is not an error.
func play(b *combat.Battle, printer *render.Printer, maxRounds int) error {
	for played := 0; maxRounds == 0 || played < maxRounds; played++ {
		report, n, err := b.RunRound()
		if errors.Is(err, combat.ErrBattleOver) || errors.Is(err, combat.ErrNoCombatants) {
			fmt.Println(err)
			return nil
		}
		if err != nil {
			return err
		}
		if err := printer.Round(n, report); err != nil {
			return err
		}
		if report.Outcome.Status != combat.Ongoing {
			return nil
		}
	}
	fmt.Printf("stopped after %d rounds\n", maxRounds)
	return nil
}
