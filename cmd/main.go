package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alex-hastava/FacePhantom-QA-Tool/config"
	telegram "github.com/alex-hastava/FacePhantom-QA-Tool/internal/api"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/container"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	outDir := flag.String("out", "", "output directory (overrides output.dir)")
	botMode := flag.Bool("bot", false, "run Telegram bot instead of batch mode")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.dcm|dir>...\n       %s -bot\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище сессий бота и очередей снимков
	repo := storage.NewMemorySessionRepository()

	appContainer, err := container.New(cfg, repo)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if *botMode {
		runBot(ctx, cfg, appContainer)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed, err := runBatch(ctx, cfg, appContainer, flag.Args())
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	if failed > 0 {
		stop()
		os.Exit(1)
	}
}

func runBot(ctx context.Context, cfg *config.Config, c *container.Container) {
	if cfg.Telegram.Token == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	bot, err := telegram.NewBot(cfg.Telegram.Token, c.QAService)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Println("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}

// runBatch обрабатывает файлы и пишет отчёты; возвращает число непрошедших снимков.
func runBatch(ctx context.Context, cfg *config.Config, c *container.Container, args []string) (int, error) {
	paths, err := collectFiles(args)
	if err != nil {
		return 0, err
	}

	acquisitions := make([]*entity.Acquisition, 0, len(paths))
	for _, p := range paths {
		acq, err := c.Loader.LoadFile(ctx, p)
		if err != nil {
			log.Printf("Skipping %s: %v", p, err)
			continue
		}
		acquisitions = append(acquisitions, acq)
	}
	if len(acquisitions) == 0 {
		return 0, fmt.Errorf("no readable acquisitions among %d files", len(paths))
	}

	rs, err := c.CoincidenceService.Run(ctx, acquisitions)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	outputs := []struct {
		name   string
		writer port.ResultWriter
	}{
		{cfg.Output.CSV, c.CSV},
		{cfg.Output.JSON, c.JSON},
		{cfg.Output.Chart, c.Chart},
	}
	for _, o := range outputs {
		if o.name == "" {
			continue
		}
		if err := writeFile(filepath.Join(cfg.Output.Dir, o.name), func(f *os.File) error {
			return o.writer.Write(f, rs)
		}); err != nil {
			return 0, err
		}
	}
	if cfg.Output.PDF != "" {
		if err := writeFile(filepath.Join(cfg.Output.Dir, cfg.Output.PDF), func(f *os.File) error {
			return c.PDF.Render(f, rs, acquisitions)
		}); err != nil {
			return 0, err
		}
	}

	log.Printf("Run %s: %d passed, %d failed (reports in %s)", rs.RunID, rs.Passed(), rs.Failed(), cfg.Output.Dir)
	return rs.Failed(), nil
}

// collectFiles раскрывает каталоги в список .dcm файлов, порядок сохраняется.
func collectFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".dcm") {
				continue
			}
			out = append(out, filepath.Join(arg, e.Name()))
		}
	}
	return out, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
