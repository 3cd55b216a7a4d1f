package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"avito-scraper/config"
	"avito-scraper/db"
	"avito-scraper/extractor"
	"avito-scraper/fetcher"
	"avito-scraper/models"
	"avito-scraper/notify"
	"avito-scraper/parser"
	"avito-scraper/scheduler"
	"avito-scraper/sheets"
)

// demoHTML shows the three shapes of class attribute the extractor meets
const demoHTML = `
<html>
	<div class="styles-item-abc123 item-card">
		<a href="/item/123">Item 1</a>
	</div>
	<div class="another-class">
		<a href="/item/456">Item 2</a>
	</div>
	<div>
		<a href="/item/789">Item 3</a>
	</div>
</html>`

func main() {
	url := flag.String("url", "", "Avito search results URL")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	driver := flag.String("driver", "", "Page driver: rod, chromedp or static (overrides config)")
	strategy := flag.String("strategy", "", "Extraction strategy: markup or query (overrides config)")
	passes := flag.Int("passes", -1, "Maximum number of extraction passes, 0 for no limit (overrides config)")
	demo := flag.Bool("demo", false, "Print how class attributes are matched for a sample page and exit")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL to append new items to (overrides config)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	cfg := loadConfig(*configPath)

	if *demo {
		runDemo(cfg)
		return
	}

	if *url == "" {
		fmt.Fprintln(os.Stderr, "Error: -url is required (or use -demo)")
		flag.Usage()
		os.Exit(2)
	}

	if *driver != "" {
		cfg.Extraction.Driver = *driver
	}
	if *strategy != "" {
		cfg.Extraction.Strategy = *strategy
	}
	if *passes >= 0 {
		cfg.Extraction.MaxPasses = *passes
	}
	if *spreadsheetURL != "" {
		cfg.Sheets.SpreadsheetURL = *spreadsheetURL
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, err := run(ctx, cfg, *url, *credentialsPath)
	if err != nil {
		log.Printf("Extraction stopped with error: %v\n", err)
	}

	fmt.Printf("Found %d unique listing URLs\n", len(items))
	fmt.Println("---")
	for i, item := range items {
		fmt.Printf("%d. %s (pass %d)\n", i+1, item.URL, item.Pass)
	}

	if err != nil {
		os.Exit(1)
	}
}

// run opens the search page and extracts until the scheduler stops
func run(ctx context.Context, cfg *config.Config, searchURL, credentialsPath string) ([]models.Item, error) {
	strategy, err := extractor.StrategyByName(cfg.Extraction.Strategy)
	if err != nil {
		return nil, err
	}

	page, err := fetcher.Open(cfg.Extraction.Driver, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Printf("Warning: Failed to close page: %v\n", err)
		}
	}()

	ex := extractor.New(page, strategy, extractorOptions(cfg))

	sinks, closeSinks := buildSinks(ctx, cfg, credentialsPath)
	defer closeSinks()

	sched := scheduler.NewScheduler(ex, scheduler.Options{
		SearchURL:    searchURL,
		PassInterval: cfg.PassInterval(),
		MaxPasses:    cfg.Extraction.MaxPasses,
		IdlePasses:   cfg.Extraction.IdlePasses,
	}, sinks...)

	return sched.Run(ctx)
}

func extractorOptions(cfg *config.Config) extractor.Options {
	return extractor.Options{
		Origin:         cfg.Site.Origin,
		ItemMarker:     cfg.Site.ItemMarker,
		ClassSubstring: cfg.Site.ClassSubstring,
		FirstScroll:    float64(cfg.Extraction.FirstScroll),
		SecondScroll:   float64(cfg.Extraction.SecondScroll),
		WaitTimeout:    cfg.WaitTimeout(),
		SettleDelay:    cfg.SettleDelay(),
	}
}

// buildSinks wires every sink that is configured. A sink that fails to
// initialize is skipped with a warning so extraction still runs.
func buildSinks(ctx context.Context, cfg *config.Config, credentialsPath string) ([]scheduler.Sink, func()) {
	var sinks []scheduler.Sink
	var closers []func() error

	if cfg.Database.Enabled {
		database, err := db.NewDB("")
		if err != nil {
			log.Printf("Warning: Failed to initialize database: %v\n", err)
		} else {
			sinks = append(sinks, database)
			closers = append(closers, database.Close)
		}
	}

	if cfg.Sheets.SpreadsheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL)
		if spreadsheetID == "" {
			log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", cfg.Sheets.SpreadsheetURL)
		} else if writer, err := sheets.NewWriter(ctx, spreadsheetID, cfg.Sheets.SheetName, credentialsPath); err != nil {
			log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		} else {
			sinks = append(sinks, writer)
		}
	}

	if token := os.Getenv("AVITO_TG_TOKEN"); token != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := notify.NewTelegramNotifier(token, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("Warning: Failed to initialize Telegram notifier: %v\n", err)
		} else {
			sinks = append(sinks, notifier)
		}
	}

	log.Printf("%d sinks configured\n", len(sinks))

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Printf("Warning: Failed to close sink: %v\n", err)
			}
		}
	}
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
		return config.GetDefaultConfig()
	}
	return cfg
}

// runDemo prints how each div of the sample page is classified
func runDemo(cfg *config.Config) {
	substr := cfg.Site.ClassSubstring
	reports, err := parser.DescribeClasses(demoHTML, substr)
	if err != nil {
		log.Fatalf("Demo failed: %v\n", err)
	}

	fmt.Printf("Matching class attributes against %q\n", substr)
	fmt.Println("==================")
	for _, r := range reports {
		fmt.Println(r)
	}

	hrefs, err := parser.ItemHrefs(demoHTML, substr)
	if err != nil {
		log.Fatalf("Demo failed: %v\n", err)
	}
	fmt.Println("Extracted item URLs:")
	for _, href := range hrefs {
		fmt.Println("  " + parser.NormalizeURL(cfg.Site.Origin, href))
	}
}
