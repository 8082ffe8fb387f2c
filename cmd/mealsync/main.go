package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"mealsync/internal/api"
	"mealsync/internal/auth"
	"mealsync/internal/cache"
	"mealsync/internal/config"
	"mealsync/internal/database"
	"mealsync/internal/mealplan"
	"mealsync/internal/notify"
	"mealsync/internal/plangen"
	"mealsync/internal/resources"
	"mealsync/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider, err := auth.NewTokenProvider(cfg.AuthToken)
	if err != nil {
		log.Fatalf("Failed to parse auth token: %v", err)
	}

	storage, closeStorage, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache storage: %v", err)
	}
	defer closeStorage()

	planStore := store.New(api.NewClient(cfg.APIBaseURL, provider), cache.NewPlanCache(storage), provider)
	notifier := newNotifier(cfg)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		if err := planStore.HandleAuthChange(ctx); err != nil {
			log.Fatalf("Failed to load meal plans: %v", err)
		}
		printPlans(planStore.Plans())
	case "save":
		saveCmd := flag.NewFlagSet("save", flag.ExitOnError)
		file := saveCmd.String("file", "", "JSON file with the week's entries")
		start := saveCmd.String("start", "", "week start date (YYYY-MM-DD, default today)")
		sickness := saveCmd.String("sickness", "", "sickness type to record on the plan")
		saveCmd.Parse(os.Args[2:])

		entries, err := readEntries(*file)
		if err != nil {
			log.Fatalf("Failed to read entries: %v", err)
		}
		plan, err := planStore.Save(ctx, entries, parseStart(*start), store.SaveOptions{
			HasSickness:  *sickness != "",
			SicknessType: *sickness,
		})
		if err != nil {
			log.Fatalf("Failed to save meal plan: %v", err)
		}
		fmt.Printf("Saved plan %s (%s)\n", plan.Name, plan.ID)
		if err := notifier.PlanSaved(plan); err != nil {
			log.Printf("Warning: failed to send notification: %v", err)
		}
	case "generate":
		genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		request := genCmd.String("request", "", "free-text description of the desired week")
		start := genCmd.String("start", "", "week start date (YYYY-MM-DD, default today)")
		genCmd.Parse(os.Args[2:])

		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable not set")
		}
		generator, err := plangen.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize generator: %v", err)
		}
		defer generator.Close()

		entries, err := generator.GenerateWeek(ctx, *request)
		if err != nil {
			log.Fatalf("Failed to generate plan: %v", err)
		}
		plan, err := planStore.Save(ctx, entries, parseStart(*start), store.SaveOptions{})
		if err != nil {
			log.Fatalf("Failed to save meal plan: %v", err)
		}
		fmt.Printf("Generated and saved plan %s (%s)\n", plan.Name, plan.ID)
		if err := notifier.PlanSaved(plan); err != nil {
			log.Printf("Warning: failed to send notification: %v", err)
		}
	case "update":
		updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
		id := updateCmd.String("id", "", "plan id")
		file := updateCmd.String("file", "", "JSON file with the replacement entries")
		updateCmd.Parse(os.Args[2:])

		entries, err := readEntries(*file)
		if err != nil {
			log.Fatalf("Failed to read entries: %v", err)
		}
		if err := planStore.Update(ctx, *id, entries); err != nil {
			log.Fatalf("Failed to update meal plan: %v", err)
		}
		fmt.Printf("Updated plan %s\n", *id)
	case "duplicate":
		dupCmd := flag.NewFlagSet("duplicate", flag.ExitOnError)
		id := dupCmd.String("id", "", "source plan id")
		start := dupCmd.String("start", "", "new week start date (YYYY-MM-DD)")
		dupCmd.Parse(os.Args[2:])

		// The source is read from the in-memory collection, so load first.
		if err := planStore.HandleAuthChange(ctx); err != nil {
			log.Fatalf("Failed to load meal plans: %v", err)
		}
		plan, err := planStore.Duplicate(ctx, *id, parseStart(*start))
		if err != nil {
			log.Fatalf("Failed to duplicate meal plan: %v", err)
		}
		fmt.Printf("Duplicated into %s (%s)\n", plan.Name, plan.ID)
	case "delete":
		deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
		id := deleteCmd.String("id", "", "plan id")
		deleteCmd.Parse(os.Args[2:])

		if err := planStore.Delete(ctx, *id); err != nil {
			log.Fatalf("Failed to delete meal plan: %v", err)
		}
		fmt.Printf("Deleted plan %s\n", *id)
	case "clear":
		if err := planStore.ClearAll(ctx); err != nil {
			log.Fatalf("Failed to clear meal plans: %v", err)
		}
		fmt.Println("All meal plans cleared.")
		if err := notifier.PlansCleared(); err != nil {
			log.Printf("Warning: failed to send notification: %v", err)
		}
	case "tutorial":
		tutorialCmd := flag.NewFlagSet("tutorial", flag.ExitOnError)
		url := tutorialCmd.String("url", "", "tutorial page URL")
		tutorialCmd.Parse(os.Args[2:])

		tutorial, err := resources.NewFetcher().Fetch(*url)
		if err != nil {
			log.Fatalf("Failed to fetch tutorial: %v", err)
		}
		fmt.Printf("%s\n", tutorial.Title)
		for _, heading := range tutorial.Headings {
			fmt.Printf("  - %s\n", heading)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newStorage(cfg *config.Config) (cache.Storage, func(), error) {
	if cfg.CacheDB != "" {
		db, err := database.NewDB(cfg.CacheDB)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewSQLiteStorage(db.SQL), func() { db.Close() }, nil
	}
	storage, err := cache.NewFileStorage(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	return storage, func() {}, nil
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return notify.Noop{}
	}
	notifier, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("Warning: telegram notifier disabled: %v", err)
		return notify.Noop{}
	}
	return notifier
}

func readEntries(path string) ([]mealplan.Entry, error) {
	if path == "" {
		return nil, fmt.Errorf("missing -file argument")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []mealplan.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse entries: %w", err)
	}
	return entries, nil
}

func parseStart(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	start, err := time.Parse("2006-01-02", value)
	if err != nil {
		log.Fatalf("Invalid start date %q: %v", value, err)
	}
	return start
}

func printPlans(plans []mealplan.SavedPlan) {
	if len(plans) == 0 {
		fmt.Println("No saved meal plans.")
		return
	}
	for _, plan := range plans {
		fmt.Printf("%s  %s (%s to %s, %d days)\n", plan.ID, plan.Name, plan.StartDate, plan.EndDate, len(plan.MealPlan))
	}
}

func printUsage() {
	fmt.Println("Usage: mealsync <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  list        Show saved meal plans")
	fmt.Println("  save        Save a weekly plan from a JSON entries file")
	fmt.Println("  generate    Generate a weekly plan with Gemini and save it")
	fmt.Println("  update      Replace the entries of an existing plan")
	fmt.Println("  duplicate   Copy an existing plan into a new week")
	fmt.Println("  delete      Delete a plan by id")
	fmt.Println("  clear       Delete all saved plans")
	fmt.Println("  tutorial    Fetch and summarize a cooking-tutorial page")
}
