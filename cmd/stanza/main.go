package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"stanza/internal/config"
	"stanza/internal/crawler"
	"stanza/internal/journal"
	"stanza/internal/parser"
	"stanza/internal/plan"
	"stanza/internal/section"
	"stanza/internal/session"
	"stanza/internal/tui"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "stanza [paths...]",
		Short: "Terminal section editor for structured documents",
		Args:  cobra.ArbitraryArgs,
		Run:   runEditor,
	}
	configPath string
	planPath   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.Flags().StringVarP(&planPath, "plan", "p", "", "Edit plan to load on start and write on exit")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadProject resolves paths to documents and parses all of them into one
// section list, per-file blocks in path order.
func loadProject(args []string) (*config.Config, []string, []section.Section, parser.Format, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cr := crawler.NewCrawler(cfg.Files.Extensions)
	files, err := cr.FindDocuments(paths)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("no documents found under %v", paths)
	}

	format, err := parser.New(cfg.Files.Format)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var sections []section.Section
	for _, f := range files {
		parsed, err := format.ExtractSections(f)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
		sections = append(sections, parsed...)
	}
	section.Reindex(sections)

	return cfg, files, sections, format, nil
}

func runEditor(cmd *cobra.Command, args []string) {
	cfg, files, sections, format, err := loadProject(args)
	if err != nil {
		log.Fatalf("Failed to load project: %v", err)
	}

	sess := session.New(files, sections, format, cfg.Editor.WrapWidth)

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Printf("Warning: journal disabled: %v", err)
		} else {
			defer j.Close()
			sess.AttachJournal(j)
		}
	}

	if planPath != "" {
		if p, err := plan.Load(planPath); err == nil {
			sess.LoadPlan(p)
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load plan %s: %v", planPath, err)
		}
	}

	app, err := tui.New(sess)
	if err != nil {
		log.Fatalf("Failed to start terminal: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Fatalf("Editor error: %v", err)
	}

	// Unsaved buffered edits survive the session as a plan.
	p := sess.GeneratePlan()
	if len(p.Edits) == 0 {
		return
	}
	data, err := p.Marshal()
	if err != nil {
		log.Fatalf("Failed to serialize plan: %v", err)
	}
	if planPath != "" {
		if err := os.WriteFile(planPath, data, 0644); err != nil {
			log.Fatalf("Failed to write plan: %v", err)
		}
		fmt.Printf("Wrote %d pending edits to %s\n", len(p.Edits), planPath)
	} else {
		fmt.Println(string(data))
	}
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan.json>",
	Short: "Apply a saved edit plan without opening the editor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := plan.Load(args[0])
		if err != nil {
			log.Fatalf("Failed to load plan: %v", err)
		}
		if err := p.Apply(); err != nil {
			log.Fatalf("Apply failed: %v", err)
		}
		fmt.Printf("Applied %d edits.\n", len(p.Edits))
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections [paths...]",
	Short: "Print the parsed section tree as JSON",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _, sections, _, err := loadProject(args)
		if err != nil {
			log.Fatalf("Failed to load project: %v", err)
		}
		data, err := json.MarshalIndent(sections, "", "  ")
		if err != nil {
			log.Fatalf("Failed to serialize sections: %v", err)
		}
		fmt.Println(string(data))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List edits recorded in the journal",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.Journal.Path == "" {
			log.Fatalf("Journaling is disabled in the configuration")
		}

		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer j.Close()

		entries, err := j.Entries(context.Background())
		if err != nil {
			log.Fatalf("Failed to read journal: %v", err)
		}
		for _, e := range entries {
			fmt.Printf("%s  %-8s %-30s %s [%d,%d) %+d\n",
				e.AppliedAt.Format("2006-01-02 15:04:05"), e.Operation, e.ItemName,
				e.FilePath, e.LineStart, e.LineEnd, e.LineDelta)
		}
	},
}
