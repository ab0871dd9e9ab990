package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"resolvergen/internal/artifact"
	"resolvergen/internal/config"
	"resolvergen/internal/crawler"
	"resolvergen/internal/diag"
	"resolvergen/internal/extractor"
	"resolvergen/internal/ir"
	"resolvergen/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:   "resolvergen",
		Short: "Resolver schema extraction and artifact generation",
	}
	configPath string
	dbPath     string
	dumpIR     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "resolvergen.yaml", "Path to the project configuration")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "resolvergen.db", "Path to the local snapshot database (SQLite)")

	extractCmd.Flags().BoolVar(&dumpIR, "dump", false, "Dump the resolved schema IR to stdout")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(staleCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Scan resolver sources and resolve them into schema IR",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		if root == "" {
			root = "."
		}

		scalars, diagnostics := extractor.InvertCustomScalarMap(cfg.CustomScalars)
		if len(diagnostics) > 0 {
			reportDiagnostics(diagnostics)
			os.Exit(1)
		}

		ext := extractor.NewExtractor(scalars)
		cr := crawler.NewCrawler(root)

		fmt.Printf("🚀 Scanning resolvers at %s...\n", root)
		files := 0
		err = cr.ScanProject(root, func(path string, src []byte) error {
			files++
			diagnostics = append(diagnostics, ext.ParseDocument(path, string(src), nil)...)
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to scan project: %v", err)
		}

		declarations, fields, resolveDiags := ext.Resolve()
		diagnostics = append(diagnostics, resolveDiags...)
		if len(diagnostics) > 0 {
			reportDiagnostics(diagnostics)
			os.Exit(1)
		}

		fmt.Printf("✅ Extracted %d type declarations and %d fields from %d files\n", len(declarations), len(fields), files)
		if dumpIR {
			spew.Dump(declarations)
			spew.Dump(fields)
		}
	},
}

var artifactsCmd = &cobra.Command{
	Use:   "artifacts <programs.json>",
	Short: "Generate artifact descriptors from compiled programs and snapshot them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		project := cfg.ProjectConfig()

		input, err := loadPrograms(args[0])
		if err != nil {
			log.Fatalf("Failed to load programs: %v", err)
		}

		printer := &storedTextPrinter{
			texts:   input.OperationTexts,
			compact: project.FeatureFlags.CompactQueryText,
		}
		hashes := ir.SourceHashesFromEntries(input.SourceHashes)
		artifacts := artifact.Generate(project, printer, input.Programs, hashes)

		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		if err := store.SaveSnapshot(context.Background(), hashes, artifacts); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}

		for _, a := range artifacts {
			fmt.Printf("  %s (%s)\n", a.Path, a.Content.Kind())
		}
		fmt.Printf("🎉 Generated %d artifacts. Database: %s\n", len(artifacts), dbPath)
	},
}

var staleCmd = &cobra.Command{
	Use:   "stale <programs.json>",
	Short: "List snapshot artifacts invalidated by the current programs",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input, err := loadPrograms(args[0])
		if err != nil {
			log.Fatalf("Failed to load programs: %v", err)
		}

		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		stale, err := store.StalePaths(context.Background(), ir.SourceHashesFromEntries(input.SourceHashes))
		if err != nil {
			log.Fatalf("Failed to compute stale artifacts: %v", err)
		}
		if len(stale) == 0 {
			fmt.Println("✅ No stale artifacts.")
			return
		}
		for _, path := range stale {
			fmt.Println(path)
		}
	},
}

// programsInput is the serialized form of one upstream compilation: the
// parallel programs, per-document source hashes, and the printed text of
// every operation in the operation-text program.
type programsInput struct {
	Programs       *ir.Programs         `json:"programs"`
	SourceHashes   []ir.SourceHashEntry `json:"source_hashes"`
	OperationTexts map[string]string    `json:"operation_texts,omitempty"`
}

func loadPrograms(path string) (*programsInput, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var input programsInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if input.Programs == nil {
		return nil, fmt.Errorf("%s does not contain any programs", path)
	}
	return &input, nil
}

// storedTextPrinter serves operation text from the serialized input. With
// the compact flag the text collapses to single-space separators.
type storedTextPrinter struct {
	texts   map[string]string
	compact bool
}

func (p *storedTextPrinter) PrintOperation(operation *ir.OperationDefinition) string {
	text := p.texts[operation.Name]
	if p.compact {
		text = strings.Join(strings.Fields(text), " ")
	}
	return text
}

func reportDiagnostics(diagnostics []*diag.Diagnostic) {
	diag.Sort(diagnostics)
	for _, d := range diagnostics {
		fmt.Fprintf(os.Stderr, "error: %s\n", d.Error())
		for _, a := range d.Annotations {
			fmt.Fprintf(os.Stderr, "  note: %s (%s)\n", a.Message, a.Location)
		}
	}
	fmt.Fprintf(os.Stderr, "%d error(s)\n", len(diagnostics))
}
