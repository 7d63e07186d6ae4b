package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	inPath     string
	outPath    string
)

var rootCmd = &cobra.Command{
	Use:   "beam",
	Short: "Dialect-neutral schema introspection and migration tool",
	Long: `beam represents relational schemas as sets of atomic predicates that can be
detected from a live database, translated between SQL dialects, persisted as
JSON, and applied back as transactional migrations.`,
	SilenceUsage: true,
}

var detectCmd = &cobra.Command{
	Use:   "detect [config.toml]",
	Short: "Introspect the source database and emit its predicate document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDetect,
}

var convertCmd = &cobra.Command{
	Use:   "convert [config.toml]",
	Short: "Translate a predicate document from the source to the target dialect",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConvert,
}

var diffCmd = &cobra.Command{
	Use:   "diff [config.toml]",
	Short: "Plan migration steps that make the live target satisfy a predicate document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiff,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render migration steps as a SQL script",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

var applyCmd = &cobra.Command{
	Use:   "apply [config.toml]",
	Short: "Apply migration steps to the live target inside one transaction",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

func init() {
	for _, cmd := range []*cobra.Command{detectCmd, convertCmd, diffCmd, applyCmd} {
		cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	}
	for _, cmd := range []*cobra.Command{convertCmd, diffCmd, renderCmd, applyCmd} {
		cmd.Flags().StringVarP(&inPath, "in", "i", "", "input document (predicates or steps)")
		cmd.MarkFlagRequired("in")
	}
	for _, cmd := range []*cobra.Command{detectCmd, convertCmd, diffCmd, renderCmd} {
		cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	}
	rootCmd.AddCommand(detectCmd, convertCmd, diffCmd, renderCmd, applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig loads the config named by the positional arg or --config flag.
func resolveConfig(args []string) (*Config, error) {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, fmt.Errorf("config file required: beam <command> <config.toml> or --config <config.toml>")
	}
	return loadConfig(path)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	src := cfg.sourceBackend()

	dsn := cfg.Source.DSN
	if dsn == "" {
		return fmt.Errorf("source.dsn is required")
	}
	// Detection never writes; open SQLite files read-only.
	if src.ID() == "sqlite" {
		if dsn, err = sqliteReadOnlyURI(dsn); err != nil {
			return err
		}
	}

	log.Printf("connecting to %s...", src.Name())
	db, err := connect(ctx, src, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Printf("introspecting schema...")
	preds, err := src.Introspect(ctx, db, cfg.Source.Schema)
	if err != nil {
		return fmt.Errorf("introspect: %w", err)
	}
	log.Printf("detected %d predicates", len(preds))

	doc, err := encodePredicates(preds)
	if err != nil {
		return fmt.Errorf("encode predicates: %w", err)
	}
	return writeOutput(doc)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read predicates: %w", err)
	}
	preds, err := decodePredicates(data)
	if err != nil {
		return err
	}

	src, dst := cfg.sourceBackend(), cfg.targetBackend()
	log.Printf("converting %d predicates %s -> %s", len(preds), src.Name(), dst.Name())

	converted, dropped := convertPredicates(preds, src, dst)
	for _, p := range dropped {
		log.Printf("  WARN: no %s equivalent for %s", dst.Name(), p)
	}
	if len(dropped) > 0 && cfg.OnUnconvertible == "error" {
		return fmt.Errorf("%d predicates have no %s equivalent (on_unconvertible=error)",
			len(dropped), dst.Name())
	}

	doc, err := encodePredicates(converted)
	if err != nil {
		return fmt.Errorf("encode predicates: %w", err)
	}
	return writeOutput(doc)
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read predicates: %w", err)
	}
	desired, err := decodePredicates(data)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dst := cfg.targetBackend()
	if cfg.Target.DSN == "" {
		return fmt.Errorf("target.dsn is required")
	}

	log.Printf("connecting to %s...", dst.Name())
	db, err := connect(ctx, dst, cfg.Target.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Printf("introspecting current schema...")
	current, err := dst.Introspect(ctx, db, cfg.Target.Schema)
	if err != nil {
		return fmt.Errorf("introspect: %w", err)
	}

	steps, err := planMigration(desired, current, dst)
	if err != nil {
		return err
	}
	log.Printf("planned %d steps", len(steps))

	out, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(out)
}

func runRender(cmd *cobra.Command, args []string) error {
	steps, err := readSteps(inPath)
	if err != nil {
		return err
	}
	lines := renderScript(steps)
	return writeOutput([]byte(strings.Join(lines, "\n") + "\n"))
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	steps, err := readSteps(inPath)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		log.Printf("nothing to apply")
		return nil
	}

	ctx := context.Background()
	dst := cfg.targetBackend()
	if cfg.Target.DSN == "" {
		return fmt.Errorf("target.dsn is required")
	}

	log.Printf("connecting to %s...", dst.Name())
	db, err := connect(ctx, dst, cfg.Target.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	start := time.Now()
	log.Printf("applying %d steps in one transaction...", len(steps))
	if err := applyMigration(ctx, db, steps); err != nil {
		return err
	}
	log.Printf("migration applied in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func readSteps(path string) ([]MigrationStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	var steps []MigrationStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parse steps: %w", err)
	}
	return steps, nil
}

func writeOutput(data []byte) error {
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
