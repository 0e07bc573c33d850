// ocrtable rebuilds district tables from OCR output of bulletin images.
//
// Fragments come from a saved or live Google Document AI response, an hOCR
// file or a local Tesseract run. Rows are clustered, checked against the
// jurisdiction's district list, split into columns using the ruling lines of
// the page image when there are any, and written as comma separated lines.
//
// Configuration:
//
// Settings are read from the YAML file named by --config or OCRTABLE_CONFIG.
// A .env file in the working directory is loaded first, so REDIS_URL and
// OCRTABLE_CONFIG can be set there.
//
// Usage:
//
//	ocrtable reconstruct -j "West Bengal" -i wb.json [-o lines.csv] [--records records.csv] [--overlay debug.pdf]
//	ocrtable fetch -i bulletin.pdf -o response.json [--images pages/]
//	ocrtable enqueue -j Karnataka -i ka.pdf -o /data/ka.csv
//	ocrtable enqueue --jobs jobs.jsonl
//	ocrtable worker --concurrency 4
//	ocrtable status <job id>
//	ocrtable jurisdictions
//
// Example:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/credentials.json
//	ocrtable fetch --config ocrtable.yml -i wb.pdf -o wb.json
//	ocrtable reconstruct --config ocrtable.yml -j "West Bengal" -i wb.json --start Alipurduar --end Total
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/gardar/ocrtable/internal/logging"
	"github.com/gardar/ocrtable/internal/queue"
	"github.com/gardar/ocrtable/pkg/catalog"
	"github.com/gardar/ocrtable/pkg/config"
	"github.com/gardar/ocrtable/pkg/gdocai"
	"github.com/gardar/ocrtable/pkg/jurisdiction"
	"github.com/gardar/ocrtable/pkg/tabulate"
)

func main() {
	// A missing .env is fine; the environment is used as is
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "ocrtable",
		Usage: "Rebuild district tables from OCR output",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Sources: cli.EnvVars("OCRTABLE_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides the config file)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "reconstruct",
				Usage:  "Rebuild the table of one page",
				Flags:  jobFlags(),
				Action: reconstruct,
			},
			{
				Name:  "fetch",
				Usage: "Send a document to Document AI and save the response for later runs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "PDF or image to process", Required: true},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Path to save the response JSON", Required: true},
					&cli.StringFlag{Name: "images", Usage: "Directory to save the page images returned by Document AI"},
				},
				Action: fetch,
			},
			{
				Name:  "enqueue",
				Usage: "Queue jobs for the worker",
				Flags: append(jobFlags(),
					&cli.StringFlag{Name: "jobs", Usage: "File with one JSON job per line, instead of the job flags"},
					redisFlag(),
					&cli.StringFlag{Name: "queue", Usage: "Queue name", Value: queue.DefaultQueue},
				),
				Action: enqueue,
			},
			{
				Name:  "worker",
				Usage: "Process queued jobs until interrupted",
				Flags: []cli.Flag{
					redisFlag(),
					&cli.StringFlag{Name: "queue", Usage: "Queue name", Value: queue.DefaultQueue},
					&cli.IntFlag{Name: "concurrency", Usage: "Jobs processed at once", Value: 2},
					&cli.BoolFlag{Name: "no-status", Usage: "Do not record job status in Redis"},
				},
				Action: worker,
			},
			{
				Name:      "status",
				Usage:     "Show the status of a queued job, or counts per state without an ID",
				ArgsUsage: "[job id]",
				Flags: []cli.Flag{
					redisFlag(),
					&cli.StringFlag{Name: "queue", Usage: "Queue name", Value: queue.DefaultQueue},
				},
				Action: status,
			},
			{
				Name:   "jurisdictions",
				Usage:  "List jurisdictions in the reference tables",
				Action: jurisdictions,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func jobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "jurisdiction", Aliases: []string{"j"}, Usage: "Jurisdiction display name, e.g. \"West Bengal\""},
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "hOCR, Document AI JSON, PDF or image file"},
		&cli.StringFlag{Name: "source", Usage: "documentai, documentai-json, hocr or tesseract (guessed from the input extension)"},
		&cli.IntFlag{Name: "page", Usage: "1-based page of the input", Value: 1},
		&cli.StringFlag{Name: "image", Usage: "Page image for ruling line detection when the input has none"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Path to save the lines (default: stdout)"},
		&cli.StringFlag{Name: "records", Usage: "Path to save parsed district records as CSV"},
		&cli.StringFlag{Name: "overlay", Usage: "Path to save a debug PDF of rows and columns"},
		&cli.StringFlag{Name: "save-response", Usage: "Path to save the Document AI response of a live run"},
		&cli.StringFlag{Name: "start", Usage: "Text of the first table line to keep (\"auto\" for none)"},
		&cli.StringFlag{Name: "end", Usage: "Text of the line ending the table (\"auto\" for none)"},
	}
}

func redisFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "redis",
		Usage:   "Redis URL (overrides the config file)",
		Sources: cli.EnvVars("REDIS_URL"),
	}
}

// setup loads the configuration and creates the root logger
func setup(cmd *cli.Command) (*config.Config, *logging.Logger, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, nil, err
		}
	}

	level := cfg.LogLevel
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger("ocrtable")
	logger.SetLevel(parsed)
	return cfg, logger, nil
}

// jobFromFlags builds a job from the job flags
func jobFromFlags(cmd *cli.Command) (tabulate.Job, error) {
	job := tabulate.Job{
		Jurisdiction: cmd.String("jurisdiction"),
		Input:        cmd.String("input"),
		Page:         cmd.Int("page"),
		Image:        cmd.String("image"),
		Output:       cmd.String("output"),
		Records:      cmd.String("records"),
		Overlay:      cmd.String("overlay"),
		SaveResponse: cmd.String("save-response"),
		StartAt:      cmd.String("start"),
		EndAt:        cmd.String("end"),
	}

	if s := cmd.String("source"); s != "" {
		kind, err := tabulate.ParseSourceKind(s)
		if err != nil {
			return job, err
		}
		job.Source = kind
	} else if job.Input != "" {
		job.Source = tabulate.SourceForPath(job.Input)
	}

	return job, job.Validate()
}

func reconstruct(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd.Root())
	if err != nil {
		return err
	}
	job, err := jobFromFlags(cmd)
	if err != nil {
		return err
	}

	runner := tabulate.NewRunner(cfg, logger.With("tabulate"))
	defer runner.Close()

	out, err := runner.Run(ctx, job)
	if err != nil {
		return err
	}
	if job.Output == "" {
		return tabulate.WriteLines(os.Stdout, out.Lines)
	}
	fmt.Fprintf(os.Stderr, "%d lines written to %s\n", len(out.Lines), job.Output)
	return nil
}

func fetch(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd.Root())
	if err != nil {
		return err
	}

	input := cmd.String("input")
	content, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	logger.Info("processing document", "input", input, "processor", cfg.DocumentAI.ProcessorID)
	doc, err := gdocai.ProcessDocument(ctx, content, gdocai.MimeType(input, content), &cfg.DocumentAI)
	if err != nil {
		return err
	}
	if err := gdocai.SaveDocumentJSON(doc, cmd.String("output")); err != nil {
		return err
	}
	logger.Info("response saved", "output", cmd.String("output"), "pages", len(doc.Pages))

	dir := cmd.String("images")
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}
	for i := range doc.Pages {
		data, mimeType, err := gdocai.PageImage(doc, i)
		if err != nil {
			logger.Warn("no image for page", "page", i+1, "error", err)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%03d%s", i+1, imageExtension(mimeType)))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to save page image: %w", err)
		}
	}
	return nil
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/tiff":
		return ".tiff"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}

func enqueue(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd.Root())
	if err != nil {
		return err
	}

	var jobs []tabulate.Job
	if path := cmd.String("jobs"); path != "" {
		if jobs, err = readJobs(path); err != nil {
			return err
		}
	} else {
		job, err := jobFromFlags(cmd)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	client, err := queue.NewClient(redisURL(cmd, cfg), cmd.String("queue"))
	if err != nil {
		return err
	}
	defer client.Close()

	for _, job := range jobs {
		info, err := client.Enqueue(ctx, job)
		if err != nil {
			return err
		}
		logger.Info("job enqueued", "job", info.ID, "queue", info.Queue, "jurisdiction", job.Jurisdiction)
		fmt.Println(info.ID)
	}
	return nil
}

// readJobs reads one JSON job per line; blank lines and # comments are
// skipped
func readJobs(path string) ([]tabulate.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	var jobs []tabulate.Job
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var job tabulate.Job
		if err := json.Unmarshal([]byte(line), &job); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n, err)
		}
		if job.Source == "" {
			job.Source = tabulate.SourceForPath(job.Input)
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n, err)
		}
		jobs = append(jobs, job)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	return jobs, nil
}

func worker(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd.Root())
	if err != nil {
		return err
	}
	url := redisURL(cmd, cfg)

	server, err := queue.NewServer(queue.ServerConfig{
		RedisURL:    url,
		Queue:       cmd.String("queue"),
		Concurrency: cmd.Int("concurrency"),
		Logger:      logger.With("queue"),
	})
	if err != nil {
		return err
	}

	runner := tabulate.NewRunner(cfg, logger.With("tabulate"))
	defer runner.Close()

	handler := &queue.Handler{
		Runner: runner,
		Logger: logger.With("handler"),
	}
	if !cmd.Bool("no-status") {
		store, err := queue.NewRedisStatus(url, cmd.String("queue"))
		if err != nil {
			return err
		}
		defer store.Close()
		handler.Status = store
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, handler)
}

func status(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := setup(cmd.Root())
	if err != nil {
		return err
	}
	store, err := queue.NewRedisStatus(redisURL(cmd, cfg), cmd.String("queue"))
	if err != nil {
		return err
	}
	defer store.Close()

	var v interface{}
	if id := cmd.Args().First(); id != "" {
		v, err = store.Get(ctx, id)
	} else {
		v, err = store.Counts(ctx)
	}
	if err != nil {
		return err
	}

	out, err := gdocai.ToJSON(v)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func jurisdictions(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := setup(cmd.Root())
	if err != nil {
		return err
	}
	tables := catalog.Default()
	if cfg.ReferenceDir != "" {
		tables = catalog.Open(cfg.ReferenceDir)
	}

	names, err := tables.Jurisdictions()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(jurisdictionLine(tables, name))
	}
	return nil
}

// jurisdictionLine describes one jurisdiction: code, name, districts table
// and record parser
func jurisdictionLine(tables *catalog.Tables, name string) string {
	code, _ := tables.Code(name)
	parser := "-"
	if _, err := jurisdiction.ParseCode(code); err == nil {
		parser = "records"
	}
	districts := "no table"
	if tables.HasTable(name) {
		districts = "table unreadable"
		if c, err := tables.Catalog(name); err == nil {
			districts = fmt.Sprintf("%d districts", len(c.Names()))
		}
	}
	return fmt.Sprintf("%-4s %-45s %-16s %s", strings.ToUpper(code), name, districts, parser)
}

func redisURL(cmd *cli.Command, cfg *config.Config) string {
	if url := cmd.String("redis"); url != "" {
		return url
	}
	return cfg.RedisURL
}
