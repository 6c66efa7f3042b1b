package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	cli "github.com/jawher/mow.cli"

	"github.com/haku-324897/askul-navilion/config"
	dataio "github.com/haku-324897/askul-navilion/pkg/io"
	"github.com/haku-324897/askul-navilion/pkg/reconcile"
	"github.com/haku-324897/askul-navilion/pkg/scraper"
	"github.com/haku-324897/askul-navilion/pkg/session"
	"github.com/haku-324897/askul-navilion/pkg/web"
)

const defaultOutput = "askul_gifshop_result.csv"

type options struct {
	ConfigPath  string
	QueriesFile string
	Output      string
	HTMLOutput  string
	Queries     []string
}

func main() {
	app := cli.App("pricecheck", "Compare ASKUL product prices against the Navilion wholesale catalog")
	app.Spec = "[-c] [-f] [-o] [--html] [QUERY...]"

	var (
		configPath  = app.StringOpt("c config", "", "path to a YAML config file")
		queriesFile = app.StringOpt("f file", "", "file with one product URL or ID per line ('-' reads stdin)")
		output      = app.StringOpt("o output", defaultOutput, "CSV file to write")
		htmlOutput  = app.StringOpt("html", "", "also render an HTML report to this file")
		queries     = app.StringsArg("QUERY", nil, "product URLs or IDs")
	)

	app.Action = func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err := run(ctx, os.Stderr, options{
			ConfigPath:  *configPath,
			QueriesFile: *queriesFile,
			Output:      *output,
			HTMLOutput:  *htmlOutput,
			Queries:     *queries,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			cli.Exit(1)
		}
	}

	app.Run(os.Args)
}

func run(ctx context.Context, stderr io.Writer, o options) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(stderr)
	slog.SetDefault(logger)

	queries := o.Queries
	if o.QueriesFile != "" {
		fromFile, err := dataio.LoadQueriesFromFile(o.QueriesFile)
		if err != nil {
			return err
		}
		queries = append(queries, fromFile...)
	}
	if len(queries) == 0 {
		return errors.New("no queries given: pass product URLs/IDs as arguments or use -f")
	}

	primarySession, err := session.New(cfg.PrimarySession(), logger.With("site", "primary"))
	if err != nil {
		return err
	}
	secondarySession, err := session.New(cfg.SecondarySession(), logger.With("site", "secondary"))
	if err != nil {
		return err
	}

	primary, err := scraper.NewPrimary(primarySession, cfg.PrimaryScraper(), logger)
	if err != nil {
		return err
	}
	secondary := scraper.NewSecondary(secondarySession, cfg.SecondaryScraper(), logger)

	p := reconcile.NewProcessor(primary, secondary, cfg.Processor(), reconcile.LogSink{Logger: logger}, logger)

	start := time.Now()
	rows, err := p.ProcessQueries(ctx, queries)
	if errors.Is(err, reconcile.ErrNoData) {
		logger.Warn("データが取得できませんでした。", "queries", len(queries))
		return err
	} else if err != nil {
		return err
	}
	logger.Info("batch finished", "rows", len(rows), "elapsed", time.Since(start).Round(time.Millisecond))

	if err := dataio.WriteCSVFile(o.Output, rows, cfg.Currency); err != nil {
		return err
	}
	logger.Info("wrote csv", "path", o.Output)

	if o.HTMLOutput != "" {
		if err := renderToFile(o.HTMLOutput, web.ReportContext{
			Title:       "ASKUL / ナビリオン 価格比較",
			GeneratedAt: start,
			Currency:    cfg.Currency,
			Rows:        rows,
		}); err != nil {
			return err
		}
		logger.Info("wrote html report", "path", o.HTMLOutput)
	}

	return nil
}

func renderToFile(path string, c web.ReportContext) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := web.RenderReport(f, c); err != nil {
		return err
	}
	return f.Close()
}
