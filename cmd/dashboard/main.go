package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"StockDashboard/internal/collector"
	"StockDashboard/internal/config"
	"StockDashboard/internal/dashboard"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/scheduler"
	"StockDashboard/internal/server"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Stock analysis dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reportCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	setupLogger(cfg.Log.Level)
	return cfg, nil
}

func setupLogger(level string) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(level),
		Caller:     1,
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     &log.IOWriter{Writer: os.Stderr},
	}
	if log.IsTerminal(os.Stderr.Fd()) {
		log.DefaultLogger.Writer = &log.ConsoleWriter{ColorOutput: true, Writer: os.Stderr}
	}
}

// newFetcher builds the configured price source.
func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Source {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.RequestsPerSecond)
	case "alpaca":
		return collector.NewAlpacaFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RequestsPerSecond)
	}
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log.Info().Msg("StockDashboard starting...")

			fetcher := collector.NewCachedFetcher(newFetcher(cfg))
			log.Info().Str("source", fetcher.Name()).Msg("data source ready")

			rec := newRecorder(cfg)
			defer rec.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.NewScheduler(ctx, fetcher, cfg.Schedule.WarmTickers)
			if err := sched.Register(cfg.Schedule.WarmCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("WARM_ON_START") == "true" {
				log.Info().Msg("WARM_ON_START enabled, warming cache now")
				go sched.RunWarmNow()
			}

			srv := &server.Server{
				Fetcher:       fetcher,
				Recorder:      rec,
				DefaultTicker: cfg.Dashboard.DefaultTicker,
				ChartSize:     dashboard.ChartSize{Width: cfg.Dashboard.ChartWidth, Height: cfg.Dashboard.ChartHeight},
			}
			log.Info().Str("addr", cfg.Server.Addr).Msg("StockDashboard is running. Press Ctrl+C to stop.")
			if err := server.ListenAndServe(ctx, cfg.Server.Addr, srv.NewHTTPMux()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			log.Info().Msg("StockDashboard stopped")
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var (
		ticker    string
		timeRange string
		view      string
		chartPath string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the KPIs and observation for one ticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			in := dashboard.Inputs{
				Ticker: ticker,
				Range:  model.TimeRange(timeRange),
				View:   model.MetricView(view),
			}.Normalize(cfg.Dashboard.DefaultTicker)

			page, err := dashboard.Render(cmd.Context(), newFetcher(cfg), in)
			if dashboard.IsNoData(err) {
				return errors.New(dashboard.NoDataMessage)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stock Analysis Dashboard\n%s | Time Range: %s\n\nKey Metrics\n", in.Ticker, in.Range)
			for _, k := range page.KPIs {
				fmt.Fprintf(out, "  %-22s %s\n", k.Label+":", k.Value)
			}
			fmt.Fprintf(out, "\n%s\nObservation: %s\n", page.View.Kind, page.Observation)

			if chartPath != "" {
				img, err := dashboard.RenderChart(page, dashboard.ChartSize{Width: cfg.Dashboard.ChartWidth, Height: cfg.Dashboard.ChartHeight})
				if err != nil {
					return fmt.Errorf("render chart: %w", err)
				}
				if err := os.WriteFile(chartPath, img, 0o644); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				fmt.Fprintf(out, "Chart written to %s\n", chartPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "Stock ticker (default from config)")
	cmd.Flags().StringVarP(&timeRange, "range", "r", string(model.Range1Y), "Time range: 1Y, 3Y, 5Y or MAX")
	cmd.Flags().StringVarP(&view, "view", "v", string(model.ViewClosingPrice), "Metric view")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write the selected chart as PNG to this path")
	return cmd
}
