// Command gtfs-subset extracts a subset of a GTFS feed restricted to a
// bounding box or a service-date window, preserving referential
// integrity across the feed's files.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	gtfssubset "github.com/mkuranowski/gtfs-subset"
	"github.com/mkuranowski/gtfs-subset/internal/bbox"
	"github.com/mkuranowski/gtfs-subset/internal/gtfsdate"
	"github.com/mkuranowski/gtfs-subset/internal/gtfserr"
	"github.com/mkuranowski/gtfs-subset/logging"
)

var version = "dev"

type globalFlags struct {
	logLevel   string
	cores      int
	noProgress bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{logLevel: "INFO"}

	root := &cobra.Command{
		Use:     "gtfs-subset",
		Short:   "Extract a subset of a GTFS feed by bbox or service-date window",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(flags.logLevel)
			if err != nil {
				return err
			}
			logger := logging.NewLogger()
			logger.SetLevel(level)
			logging.SetGlobalLogger(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "logging", "INFO", "log level: DEBUG|INFO|WARNING|ERROR|CRITICAL")
	root.PersistentFlags().IntVar(&flags.cores, "cores", defaultCores(), "number of worker goroutines per pass")
	root.PersistentFlags().BoolVar(&flags.noProgress, "no-progress", false, "disable progress reporting (cosmetic only)")

	root.AddCommand(newExtractBboxCommand(flags))
	root.AddCommand(newExtractDateCommand(flags))
	root.AddCommand(newMetadataCommand(flags))

	return root
}

func defaultCores() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// parseLogLevel accepts the CRITICAL synonym for ERROR alongside the
// logging package's own four levels, matching the CLI surface's wider
// vocabulary without widening the logging package itself.
func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return logging.DEBUG, nil
	case "INFO":
		return logging.INFO, nil
	case "WARNING", "WARN":
		return logging.WARN, nil
	case "ERROR", "CRITICAL":
		return logging.ERROR, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func newExtractBboxCommand(flags *globalFlags) *cobra.Command {
	var inputObject, outputFolder, bboxStr string

	cmd := &cobra.Command{
		Use:   "extract-bbox",
		Short: "Keep only what a bounding box reaches",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseBbox(bboxStr)
			if err != nil {
				return err
			}

			sub := gtfssubset.New(subsetterOptions(flags)...)

			start := time.Now()
			files, err := sub.ExtractByBboxContext(cmd.Context(), inputObject, outputFolder, b)
			if err != nil {
				return err
			}
			reportResult(files, time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&inputObject, "input-object", "", "directory or zip file the GTFS feed is read from")
	cmd.Flags().StringVar(&outputFolder, "output-folder", "", "directory the filtered feed is written to")
	cmd.Flags().StringVar(&bboxStr, "bbox", "", `"min_lon,min_lat,max_lon,max_lat"`)
	_ = cmd.MarkFlagRequired("input-object")
	_ = cmd.MarkFlagRequired("output-folder")
	_ = cmd.MarkFlagRequired("bbox")
	return cmd
}

func newExtractDateCommand(flags *globalFlags) *cobra.Command {
	var inputObject, outputFolder, startDate, endDate string

	cmd := &cobra.Command{
		Use:   "extract-date",
		Short: "Keep only what a service-date window reaches",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := gtfsdate.Parse(startDate)
			if err != nil {
				return err
			}
			end, err := gtfsdate.Parse(endDate)
			if err != nil {
				return err
			}

			sub := gtfssubset.New(subsetterOptions(flags)...)

			runStart := time.Now()
			files, err := sub.ExtractByDateContext(cmd.Context(), inputObject, outputFolder, start, end)
			if err != nil {
				return err
			}
			reportResult(files, time.Since(runStart))
			return nil
		},
	}
	cmd.Flags().StringVar(&inputObject, "input-object", "", "directory or zip file the GTFS feed is read from")
	cmd.Flags().StringVar(&outputFolder, "output-folder", "", "directory the filtered feed is written to")
	cmd.Flags().StringVar(&startDate, "start-date", "", "YYYYMMDD")
	cmd.Flags().StringVar(&endDate, "end-date", "", "YYYYMMDD")
	_ = cmd.MarkFlagRequired("input-object")
	_ = cmd.MarkFlagRequired("output-folder")
	_ = cmd.MarkFlagRequired("start-date")
	_ = cmd.MarkFlagRequired("end-date")
	return cmd
}

func newMetadataCommand(flags *globalFlags) *cobra.Command {
	var inputObject string

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print the feed's service date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := gtfssubset.New(subsetterOptions(flags)...)

			start, end, err := sub.MetadataContext(cmd.Context(), inputObject)
			if err != nil {
				return err
			}
			fmt.Printf("Service date window from '%s' to '%s'\n", start, end)
			return nil
		},
	}
	cmd.Flags().StringVar(&inputObject, "input-object", "", "directory or zip file the GTFS feed is read from")
	_ = cmd.MarkFlagRequired("input-object")
	return cmd
}

func subsetterOptions(flags *globalFlags) []gtfssubset.Option {
	opts := []gtfssubset.Option{
		gtfssubset.WithWorkers(flags.cores),
		gtfssubset.WithLogger(logging.GetGlobalLogger()),
	}
	if !flags.noProgress {
		opts = append(opts, gtfssubset.WithProgressCallback(func(pass string) {
			fmt.Fprintf(os.Stderr, "  ... %s done\n", pass)
		}))
	}
	return opts
}

func reportResult(files []string, elapsed time.Duration) {
	logging.Info("extraction complete",
		logging.Duration("run_time", elapsed),
		logging.Int("file_count", len(files)))
	for _, f := range files {
		logging.Info(f)
	}
}

func parseBbox(s string) (bbox.Bbox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return bbox.Bbox{}, fmt.Errorf("bbox %q: %w", s, gtfserr.ErrBadBbox)
	}
	var coords [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return bbox.Bbox{}, fmt.Errorf("bbox %q: %w", s, gtfserr.ErrBadBbox)
		}
		coords[i] = v
	}
	return bbox.New(coords[0], coords[1], coords[2], coords[3]), nil
}
