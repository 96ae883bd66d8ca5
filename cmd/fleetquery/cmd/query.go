package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fleetops/fleetquery/internal/common"
	"github.com/fleetops/fleetquery/internal/domain/repo/resultarchive"
	"github.com/fleetops/fleetquery/internal/factory"
	"github.com/fleetops/fleetquery/internal/livequery"
	"github.com/fleetops/fleetquery/internal/log"
)

var (
	queryStatement string
	queryHosts     []uint
	queryLabels    []uint
	queryTeams     []uint
	queryAllOnline bool
	queryTimeout   time.Duration
	serveMetrics   bool
)

var queryCmd = &cobra.Command{
	Use:     "query",
	Short:   "Run a live query against selected hosts and print the collected results",
	PreRunE: initFromConfig,
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.Logger()

		err := common.SetMaxProcs()
		if err != nil {
			logger.Error(err, "Failed to set max procs")

			return
		}

		err = common.SetMemLimit()
		if err != nil {
			logger.Error(err, "Failed to set mem limit")

			return
		}

		ctx := common.SetupSignalHandler(context.Background())

		// Dependencies
		client, err := factory.CreateFleetClient(conf.Fleet)
		if err != nil {
			logger.Error(err, "Failed to create fleet client")

			return
		}

		dialer, err := factory.CreateChannelDialer(conf.Fleet)
		if err != nil {
			logger.Error(err, "Failed to create channel dialer")

			return
		}

		registry := prometheus.NewRegistry()

		resultProcessing, err := factory.CreateResultProcessing(registry)
		if err != nil {
			logger.Error(err, "Failed to create result processing")

			return
		}

		errorProcessing, err := factory.CreateErrorProcessing(registry)
		if err != nil {
			logger.Error(err, "Failed to create error processing")

			return
		}

		if serveMetrics {
			srv := factory.CreatePrometheusServer(conf.Metrics, registry)

			go func() {
				serveErr := srv.ListenAndServe()
				if serveErr != nil && serveErr != http.ErrServerClosed {
					logger.Error(serveErr, "Metrics server stopped")
				}
			}()

			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()

				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		engine := livequery.NewEngine(client, dialer).
			WithLogger(logger).
			WithResultProcessing(resultProcessing).
			WithErrorProcessing(errorProcessing).
			WithOnlinePageSize(conf.Query.OnlinePageSize).
			WithProgress(func(p livequery.Progress) {
				fmt.Fprintf(os.Stderr, "collected %d/%d\n", p.ResultsCollected, p.TotalHosts)
			})

		timeout := queryTimeout
		if timeout <= 0 {
			timeout = conf.Query.Timeout
		}

		run, err := engine.Run(ctx, livequery.Request{
			Query:     queryStatement,
			HostIDs:   queryHosts,
			LabelIDs:  queryLabels,
			TeamIDs:   queryTeams,
			AllOnline: queryAllOnline,
			Timeout:   timeout,
		})
		if err != nil {
			logger.Error(err, "Live query failed")
			os.Exit(1)
		}

		logger.V(1).Info("Live query finished",
			"campaign", run.CampaignID,
			"results", run.ResultCount,
			"totalHosts", run.TotalHosts,
			"elapsed", run.Elapsed,
		)

		if conf.Archive.Bucket != "" {
			s3client, archiveErr := factory.CreateS3Client(ctx, conf.Archive)
			if archiveErr != nil {
				logger.Error(archiveErr, "Failed to create s3 client, skipping archive")
			} else {
				writer := resultarchive.NewS3Writer(s3client, conf.Archive.Bucket, conf.Archive.KeyPrefix)

				archiveErr = writer.WriteQueryRun(ctx, run)
				if archiveErr != nil {
					logger.Error(archiveErr, "Failed to archive query run")
				}
			}
		}

		out, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			logger.Error(err, "Failed to marshal query run")
			os.Exit(1)
		}

		fmt.Println(string(out))
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryStatement, "query", "q", "", "osquery SQL statement to run")
	queryCmd.Flags().UintSliceVar(&queryHosts, "hosts", nil, "target host ids")
	queryCmd.Flags().UintSliceVar(&queryLabels, "labels", nil, "target label ids")
	queryCmd.Flags().UintSliceVar(&queryTeams, "teams", nil, "target team ids")
	queryCmd.Flags().BoolVar(&queryAllOnline, "all-online", false, "target every online host")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "collection deadline (default from config)")
	queryCmd.Flags().BoolVar(&serveMetrics, "serve-metrics", false, "expose prometheus metrics while the query runs")

	err := queryCmd.MarkFlagRequired("query")
	if err != nil {
		panic(err)
	}

	rootCmd.AddCommand(queryCmd)
}
