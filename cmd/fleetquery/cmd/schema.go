package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fleetops/fleetquery/internal/common"
	"github.com/fleetops/fleetquery/internal/factory"
	"github.com/fleetops/fleetquery/internal/fleet"
	"github.com/fleetops/fleetquery/internal/log"
	"github.com/fleetops/fleetquery/internal/schema"
)

var (
	tablesHost     uint
	tablesPlatform string
)

var schemaCmd = &cobra.Command{
	Use:               "schema",
	Short:             "Inspect and maintain the table schema cache",
	PersistentPreRunE: initFromConfig,
}

var schemaRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a schema registry reload from the upstream repository",
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.Logger()

		ctx := common.SetupSignalHandler(context.Background())

		cache, closeStore, err := createSchemaCache(ctx, false)
		if err != nil {
			logger.Error(err, "Failed to create schema cache")
			os.Exit(1)
		}
		defer closeQuietly(ctx, closeStore)

		fromNetwork := cache.Refresh(ctx)

		info := cache.Info(ctx)

		fmt.Printf("refreshed: %d tables (from network: %t)\n", info.TableCount, fromNetwork)
	},
}

var schemaInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the schema cache state",
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.Logger()

		ctx := common.SetupSignalHandler(context.Background())

		cache, closeStore, err := createSchemaCache(ctx, false)
		if err != nil {
			logger.Error(err, "Failed to create schema cache")
			os.Exit(1)
		}
		defer closeQuietly(ctx, closeStore)

		info := cache.Info(ctx)

		fmt.Printf("cache file:   %s\n", info.FilePath)

		if info.FileExists {
			fmt.Printf("size:         %s\n", humanize.IBytes(uint64(info.FileSizeBytes)))
			fmt.Printf("age:          %s (ttl %s)\n", info.FileAge.Truncate(time.Second), info.TTL)
			fmt.Printf("valid:        %t\n", info.Valid)
		} else {
			fmt.Println("size:         not downloaded yet")
		}

		fmt.Printf("tables:       %d\n", info.TableCount)
		fmt.Printf("cached hosts: %d\n", info.HostCount)
	},
}

var schemaTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the queryable tables for one host",
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.Logger()

		ctx := common.SetupSignalHandler(context.Background())

		cache, closeStore, err := createSchemaCache(ctx, true)
		if err != nil {
			logger.Error(err, "Failed to create schema cache")
			os.Exit(1)
		}
		defer closeQuietly(ctx, closeStore)

		tables := cache.TablesForHost(ctx, tablesHost, tablesPlatform)

		out, err := json.MarshalIndent(tables, "", "  ")
		if err != nil {
			logger.Error(err, "Failed to marshal tables")
			os.Exit(1)
		}

		fmt.Println(string(out))
	},
}

// createSchemaCache wires the cache with its store. The fleet client is
// only needed for live discovery; refresh and info work offline.
func createSchemaCache(ctx context.Context, requireClient bool) (*schema.Cache, common.CloseFunc, error) {
	var client fleet.Client

	client, err := factory.CreateFleetClient(conf.Fleet)
	if err != nil {
		if requireClient {
			return nil, nil, err
		}

		client = nil
	}

	store, closeStore, err := factory.CreateTableStore(ctx, conf.Valkey)
	if err != nil {
		return nil, nil, err
	}

	return schema.NewCache(client, store, conf.Schema, log.Logger()), closeStore, nil
}

func closeQuietly(ctx context.Context, close common.CloseFunc) {
	err := close(ctx)
	if err != nil {
		log.Logger().Error(err, "Failed to close table store")
	}
}

func init() {
	schemaTablesCmd.Flags().UintVar(&tablesHost, "host", 0, "host id")
	schemaTablesCmd.Flags().StringVar(&tablesPlatform, "platform", "", "host platform (darwin, linux, windows, ...)")

	err := schemaTablesCmd.MarkFlagRequired("host")
	if err != nil {
		panic(err)
	}

	err = schemaTablesCmd.MarkFlagRequired("platform")
	if err != nil {
		panic(err)
	}

	schemaCmd.AddCommand(schemaRefreshCmd)
	schemaCmd.AddCommand(schemaInfoCmd)
	schemaCmd.AddCommand(schemaTablesCmd)
	rootCmd.AddCommand(schemaCmd)
}
