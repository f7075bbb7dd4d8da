package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/envelope-budget/internal/storage/dynamo"
	"github.com/spf13/cobra"
)

var dynamoCmd = &cobra.Command{
	Use:   "dynamo",
	Short: "DynamoDB management commands",
	Long:  `Manage the DynamoDB backend: provision the table against AWS or a dynamodb-local endpoint`,
}

var createTableCmd = &cobra.Command{
	Use:   "create-table",
	Short: "Create the application table",
	Long:  `Create the single table with its secondary index. Does nothing if the table already exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		ctx := context.Background()
		client, err := dynamo.NewClient(ctx, cfg.Storage.Dynamo)
		if err != nil {
			log.Fatalf("failed to create dynamodb client: %v", err)
		}

		if err := dynamo.EnsureTable(ctx, client, cfg.Storage.Dynamo.TableName); err != nil {
			log.Fatalf("failed to create table: %v", err)
		}

		fmt.Println("Table ready:", cfg.Storage.Dynamo.TableName)
	},
}

func init() {
	dynamoCmd.AddCommand(createTableCmd)
}
