package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"dailybriefing/internal/config"
	"dailybriefing/internal/jobs"
	"dailybriefing/internal/models"
	"dailybriefing/internal/preflight"
	"dailybriefing/internal/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var LambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function handler",
	Long: `Start the Lambda runtime loop. Each invocation (normally an EventBridge
scheduled event) runs the pipeline once and returns {statusCode, body}.`,
	RunE: runLambda,
}

// lambdaHandler is the function registered with the Lambda runtime
type lambdaHandler func(ctx context.Context, event events.CloudWatchEvent) (models.RunResult, error)

func newLambdaHandler(cfg *config.Config, run jobs.BriefingRunner, gatherer prometheus.Gatherer) lambdaHandler {
	return func(ctx context.Context, event events.CloudWatchEvent) (models.RunResult, error) {
		if raw, err := json.Marshal(event); err == nil {
			log.Printf("📥 [LAMBDA] Event: %s", raw)
		}

		result := run(ctx, "lambda")
		pushMetrics(context.WithoutCancel(ctx), cfg, gatherer)

		// failures are reported in the result, never as an invocation error
		return result, nil
	}
}

// coldStartCheck fails the cold start on broken config or template so
// invocations never start with them
func coldStartCheck(cfg *config.Config) error {
	results := preflight.NewChecker(cfg).QuickCheck()
	if !preflight.HasFailures(results) {
		return nil
	}
	for _, r := range results {
		if r.Status == preflight.StatusFail && r.Error != nil {
			return fmt.Errorf("pre-flight check %q failed: %w", r.Name, r.Error)
		}
	}
	return fmt.Errorf("pre-flight checks failed")
}

func runLambda(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := coldStartCheck(cfg); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := services.NewMetrics(reg)
	run := func(ctx context.Context, trigger string) models.RunResult {
		return services.RunOnce(ctx, cfg, metrics, trigger)
	}

	log.Printf("🚀 [LAMBDA] Starting Lambda handler (version %s)", AppVersion)
	lambda.Start(newLambdaHandler(cfg, run, reg))
	return nil
}
