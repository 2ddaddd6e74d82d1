// 命令行报告工具：直接读取本地数据目录，输出与 HTTP 接口一致的 JSON
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"facility-api/internal/config"
	"facility-api/internal/dataset"
	"facility-api/internal/logger"
	"facility-api/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	dataDir string
	compact bool
}

func main() {
	for _, f := range config.EnvFiles() {
		_ = godotenv.Load(f)
	}
	logger.Setup()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "facility-report",
		Short:        "Compute facility metrics, breakdowns and schemas from a local data directory",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", config.Load().DataDir, "data directory (<dir>/<category>[/<district>].csv, <dir>/locations.*)")
	root.PersistentFlags().BoolVar(&opts.compact, "compact", false, "emit single-line JSON")
	root.AddCommand(
		newMetricsCmd(opts),
		newBreakdownCmd(opts),
		newSchemaCmd(opts),
		newResolveCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

func (o *options) service() *report.Service {
	return report.New(dataset.NewLoader(dataset.Options{
		Source:  dataset.FileSource{Dir: o.dataDir},
		TreeDir: o.dataDir,
	}))
}

func (o *options) print(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if !o.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
