// 数据导入工具：把本地设施表写入 PostgreSQL（_facility_sources），供 SOURCE=postgres 的服务读取
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"facility-api/internal/config"
	"facility-api/internal/facility"
	"facility-api/internal/ingest"
	"facility-api/internal/logger"
	"facility-api/internal/migrate"
	"facility-api/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	for _, f := range config.EnvFiles() {
		_ = godotenv.Load(f)
	}
	logger.Setup()
	if err := newRootCmd(openStore).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// openStore：按配置中的 PG_* 参数连接并确保表结构
func openStore(ctx context.Context) (*store.Store, func(), error) {
	pg := config.Load().Postgres
	st, err := store.Open(ctx, pg.DSN(), pg.MaxOpenConns, pg.MaxIdleConns)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.EnsureSchema(st.DB()); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}

type opener func(ctx context.Context) (*store.Store, func(), error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "facility-ingest",
		Short:        "Import facility tables into PostgreSQL",
		SilenceUsage: true,
	}
	with := func(fn func(cmd *cobra.Command, st *store.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(cmd, st, args)
		}
	}

	var district string
	fileCmd := &cobra.Command{
		Use:   "file <health|education> <file.csv>",
		Short: "Import one file for a category (optionally scoped to a district)",
		Args:  cobra.ExactArgs(2),
		RunE: with(func(cmd *cobra.Command, st *store.Store, args []string) error {
			c, err := facility.ParseCategory(args[0])
			if err != nil {
				return err
			}
			res, err := ingest.ImportFile(cmd.Context(), st, c, district, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s: %d rows, %d warnings\n", c, orAll(res.District), res.Rows, res.Warnings)
			return nil
		}),
	}
	fileCmd.Flags().StringVar(&district, "district", "", "district code; empty imports the category-wide table")

	dirCmd := &cobra.Command{
		Use:   "dir <data-dir>",
		Short: "Import <dir>/<category>.csv and <dir>/<category>/<district>.csv",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, st *store.Store, args []string) error {
			out, err := ingest.ImportDir(cmd.Context(), st, args[0])
			for _, r := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s: %d rows, %d warnings\n", r.Category, orAll(r.District), r.Rows, r.Warnings)
			}
			return err
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List imported sources",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, st *store.Store, _ []string) error {
			infos, err := st.ListSources(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}),
	}

	var delDistrict string
	deleteCmd := &cobra.Command{
		Use:   "delete <health|education>",
		Short: "Delete an imported source",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, st *store.Store, args []string) error {
			c, err := facility.ParseCategory(args[0])
			if err != nil {
				return err
			}
			ok, err := st.DeleteSource(cmd.Context(), c, delDistrict)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s %s: %w", c, orAll(delDistrict), store.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", c, orAll(delDistrict))
			return nil
		}),
	}
	deleteCmd.Flags().StringVar(&delDistrict, "district", "", "district code")

	root.AddCommand(fileCmd, dirCmd, listCmd, deleteCmd)
	return root
}

func orAll(district string) string {
	if district == "" {
		return "(all districts)"
	}
	return district
}
