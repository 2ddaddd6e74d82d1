package migrate

import (
	"database/sql"

	"facility-api/internal/logger"
)

// 背景：首次运行自动创建所需表与索引，保障后续导入与查询
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _facility_sources (
            category TEXT NOT NULL,
            district TEXT NOT NULL DEFAULT '',
            content TEXT NOT NULL,
            row_count INT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (category, district)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_facility_sources_updated ON _facility_sources(updated_at)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
