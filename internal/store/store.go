// 包 store: 提供与 PostgreSQL 的数据访问层，保存各类别/区的原始设施表文本
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"facility-api/internal/facility"
	"facility-api/internal/logger"

	_ "github.com/lib/pq"
)

// ErrNotFound: 指定类别与区没有已导入的数据
var ErrNotFound = errors.New("store: source not found")

// Store: 数据库访问入口，持有连接池并提供读写接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开 lib/pq 连接池、设置池大小并做一次连通性检查
// 约束：检查失败时关闭连接池后返回错误
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int) (*Store, error) {
	return open(ctx, "postgres", dsn, maxOpen, maxIdle)
}

func open(ctx context.Context, driver, dsn string, maxOpen, maxIdle int) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	logger.L().Debug("db_open_ok", "max_open", maxOpen, "max_idle", maxIdle)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// DB: 底层连接池，供建表迁移使用
func (s *Store) DB() *sql.DB { return s.db }

// SourceInfo: 已导入数据源的元信息
type SourceInfo struct {
	Category  facility.Category `json:"category"`
	District  string            `json:"district"`
	RowCount  int               `json:"rowCount"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// LoadSource: 读取原始表文本；district 为空表示整类别数据
func (s *Store) LoadSource(ctx context.Context, c facility.Category, district string) (string, error) {
	row := s.db.QueryRowContext(ctx, "SELECT content FROM _facility_sources WHERE category=$1 AND district=$2", c.String(), district)
	var content string
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.L().Debug("db_source_miss", "category", c.String(), "district", district)
			return "", ErrNotFound
		}
		return "", err
	}
	logger.L().Debug("db_source_hit", "category", c.String(), "district", district, "bytes", len(content))
	return content, nil
}

// UpsertSource: 写入或替换原始表文本
func (s *Store) UpsertSource(ctx context.Context, c facility.Category, district, content string, rows int) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO _facility_sources(category, district, content, row_count, updated_at)
        VALUES($1,$2,$3,$4,now())
        ON CONFLICT (category, district) DO UPDATE SET content=EXCLUDED.content, row_count=EXCLUDED.row_count, updated_at=now()`,
		c.String(), district, content, rows,
	)
	if err != nil {
		return err
	}
	logger.L().Debug("db_source_upsert", "category", c.String(), "district", district, "rows", rows)
	return nil
}

// DeleteSource: 删除一条数据源，返回是否存在
func (s *Store) DeleteSource(ctx context.Context, c facility.Category, district string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM _facility_sources WHERE category=$1 AND district=$2", c.String(), district)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListSources: 列出已导入的数据源，按类别与区排序
func (s *Store) ListSources(ctx context.Context) ([]SourceInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT category, district, row_count, updated_at FROM _facility_sources ORDER BY category, district")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SourceInfo
	for rows.Next() {
		var (
			cat  string
			info SourceInfo
		)
		if err := rows.Scan(&cat, &info.District, &info.RowCount, &info.UpdatedAt); err != nil {
			return nil, err
		}
		c, err := facility.ParseCategory(cat)
		if err != nil {
			logger.L().Warn("db_source_bad_category", "category", cat)
			continue
		}
		info.Category = c
		out = append(out, info)
	}
	return out, rows.Err()
}
