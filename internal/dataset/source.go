package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"facility-api/internal/facility"
	"facility-api/internal/logger"
	"facility-api/internal/store"
)

// ErrSourceNotFound：类别与区均无可用数据
var ErrSourceNotFound = errors.New("dataset: source not found")

// Source：原始表文本的来源
type Source interface {
	Name() string
	Read(ctx context.Context, c facility.Category, district string) (string, error)
}

// validDistrict：区参数只允许单段名称，禁止路径穿越
func validDistrict(d string) bool {
	return !strings.ContainsAny(d, `/\`) && d != "." && d != ".."
}

// FileSource：本地目录
// 查找顺序：<dir>/<category>/<district>.csv，其次 <dir>/<category>.csv
type FileSource struct {
	Dir string
}

func (FileSource) Name() string { return "file" }

// Paths：按优先级列出候选文件
func (s FileSource) Paths(c facility.Category, district string) []string {
	var out []string
	if district != "" {
		out = append(out, filepath.Join(s.Dir, c.String(), district+".csv"))
	}
	return append(out, filepath.Join(s.Dir, c.String()+".csv"))
}

func (s FileSource) Read(ctx context.Context, c facility.Category, district string) (string, error) {
	if !validDistrict(district) {
		return "", fmt.Errorf("%w: invalid district %q", ErrSourceNotFound, district)
	}
	for _, p := range s.Paths(c, district) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b, err := os.ReadFile(p)
		if err == nil {
			logger.L().Debug("source_file_hit", "path", p, "bytes", len(b))
			return string(b), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrSourceNotFound, c, district)
}

// sourceStore：PostgresSource 所需的存储能力
type sourceStore interface {
	LoadSource(ctx context.Context, c facility.Category, district string) (string, error)
}

// PostgresSource：_facility_sources 表；区缺失时回退到整类别数据
type PostgresSource struct {
	Store sourceStore
}

func (PostgresSource) Name() string { return "postgres" }

func (s PostgresSource) Read(ctx context.Context, c facility.Category, district string) (string, error) {
	keys := []string{district}
	if district != "" {
		keys = append(keys, "")
	}
	for _, d := range keys {
		content, err := s.Store.LoadSource(ctx, c, d)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrSourceNotFound, c, district)
}
