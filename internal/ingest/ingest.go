// 包 ingest：将本地设施表导入 PostgreSQL，作为离线数据通道
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"facility-api/internal/facility"
	"facility-api/internal/logger"
	"facility-api/internal/tabular"
)

// ErrEmptySource：文件没有任何数据行
var ErrEmptySource = errors.New("ingest: source has no records")

// Writer：导入目标
type Writer interface {
	UpsertSource(ctx context.Context, c facility.Category, district, content string, rows int) error
}

// Result：单个文件的导入结果
type Result struct {
	Category facility.Category
	District string
	Path     string
	Rows     int
	Warnings int
}

// ImportText：解析校验后写入原始文本
// 背景：入库内容保持原样，由读取端统一解析归一化；此处解析仅用于校验与统计
// 约束：行级告警只记日志不阻断；无数据行时拒绝导入
func ImportText(ctx context.Context, w Writer, c facility.Category, district, text string) (Result, error) {
	res := Result{Category: c, District: district}
	if !c.Valid() {
		return res, facility.ErrUnknownCategory
	}
	tbl, err := tabular.Parse(text)
	if err != nil {
		return res, err
	}
	res.Rows, res.Warnings = len(tbl.Records), len(tbl.Warnings)
	for _, wn := range tbl.Warnings {
		logger.L().Warn("ingest_parse_warning", "category", c.String(), "district", district, "warning", wn.String())
	}
	if res.Rows == 0 {
		return res, ErrEmptySource
	}
	cols := facility.ResolveColumns(tbl.Header, c)
	if _, ok := cols[string(facility.AttrLocationCode)]; !ok {
		logger.L().Warn("ingest_no_location_code", "category", c.String(), "district", district)
	}
	if err := w.UpsertSource(ctx, c, district, text, res.Rows); err != nil {
		return res, err
	}
	logger.L().Info("ingest_done", "category", c.String(), "district", district,
		"rows", res.Rows, "warnings", res.Warnings, "resolved", len(cols))
	return res, nil
}

// ImportFile：读取文件并导入
func ImportFile(ctx context.Context, w Writer, c facility.Category, district, path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Category: c, District: district, Path: path}, err
	}
	res, err := ImportText(ctx, w, c, district, string(b))
	res.Path = path
	if err != nil {
		return res, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return res, nil
}

// ImportDir：导入目录布局 <dir>/<category>.csv 与 <dir>/<category>/<district>.csv
// 约束：单个文件失败记日志并继续；返回成功结果与首个错误
func ImportDir(ctx context.Context, w Writer, dir string) ([]Result, error) {
	var (
		out   []Result
		first error
	)
	for _, c := range facility.Categories() {
		for _, f := range dirFiles(dir, c) {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			res, err := ImportFile(ctx, w, c, f.district, f.path)
			if err != nil {
				logger.L().Error("ingest_file_error", "path", f.path, "err", err)
				if first == nil {
					first = err
				}
				continue
			}
			out = append(out, res)
		}
	}
	return out, first
}

type dirFile struct{ district, path string }

func dirFiles(dir string, c facility.Category) []dirFile {
	var out []dirFile
	whole := filepath.Join(dir, c.String()+".csv")
	if st, err := os.Stat(whole); err == nil && !st.IsDir() {
		out = append(out, dirFile{path: whole})
	}
	matches, _ := filepath.Glob(filepath.Join(dir, c.String(), "*.csv"))
	sort.Strings(matches)
	for _, m := range matches {
		out = append(out, dirFile{district: strings.TrimSuffix(filepath.Base(m), ".csv"), path: m})
	}
	return out
}
