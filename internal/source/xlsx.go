package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/xuri/excelize/v2"
)

type xlsxFormat struct{}

func (xlsxFormat) CanRead(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}

func (x xlsxFormat) ReadFile(ctx context.Context, l *survey.Loader, path string, opt Options) (*survey.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return x.ReadBytes(ctx, l, filepath.Base(path), data, opt)
}

func (xlsxFormat) ReadBytes(ctx context.Context, l *survey.Loader, name string, data []byte, opt Options) (*survey.Table, error) {
	sheet, rows, err := ReadSheet(data, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return l.LoadRows(ctx, name+"#"+sheet, rows)
}

// ReadSheet returns the rows of one worksheet, padded to the header width and
// without blank rows. If sheetName is empty, sheetIndex (1-based) picks the
// sheet; values <= 0 mean the first sheet.
func ReadSheet(data []byte, sheetName string, sheetIndex int) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}
	target := ""
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				target = s
				break
			}
		}
		if target == "" {
			return "", nil, fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s", sheetName, strings.Join(sheets, ", "))
		}
	} else {
		idx := sheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return "", nil, fmt.Errorf("sheet index %d out of range (workbook has %d sheets: %s)", idx, len(sheets), strings.Join(sheets, ", "))
		}
		target = sheets[idx-1]
	}

	raw, err := f.GetRows(target)
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	var rows [][]string
	width := 0
	for _, r := range raw {
		if blankRow(r) {
			continue
		}
		if rows == nil {
			width = len(r)
		}
		// trailing empty cells are not returned by the reader
		for len(r) < width {
			r = append(r, "")
		}
		rows = append(rows, r)
	}
	return target, rows, nil
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
