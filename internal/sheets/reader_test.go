package sheets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheet)

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("sales.xlsx"))
	assert.True(t, SupportedExtension("SALES.XLSX"))
	assert.True(t, SupportedExtension("q1.xlsm"))
	assert.True(t, SupportedExtension("data.csv"))
	assert.False(t, SupportedExtension("legacy.xls"))
	assert.False(t, SupportedExtension("notes.txt"))
}

func TestRead_Workbook(t *testing.T) {
	path := writeWorkbook(t, "一月", [][]interface{}{
		{"产品名称", "数量", "毛利"},
		{"螺纹钢", 120, 6},
		{"线材", 30, 2.1},
	})

	tbl, err := Read(path, "一月")
	require.NoError(t, err)

	assert.Equal(t, []string{"产品名称", "数量", "毛利"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "螺纹钢", tbl.Rows[0]["产品名称"])
	assert.Equal(t, "120", tbl.Rows[0]["数量"])
}

func TestRead_DefaultsToFirstSheet(t *testing.T) {
	path := writeWorkbook(t, "数据", [][]interface{}{
		{"客户", "金额"},
		{"甲", 10},
	})

	tbl, err := Read(path, "")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestRead_SkipsLeadingBlankRows(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"", ""},
		{"", ""},
		{"产品", "数量"},
		{"A", 1},
	})

	tbl, err := Read(path, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"产品", "数量"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 1)
}

func TestRead_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"产品"},
		{"A"},
	})

	_, err := Read(path, "不存在")
	assert.Error(t, err)
}

func TestRead_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "产品,数量,毛利\n螺纹钢,120,6\n线材,30,2.1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := Read(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"产品", "数量", "毛利"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "30", tbl.Rows[1]["数量"])
}

func TestList_Workbook(t *testing.T) {
	path := writeWorkbook(t, "一月", [][]interface{}{
		{"产品", "数量"},
		{"A", 1},
		{"B", 2},
	})

	infos, err := List(path)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "一月", infos[0].Name)
	assert.Equal(t, 3, infos[0].Rows)
	assert.Equal(t, 2, infos[0].Columns)
}

func TestList_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	infos, err := List(path)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Sheet1", infos[0].Name)
	assert.Equal(t, 1, infos[0].Rows)
}
