package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"

	"github.com/xuri/excelize/v2"
)

type ImportMode string

const (
	ImportInsert  ImportMode = "insert"
	ImportUpsert  ImportMode = "upsert"
	ImportReplace ImportMode = "replace"
)

func ParseImportMode(s string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ImportInsert, ImportUpsert, ImportReplace:
		return m, nil
	}
	return "", domain.NewValidationError("mode", "must be one of insert, upsert, replace - got %q", s)
}

var inventoryColumns = []string{"id", "type", "status", "location"}

type importService struct {
	inventory InventoryService
}

func NewImportService(inventory InventoryService) ImportService {
	return &importService{inventory: inventory}
}

func (s *importService) ImportInventory(ctx context.Context, r io.Reader, mode ImportMode) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, domain.NewValidationError("file", "not a readable xlsx workbook: %v", err)
	}
	defer f.Close()

	devices, err := readDevices(f)
	if err != nil {
		return 0, err
	}

	switch mode {
	case ImportInsert:
		err = s.inventory.Insert(ctx, devices)
	case ImportUpsert:
		err = s.inventory.Upsert(ctx, devices)
	case ImportReplace:
		err = s.inventory.ReplaceAll(ctx, devices)
	default:
		_, err = ParseImportMode(string(mode))
	}
	if err != nil {
		return 0, err
	}

	logger.InfoContext(ctx, "Imported inventory", "mode", mode, "devices", len(devices))
	return len(devices), nil
}

// readDevices scans every sheet for a header row naming the inventory columns
// and parses the rows below it. Blank rows are skipped.
func readDevices(f *excelize.File) ([]domain.Device, error) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		for rIdx, row := range rows {
			idx, ok := headerIndex(row)
			if !ok {
				continue
			}
			devices := []domain.Device{}
			for _, data := range rows[rIdx+1:] {
				cell := func(col string) string {
					i := idx[col]
					if i >= len(data) {
						return ""
					}
					return strings.TrimSpace(data[i])
				}
				if cell("id") == "" && cell("type") == "" {
					continue
				}
				devices = append(devices, domain.Device{
					ID:       cell("id"),
					Type:     domain.DeviceType(cell("type")),
					Status:   domain.DeviceStatus(cell("status")),
					Location: domain.Location(strings.ToUpper(cell("location"))),
				})
			}
			return devices, nil
		}
	}
	return nil, domain.NewValidationError("file", "no header row with columns %s found", strings.Join(inventoryColumns, ", "))
}

func headerIndex(row []string) (map[string]int, bool) {
	idx := make(map[string]int, len(inventoryColumns))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, col := range inventoryColumns {
			if name == col {
				idx[col] = i
			}
		}
	}
	if len(idx) != len(inventoryColumns) {
		return nil, false
	}
	return idx, true
}

// WriteInventoryTemplate writes the current inventory in the import layout.
func WriteInventoryTemplate(devices []domain.Device, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	headers := make([]interface{}, len(inventoryColumns))
	for i, c := range inventoryColumns {
		headers[i] = c
	}
	rows := make([][]interface{}, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []interface{}{d.ID, string(d.Type), string(d.Status), string(d.Location)})
	}
	if err := writeSheet(f, sheet, headers, rows); err != nil {
		return fmt.Errorf("write inventory sheet: %w", err)
	}
	return f.Write(w)
}
