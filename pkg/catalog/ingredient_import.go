package catalog

import (
	"Foodgram-Backend/domain"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ReadIngredientsCSV parses rows of name,measurement_unit. A header row is
// skipped when present; blank names are ignored.
func ReadIngredientsCSV(r io.Reader) ([]domain.IngredientImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []domain.IngredientImportRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line)
		}
		if len(record) < 2 {
			return nil, errors.Errorf("line %d: expected name,measurement_unit", line)
		}

		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if line == 1 && strings.EqualFold(name, "name") {
			continue
		}
		if name == "" {
			continue
		}
		if len([]rune(name)) > domain.MaxLengthIngredientName || len([]rune(unit)) > domain.MaxLengthMeasurementUnit {
			return nil, errors.Errorf("line %d: value too long", line)
		}
		rows = append(rows, domain.IngredientImportRow{Name: name, MeasurementUnit: unit})
	}
	return rows, nil
}
