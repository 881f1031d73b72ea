package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
)

type csvWriter struct{}

func (csvWriter) ext() string { return FormatCSV }

func (csvWriter) write(path string, table Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Columns); err != nil {
		file.Close()
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, cell := range row {
			record[j] = FormatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Close()
}
