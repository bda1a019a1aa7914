package service

import (
	"bytes"
	"fmt"

	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const storeReportSheet = "Stores"

var storeReportHeaders = []string{"ID", "Name", "Email", "Address", "Owner", "Owner Email", "Average Rating", "Rating Count"}

type ReportService interface {
	ExportStores(q StoreQuery) (*bytes.Buffer, error)
}

type reportService struct {
	admin AdminService
}

func NewReportService(admin AdminService) ReportService {
	return &reportService{admin: admin}
}

// ExportStores renders the admin store list, with the same filters and
// sort, as an XLSX workbook. Stores without ratings get an empty average cell.
func (s *reportService) ExportStores(q StoreQuery) (*bytes.Buffer, error) {
	stores, err := s.admin.ListStores(q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", storeReportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(storeReportSheet, "A1", &storeReportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, st := range stores {
		row := []interface{}{st.ID, st.Name, st.Email, st.Address, "", "", "", st.RatingCount}
		if st.Owner != nil {
			row[4] = st.Owner.Name
			row[5] = st.Owner.Email
		}
		if st.AverageRating != nil {
			row[6] = *st.AverageRating
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(storeReportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	logger.Info("Store report exported", map[string]interface{}{
		"rows": len(stores),
	})
	return buf, nil
}
