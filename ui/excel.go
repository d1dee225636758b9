package ui

import (
	"net/http"

	"github.com/xuri/excelize/v2"

	"courtflow/models"
)

// buildDiaryWorkbook writes diary entries into a single-sheet workbook.
func buildDiaryWorkbook(entries []*models.DiaryEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"Timestamp", "Action", "Actor", "Details"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, entry := range entries {
		rowIdx := r + 2
		values := []interface{}{
			entry.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			string(entry.Action),
			entry.ActorID.String(),
			formatDetails(entry.Details),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// handleDiaryExport streams the case diary as an xlsx download for registry
// archival.
func (a *App) handleDiaryExport(w http.ResponseWriter, r *http.Request) {
	caseID, ok := parseIDParam(w, r, "caseID")
	if !ok {
		return
	}

	entries, err := a.diary.ListEntries(r.Context(), caseID, diaryPageLimit)
	if err != nil {
		a.logger.Error("list diary for case %s: %v", caseID, err)
		http.Error(w, "failed to load diary", http.StatusInternalServerError)
		return
	}

	f, err := buildDiaryWorkbook(entries)
	if err != nil {
		a.logger.Error("build diary workbook for case %s: %v", caseID, err)
		http.Error(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="case-diary-`+caseID.String()+`.xlsx"`)
	if err := f.Write(w); err != nil {
		a.logger.Error("write diary workbook for case %s: %v", caseID, err)
	}
}
