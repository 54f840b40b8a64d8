// Package export builds spreadsheet exports of student lists.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/svpddu/studentrecords/internal/app/models"
)

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Students"

var headers = []string{
	"Serial No", "Name", "Class", "Admission Year", "Date of Birth", "Caste", "Mobile No",
	"Father / Guardian", "Address", "Village", "Block", "District", "State", "Verified", "Graduated",
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteStudents writes one row per student into an XLSX workbook on w
func WriteStudents(w io.Writer, students []*models.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, s := range students {
		father := ""
		if g := s.Father(); g != nil {
			father = g.Name
		}
		values := []interface{}{
			s.SerialNumber, s.Name, s.Class, s.AdmissionYear, s.DOB, s.Caste, s.MobileNo,
			father, s.Address, s.Village, s.Block, s.District, s.State,
			yesNo(s.IsVerified), yesNo(s.IsGraduated),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 22); err != nil {
		return err
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename names an export, scoped to a class when one is given
func Filename(class string, now time.Time) string {
	if class == "" {
		return fmt.Sprintf("students_%s.xlsx", now.Format("20060102"))
	}
	return fmt.Sprintf("students_class_%s_%s.xlsx", class, now.Format("20060102"))
}
