// Package export renders reports to spreadsheet files for analysts who
// work outside the API.
package export

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/intel-cli/internal/model"
)

// WriteXLSX writes the report as a workbook with one sheet per section
// plus a summary sheet.
func WriteXLSX(report *model.Report, path string) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, report); err != nil {
		return err
	}
	if err := addLeadershipSheet(f, report); err != nil {
		return err
	}
	if err := addCompetitorSheet(f, report); err != nil {
		return err
	}
	if err := addRegulatorySheet(f, report); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func addSummarySheet(f *xlsx.File, report *model.Report) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addRow(sheet, "Company", report.Company)
	addRow(sheet, "Competitors", strings.Join(report.Competitors, ", "))
	addRow(sheet, "Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	addRow(sheet, "Report ID", report.ID)
	addRow(sheet)
	addRow(sheet, "Leadership", string(report.LeadershipState))
	addRow(sheet, "Competitor mentions", string(report.CompetitorState))
	addRow(sheet, "Regulatory", string(report.RegulatoryState))
	addRow(sheet)
	addRow(sheet, "Search queries", strconv.Itoa(report.Cost.SearchQueries))
	addRow(sheet, "LLM calls", strconv.Itoa(report.Cost.LLMCalls))
	addRow(sheet, "URLs verified", strconv.Itoa(report.Cost.URLsVerified))
	addRow(sheet, "Estimated cost (USD)", strconv.FormatFloat(report.Cost.TotalUSD, 'f', 4, 64))

	if len(report.Warnings) > 0 {
		addRow(sheet)
		addRow(sheet, "Warnings")
		for _, w := range report.Warnings {
			addRow(sheet, "", w)
		}
	}
	return nil
}

func addLeadershipSheet(f *xlsx.File, report *model.Report) error {
	sheet, err := f.AddSheet("Leadership")
	if err != nil {
		return eris.Wrap(err, "export: add leadership sheet")
	}

	addRow(sheet, "Name", "Role", "Change", "Date", "Source", "URL")
	for _, c := range report.Leadership {
		addRow(sheet, c.Name, c.Role, string(c.ChangeType), c.Date, c.Source, c.URL)
	}
	return nil
}

func addCompetitorSheet(f *xlsx.File, report *model.Report) error {
	sheet, err := f.AddSheet("Competitor Mentions")
	if err != nil {
		return eris.Wrap(err, "export: add competitor sheet")
	}

	addRow(sheet, "Competitor", "Type", "Title", "Confidence", "Unverified", "URL")
	for _, m := range report.CompetitorMention {
		addRow(sheet, m.CompetitorName, string(m.MentionType), m.Title,
			strconv.Itoa(m.Confidence), strconv.FormatBool(m.Unverified), m.URL)
	}
	return nil
}

func addRegulatorySheet(f *xlsx.File, report *model.Report) error {
	sheet, err := f.AddSheet("Regulatory Events")
	if err != nil {
		return eris.Wrap(err, "export: add regulatory sheet")
	}

	addRow(sheet, "Date", "Body", "Type", "Amount", "Description", "URL", "Corroborating")
	for _, ev := range report.Regulatory {
		extra := make([]string, len(ev.Sources))
		for i, s := range ev.Sources {
			extra[i] = s.URL
		}
		addRow(sheet, ev.Date, ev.RegulatoryBody, string(ev.EventType),
			ev.Amount, ev.Description, ev.URL, strings.Join(extra, " "))
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
