package main

import (
	"strconv"
	"strings"

	"tonearm/internal/importer"
)

func renderSummary(summary importer.Summary) string {
	var b strings.Builder

	b.WriteString(renderTable(
		[]string{"Applied", "Skipped", "Failed", "File errors"},
		[][]string{{
			strconv.Itoa(summary.Applied),
			strconv.Itoa(summary.Skipped),
			strconv.Itoa(summary.Failed),
			strconv.Itoa(len(summary.FileFailures)),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))

	if len(summary.FailedTasks) > 0 {
		rows := make([][]string, 0, len(summary.FailedTasks))
		for _, failure := range summary.FailedTasks {
			detail := ""
			if failure.Err != nil {
				detail = failure.Err.Error()
			}
			rows = append(rows, []string{failure.Description, failure.Category, detail})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(
			[]string{"Failed task", "Category", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}

	if len(summary.FileFailures) > 0 {
		rows := make([][]string, 0, len(summary.FileFailures))
		for _, failure := range summary.FileFailures {
			detail := ""
			if failure.Err != nil {
				detail = failure.Err.Error()
			}
			rows = append(rows, []string{failure.Path, failure.Category, detail})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(
			[]string{"Unreadable file", "Category", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}

	return b.String()
}
