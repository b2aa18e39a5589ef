package reporting

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"voice-agent-console/internal/calls"
)

const exportSheet = "Calls"

var exportHeader = []any{
	"Session ID", "Stored At", "From", "To", "Direction", "Successful",
	"Duration", "Duration (ms)", "Transcript Length", "Quality", "Success Score",
	"Engagement", "Sentiment", "Topics", "Action Items", "Follow Up",
	"Disconnection Reason", "Recommendations", "Summary",
}

// ExportXLSX renders one row per entry into a workbook.
func ExportXLSX(entries []calls.LogEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		a := e.Analysis
		row := []any{
			e.SessionID,
			e.StoredAt.UTC().Format(time.RFC3339),
			e.Event.FromPhoneNumber,
			e.Event.ToPhoneNumber,
			e.Event.Direction,
			e.Event.IsSuccessful,
			e.Processed.DurationFormatted,
			e.Processed.DurationMs,
			e.Processed.TranscriptLength,
			string(e.Processed.CallQuality),
			a.SuccessMetrics.SuccessScore,
			string(a.SuccessMetrics.EngagementLevel),
			string(a.Insights.Sentiment),
			strings.Join(a.Insights.KeyTopics, ", "),
			strings.Join(a.Insights.ActionItems, ", "),
			a.Insights.FollowUpRequired,
			e.Event.DisconnectionReason,
			strings.Join(a.Recommendations, "\n"),
			e.Event.SummaryText(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
