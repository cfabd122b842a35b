package reports

import (
	"context"

	"github.com/bulwark-sec/bulwark/internal/report"
)

type reportFetcher interface {
	GetReportByID(ctx context.Context, id string) (*report.StaticAnalysisReport, error)
}

// openReport shows the report with the given id, fetching it only when the viewer has not opened it yet.
func openReport(ctx context.Context, fetcher reportFetcher, viewer *report.Viewer, id string) (report.Report, error) {
	if r, ok := viewer.Show(id); ok {
		logger.Debug("report already opened", "id", id)
		return r, nil
	}
	fetched, err := fetcher.GetReportByID(ctx, id)
	if err != nil {
		return report.Report{}, err
	}
	if err := viewer.Open(report.NewStaticAnalysis(fetched)); err != nil {
		return report.Report{}, err
	}
	opened, _ := viewer.Current()
	return opened, nil
}
