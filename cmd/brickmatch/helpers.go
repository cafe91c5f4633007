package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"brickmatch/internal/runner"
)

// progressPrinter renders a live progress bar while a run is active. It is a
// no-op when stdout is not a terminal so piped output stays clean.
type progressPrinter struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return &progressPrinter{}
	}
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = true
	go pw.Render()
	return &progressPrinter{writer: pw}
}

func (p *progressPrinter) update(snapshot runner.Progress) {
	if p.writer == nil {
		return
	}
	if p.tracker == nil {
		p.tracker = &progress.Tracker{
			Message: "Resolving records",
			Total:   int64(snapshot.Total),
			Units:   progress.UnitsDefault,
		}
		p.writer.AppendTracker(p.tracker)
	}
	p.tracker.SetValue(int64(snapshot.Processed))
	p.tracker.UpdateMessage(fmt.Sprintf("Resolving %s (%d found)", snapshot.Current, snapshot.Found))
}

func (p *progressPrinter) stop() {
	if p.writer == nil {
		return
	}
	if p.tracker != nil {
		p.tracker.MarkAsDone()
	}
	p.writer.Stop()
	for p.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

func renderReport(out io.Writer, report *runner.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Run", report.RunID})
	t.AppendRows([]table.Row{
		{"Processed", report.Processed},
		{"Found", report.Found},
		{"Not found", report.NotFound},
		{"Ambiguous", report.Multiple},
		{"Errors", report.Errors},
		{"Duration", report.Duration.Round(time.Millisecond)},
	})
	if report.Interrupted {
		t.AppendRow(table.Row{"Interrupted", fmt.Sprintf("resume with --resume-from %d", report.LastCatalogID)})
	}
	t.Render()
}
