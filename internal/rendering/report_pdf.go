package rendering

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// DefaultPDFTimeout bounds one headless Chrome print.
const DefaultPDFTimeout = 60 * time.Second

// PDFReportRenderer prints the HTML report to Skill_Report_<Title>.pdf with headless Chrome.
type PDFReportRenderer struct {
	// ChromePath overrides the browser binary, defaulting to CHROME_PATH.
	ChromePath string
	Timeout    time.Duration
}

// RenderReport implements ReportRenderer
func (r PDFReportRenderer) RenderReport(ctx context.Context, roleTitle string, report *types.SkillGapReport, dir string) (string, error) {
	if report == nil {
		return "", &RenderError{Message: "no gap report to render"}
	}
	html, err := RenderReportHTML(roleTitle, report)
	if err != nil {
		return "", err
	}
	pdf, err := r.print(ctx, html)
	if err != nil {
		return "", &RenderError{Message: "failed to print report", Cause: err}
	}
	return writeArtifact(dir, ReportFileName(roleTitle, ".pdf"), pdf)
}

func (r PDFReportRenderer) print(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	chromePath := r.ChromePath
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	tmpDir, err := os.MkdirTemp("", "skill-report-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "report.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, err
	}

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
