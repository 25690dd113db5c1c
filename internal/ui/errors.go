package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pwtp/internal/domain"
	"pwtp/internal/storage"
)

// FailureViewer displays failed test results in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

// View displays the run's failures in an interactive TUI. Resolved marks
// are written back to the results file as they are toggled.
func (fv *FailureViewer) View(output *domain.RunOutput) error {
	// Map viewer rows to result indices; only failures are listed.
	var failed []int
	for i, r := range output.Results {
		if !r.Passed {
			failed = append(failed, i)
		}
	}
	if len(failed) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	showFull := false

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(row int) string {
		result := output.Results[failed[row]]
		title := result.Test.Title
		if title == "" {
			title = fmt.Sprintf("Test %d", row+1)
		}
		if result.Resolved {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", row+1, title)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", row+1, title)
	}

	for row := range failed {
		list.AddItem(getListItemText(row), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	countUnresolved := func() int {
		count := 0
		for _, i := range failed {
			if !output.Results[i].Resolved {
				count++
			}
		}
		return count
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] resolve, [yellow]F[white] full error, → details, ← back, Ctrl+C exit ",
			len(failed), countUnresolved()))
	}
	updateHeader()

	updateDetails := func() {
		row := list.GetCurrentItem()
		if row < 0 || row >= len(failed) {
			return
		}
		result := output.Results[failed[row]]
		statsView.SetText(fv.formatStats(result, output, row+1))
		detailsView.SetText(fv.formatDetails(result, showFull))
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r', 'R':
				row := list.GetCurrentItem()
				if row >= 0 && row < len(failed) {
					i := failed[row]
					output.Results[i].Resolved = !output.Results[i].Resolved
					list.SetItemText(row, getListItemText(row), "")
					updateHeader()
					updateDetails()
					// Persistence failures must not break navigation.
					_ = fv.storage.SaveOutput(output)
				}
				return nil
			case 'f', 'F':
				showFull = !showFull
				updateDetails()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// formatDetails formats a failed result for the details pane using tview
// color tags. showFull switches between the trimmed excerpt and the
// untruncated runner error.
func (fv *FailureViewer) formatDetails(result domain.TestResult, showFull bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", result.Test.Title)

	if showFull {
		fmt.Fprintf(&b, "[yellow]Full error:[white]\n%s\n\n", result.FullError)
	} else if result.Error != "" {
		fmt.Fprintf(&b, "[yellow]Error:[white]\n%s\n\n", result.Error)
	}

	if result.Test.Input != nil {
		fmt.Fprintf(&b, "[yellow]Input:[white]\n%v\n\n", result.Test.Input)
	}
	if result.Test.ExpectedResult != nil {
		fmt.Fprintf(&b, "[yellow]Expected:[white]\n%v\n\n", result.Test.ExpectedResult)
	}

	if cov := result.Coverage; cov != nil {
		if trace, ok := cov.TestTraces[result.Test.Title]; ok {
			fv.writeTrace(&b, trace)
		}
		if len(cov.InferredBackendFiles) > 0 {
			fmt.Fprintf(&b, "[yellow]Possible backend files:[white]\n")
			for _, file := range cov.InferredBackendFiles {
				fmt.Fprintf(&b, "  %s\n", file)
			}
		}
	}

	return b.String()
}

// writeTrace appends the per-test network and console activity.
func (fv *FailureViewer) writeTrace(b *strings.Builder, trace domain.TestTrace) {
	if len(trace.APIRequests) > 0 {
		fmt.Fprintf(b, "[yellow]API requests:[white]\n")
		for _, req := range trace.APIRequests {
			fmt.Fprintf(b, "  %s %s → %d\n", req.Method, req.URL, req.Status)
		}
		fmt.Fprintf(b, "\n")
	}
	if len(trace.ConsoleLogs) > 0 {
		fmt.Fprintf(b, "[yellow]Console:[white]\n")
		for i, line := range trace.ConsoleLogs {
			if i >= 10 {
				fmt.Fprintf(b, "  [gray]... and %d more lines[white]\n", len(trace.ConsoleLogs)-10)
				break
			}
			fmt.Fprintf(b, "  %s\n", line)
		}
		fmt.Fprintf(b, "\n")
	}
}

// formatStats formats the stats header line for a failed result.
func (fv *FailureViewer) formatStats(result domain.TestResult, output *domain.RunOutput, number int) string {
	spec := output.Meta.SpecFile
	if spec == "" {
		spec = "Unknown spec"
	}
	title := result.Test.Title
	if title == "" {
		title = fmt.Sprintf("Test %d", number)
	}
	return fmt.Sprintf("[cyan]spec:[white] [yellow]%s[white]::[yellow]%s[white]\n", spec, title)
}
