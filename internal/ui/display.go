package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"eda-client/internal/backend"
	"eda-client/internal/history"
	"eda-client/internal/interpreter"
)

// Options controls how answers are rendered
type Options struct {
	Markdown bool
	Charts   bool
	Width    int // zero detects the terminal width
}

// Display renders answers, charts and notices to a terminal
type Display struct {
	out      io.Writer
	width    int
	opts     Options
	renderer *glamour.TermRenderer

	spinnerMu   sync.Mutex
	spinnerStop chan struct{}
	spinnerDone sync.WaitGroup
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer, opts Options) *Display {
	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}

	d := &Display{
		out:   out,
		width: width,
		opts:  opts,
	}

	if opts.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-4),
		)
		if err == nil {
			d.renderer = renderer
		}
	}

	return d
}

// Color codes
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorYel   = "\033[33m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

// ClearScreen clears the terminal
func (d *Display) ClearScreen() {
	fmt.Fprint(d.out, "\033[2J\033[H")
}

// PrintWelcome displays the banner and the commands
func (d *Display) PrintWelcome(backendURL string) {
	fmt.Fprintf(d.out, "%s%sEDA CSV · perguntas sobre seus dados%s\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(d.out, "%sBackend:%s %s\n", colorGray, colorReset, backendURL)
	d.PrintHelp()
}

// PrintHelp lists the REPL commands
func (d *Display) PrintHelp() {
	fmt.Fprintf(d.out, "%sCommands:%s /upload <arquivo.csv> | /history | /current | /export <arquivo.json> | /clear | /exit\n", colorGray, colorReset)
	fmt.Fprintf(d.out, "%sAnything else is sent as a question.%s\n\n", colorGray, colorReset)
}

// PrintPrompt displays the input prompt with the current file
func (d *Display) PrintPrompt(filename string) {
	if filename != "" {
		fmt.Fprintf(d.out, "\n%s[%s]%s %s%s❯%s ", colorGray, filename, colorReset, colorBold, colorGreen, colorReset)
		return
	}
	fmt.Fprintf(d.out, "\n%s%s❯%s ", colorBold, colorGreen, colorReset)
}

// PrintUploaded confirms a successful upload
func (d *Display) PrintUploaded(filename string) {
	d.PrintSuccess("Arquivo enviado com sucesso!")
	fmt.Fprintf(d.out, "%sArquivo atual:%s %s\n", colorBold, colorReset, filename)
}

// PrintOutcome renders an interpreted answer. Image answers are saved to
// downloadDir and never shown as text.
func (d *Display) PrintOutcome(outcome interpreter.Outcome, downloadDir string) error {
	switch outcome.Kind {
	case interpreter.DownloadOutcome:
		path, err := SaveDownload(outcome.Download, downloadDir)
		if err != nil {
			return err
		}
		d.PrintSuccess(fmt.Sprintf("Gráfico salvo em %s", path))
		return nil
	case interpreter.TextOutcome:
		d.PrintAnswer(outcome.Result)
		return nil
	default:
		return fmt.Errorf("unknown outcome kind %d", outcome.Kind)
	}
}

// PrintAnswer renders the answer text, then the table and chart when the
// answer is tabular
func (d *Display) PrintAnswer(r *interpreter.Result) {
	fmt.Fprintf(d.out, "\n%s┌─ Resposta · %s%s\n", colorGray, time.Now().Format("15:04:05"), colorReset)
	for _, line := range strings.Split(d.renderText(r.DisplayText), "\n") {
		fmt.Fprintf(d.out, "%s│%s %s\n", colorGray, colorReset, line)
	}
	fmt.Fprintf(d.out, "%s└%s\n", colorGray, colorReset)

	if r.Table == nil || len(r.Table.Columns) == 0 {
		return
	}

	d.PrintTable(r.Table)
	if d.opts.Charts && r.Table.Chartable() {
		d.PrintChart(r.Table)
	}
}

// renderText renders markdown when enabled. JSON answers are shown as a
// fenced block so the renderer keeps their layout.
func (d *Display) renderText(text string) string {
	if d.renderer == nil {
		return text
	}

	src := text
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		src = "```json\n" + text + "\n```"
	}

	rendered, err := d.renderer.Render(src)
	if err != nil {
		return text
	}
	return strings.Trim(rendered, "\n")
}

// PrintTable draws tabular data as a grid
func (d *Display) PrintTable(t *interpreter.Table) {
	fmt.Fprintf(d.out, "\n%sDados (%d registros)%s\n", colorBold, t.Len(), colorReset)

	table := tablewriter.NewWriter(d.out)
	table.SetHeader(t.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Text
		}
		table.Append(cells)
	}
	table.Render()
}

// PrintChart plots column 1 over column 0. Fewer than two numeric points
// are not worth a chart.
func (d *Display) PrintChart(t *interpreter.Table) {
	labels, values := t.Series()
	if len(values) < 2 {
		return
	}

	width := d.width - 12
	if width > len(values)*4 {
		width = len(values) * 4
	}
	if width < len(values) {
		width = len(values)
	}

	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s × %s", t.Columns[1], t.Columns[0])),
	)

	fmt.Fprintf(d.out, "\n%sVisualização%s\n", colorBold, colorReset)
	fmt.Fprintln(d.out, graph)
	fmt.Fprintf(d.out, "%s%s: %s … %s%s\n", colorGray, t.Columns[0], labels[0], labels[len(labels)-1], colorReset)
}

// PrintHistory lists every question and answer of the session in order
func (d *Display) PrintHistory(entries []history.Entry) {
	if len(entries) == 0 {
		d.PrintInfo("No questions asked yet")
		return
	}

	d.PrintSeparator()
	fmt.Fprintf(d.out, "%sHistórico de Perguntas/Respostas%s\n", colorBold, colorReset)
	d.PrintSeparator()

	for _, e := range entries {
		fmt.Fprintf(d.out, "\n%s[%s]%s %sP:%s %s\n", colorGray, e.AskedAt.Format("15:04:05"), colorReset, colorBold, colorReset, e.Question)
		fmt.Fprintf(d.out, "%sR:%s %s\n", colorBold, colorReset, e.Answer)
	}

	d.PrintSeparator()
}

// PrintCurrent shows the file the backend has loaded
func (d *Display) PrintCurrent(res *backend.CurrentResponse) {
	if res.CurrentFile == nil {
		msg := res.Message
		if msg == "" {
			msg = "Nenhum arquivo carregado."
		}
		d.PrintInfo(msg)
		return
	}
	fmt.Fprintf(d.out, "%sArquivo atual:%s %s\n", colorBold, colorReset, *res.CurrentFile)
}

// PrintSeparator prints a visual separator
func (d *Display) PrintSeparator() {
	fmt.Fprintf(d.out, "%s%s%s\n", colorDim, strings.Repeat("─", min(d.width, 80)), colorReset)
}

// PrintInfo displays info message
func (d *Display) PrintInfo(msg string) {
	fmt.Fprintf(d.out, "%sℹ %s%s\n", colorCyan, msg, colorReset)
}

// PrintWarning displays warning message
func (d *Display) PrintWarning(msg string) {
	fmt.Fprintf(d.out, "%s⚠ %s%s\n", colorYel, msg, colorReset)
}

// PrintError displays a failed action with the backend's message
func (d *Display) PrintError(action string, err error) {
	fmt.Fprintf(d.out, "%s✗ %s: %v%s\n", colorRed, action, err, colorReset)
}

// PrintSuccess displays success message
func (d *Display) PrintSuccess(msg string) {
	fmt.Fprintf(d.out, "%s✓ %s%s\n", colorGreen, msg, colorReset)
}

// PrintGoodbye displays goodbye message
func (d *Display) PrintGoodbye() {
	fmt.Fprintf(d.out, "\n%sAté logo!%s\n", colorCyan, colorReset)
}

// StartSpinner shows msg with a spinner until StopSpinner is called
func (d *Display) StartSpinner(msg string) {
	d.StopSpinner()

	d.spinnerMu.Lock()
	defer d.spinnerMu.Unlock()

	stop := make(chan struct{})
	d.spinnerStop = stop
	d.spinnerDone.Add(1)

	go func() {
		defer d.spinnerDone.Done()

		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i = (i + 1) % len(frames) {
			fmt.Fprintf(d.out, "\r%s%s %s%s", colorBlue, frames[i], msg, colorReset)
			select {
			case <-stop:
				fmt.Fprint(d.out, "\r\033[2K\r")
				return
			case <-ticker.C:
			}
		}
	}()
}

// StopSpinner stops the active spinner, if any, and waits for it to clear
func (d *Display) StopSpinner() {
	d.spinnerMu.Lock()
	if d.spinnerStop != nil {
		close(d.spinnerStop)
		d.spinnerStop = nil
	}
	d.spinnerMu.Unlock()

	d.spinnerDone.Wait()
}

// SaveDownload writes an image answer into dir, replacing any previous file
// of the same name, and returns its path
func SaveDownload(dl *interpreter.Download, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(dir, dl.Filename)
	if err := os.WriteFile(path, dl.Payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", dl.Filename, err)
	}

	return path, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
