// Package console provides the line based terminal the player talks through.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
)

// Console reads answers line by line and writes styled text.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	banner  lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
}

// New creates a console over in and out. Colors are only emitted when out is a terminal.
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
		banner: r.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#FF5500", Dark: "#FF7700"}).
			Padding(0, 1),
		heading: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}),
		muted: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"}),
	}
}

// Prompt writes message and reads one line without its line ending.
// io.EOF is returned once input is exhausted, and the context error once ctx is done.
func (c *Console) Prompt(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(c.out, message)
	line, err := c.in.ReadString('\n')
	// A line typed after cancellation is dropped rather than dispatched.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read input")
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Println writes its operands followed by a newline.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted text.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Banner writes lines inside a bordered box.
func (c *Console) Banner(lines ...string) {
	fmt.Fprintln(c.out, c.banner.Render(strings.Join(lines, "\n")))
}

// List writes a bold heading followed by one item per line, or the empty text when there are no items.
func (c *Console) List(heading string, items []string, empty string) {
	fmt.Fprintln(c.out, c.heading.Render(heading))
	if len(items) == 0 {
		fmt.Fprintln(c.out, c.muted.Render(empty))
		return
	}
	for _, item := range items {
		fmt.Fprintln(c.out, item)
	}
}
