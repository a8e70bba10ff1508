package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// stdinConfirmer は端末で y/N を尋ねる Confirmer です。
type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinConfirmer(in io.Reader, out io.Writer) *stdinConfirmer {
	return &stdinConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *stdinConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", color.YellowString(message))

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("確認の入力を読み取れませんでした: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// colorNotifier は警告を色付きで表示する Notifier です。
type colorNotifier struct {
	out io.Writer
}

func (n colorNotifier) Notify(ctx context.Context, message string) {
	fmt.Fprintln(n.out, color.New(color.FgYellow, color.Bold).Sprint("⚠ "+message))
}
