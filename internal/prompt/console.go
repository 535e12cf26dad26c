package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Console prompts with numbered menus over plain streams. It is used when
// stdin is not a terminal.
type Console struct {
	r *bufio.Reader
	w io.Writer
}

// NewConsole returns a Console reading answers from r and writing menus to w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{r: bufio.NewReader(r), w: w}
}

// Select shows a numbered list. An empty answer picks the default.
func (c *Console) Select(ctx context.Context, req SelectRequest) (string, error) {
	if len(req.Options) == 0 {
		return "", fmt.Errorf("%s: no options", req.Title)
	}
	def := defaultIndex(req.Options, req.Default)

	c.header(req.Title, req.Description)
	for i, o := range req.Options {
		marker := ""
		if i == def {
			marker = " (default)"
		}
		fmt.Fprintf(c.w, "  %d) %s%s\n", i+1, o.Label(), marker)
	}

	for {
		fmt.Fprintf(c.w, "Enter number [1-%d]: ", len(req.Options))
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" && def >= 0 {
			return req.Options[def].Value, nil
		}
		num, err := strconv.Atoi(line)
		if err == nil && num >= 1 && num <= len(req.Options) {
			return req.Options[num-1].Value, nil
		}
		fmt.Fprintf(c.w, "invalid selection %q: choose 1-%d\n", line, len(req.Options))
	}
}

// MultiSelect accepts comma- or space-separated numbers. An empty answer
// keeps the defaults and "-" selects nothing. Values are returned in the
// order they were entered.
func (c *Console) MultiSelect(ctx context.Context, req MultiSelectRequest) ([]string, error) {
	c.header(req.Title, req.Description)
	for i, o := range req.Options {
		marker := ""
		if slices.Contains(req.Default, o.Value) {
			marker = " *"
		}
		fmt.Fprintf(c.w, "  %d) %s%s\n", i+1, o.Label(), marker)
	}

	for {
		fmt.Fprintf(c.w, "Enter numbers separated by commas, '-' for none [1-%d]: ", len(req.Options))
		line, err := c.readLine(ctx)
		if err != nil {
			return nil, err
		}
		switch line {
		case "":
			return append([]string(nil), req.Default...), nil
		case "-":
			return []string{}, nil
		}

		picked, err := parseNumbers(line, len(req.Options))
		if err != nil {
			fmt.Fprintln(c.w, err)
			continue
		}
		values := make([]string, 0, len(picked))
		for _, idx := range picked {
			values = append(values, req.Options[idx].Value)
		}
		return values, nil
	}
}

// Text reads one line. Secret input is not masked on plain streams.
func (c *Console) Text(ctx context.Context, req TextRequest) (string, error) {
	c.header(req.Title, req.Description)
	for {
		if req.Default != "" && !req.Secret {
			fmt.Fprintf(c.w, "[%s]: ", req.Default)
		} else {
			fmt.Fprint(c.w, "> ")
		}
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			line = req.Default
		}
		if req.Validate != nil {
			if err := req.Validate(line); err != nil {
				fmt.Fprintln(c.w, err)
				continue
			}
		}
		return line, nil
	}
}

func (c *Console) header(title, desc string) {
	fmt.Fprintf(c.w, "\n%s\n", title)
	if desc != "" {
		fmt.Fprintf(c.w, "%s\n", desc)
	}
}

// readLine returns the trimmed next line. End of input cancels the prompt.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// parseNumbers converts "1, 3 2" into zero-based indexes, dropping repeats.
func parseNumbers(line string, n int) ([]int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	var out []int
	for _, f := range fields {
		num, err := strconv.Atoi(f)
		if err != nil || num < 1 || num > n {
			return nil, fmt.Errorf("invalid selection %q: choose 1-%d", f, n)
		}
		if !slices.Contains(out, num-1) {
			out = append(out, num-1)
		}
	}
	return out, nil
}
