package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// askOneFunc is swapped out in tests.
var askOneFunc = survey.AskOne

// lineReader reuses in when it is already buffered so that consecutive
// prompts do not lose read-ahead input.
func lineReader(in io.Reader) *bufio.Reader {
	if br, ok := in.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(in)
}

// PromptChoices prints a numbered list and reads a comma-separated answer.
// The extra last number selects everything.
func PromptChoices(p *Printer, in io.Reader, choices []Choice) []string {
	p.Blank()
	p.Info("Select what to clean (comma-separated numbers). Nothing is deleted without confirmation.")
	p.Blank()
	for i, c := range choices {
		p.Plain(fmt.Sprintf("  %d) %s", i+1, c.Label))
	}
	p.Plain(fmt.Sprintf("  %d) Everything above", len(choices)+1))
	fmt.Fprint(p.Writer(), "\nYour choice: ")

	line, _ := lineReader(in).ReadString('\n')
	keys := make([]string, len(choices))
	for i, c := range choices {
		keys[i] = c.Key
	}
	return ParseChoice(line, keys)
}

// ParseChoice maps a comma-separated list of 1-based numbers onto keys.
// len(keys)+1 alone means all keys. Out-of-range or non-numeric parts are
// ignored.
func ParseChoice(input string, keys []string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if input == strconv.Itoa(len(keys)+1) {
		return append([]string(nil), keys...)
	}

	var out []string
	for _, part := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(keys) {
			continue
		}
		out = append(out, keys[n-1])
	}
	return out
}

// Confirm asks a yes/no question defaulting to no. On a terminal it uses a
// survey prompt; otherwise it reads one line and accepts only "y".
func Confirm(p *Printer, in io.Reader, message string, interactive bool) (bool, error) {
	if interactive {
		ok := false
		if err := askOneFunc(&survey.Confirm{Message: message, Default: false}, &ok); err != nil {
			return false, err
		}
		return ok, nil
	}

	fmt.Fprintf(p.Writer(), "%s [y/N]: ", message)
	line, _ := lineReader(in).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}
