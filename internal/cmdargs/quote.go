package cmdargs

import (
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// Quote shell-escapes one argument. Arguments without special characters are
// returned unchanged.
func Quote(value string) string {
	if value == "" {
		return "''"
	}
	return shellquote.Join(value)
}

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

// QuoteDouble wraps value in double quotes, escaping characters the shell
// would otherwise interpret.
func QuoteDouble(value string) string {
	return `"` + doubleQuoteEscaper.Replace(value) + `"`
}

// Split tokenizes an argument string produced by Join back into argv.
func Split(line string) ([]string, error) {
	return shellquote.Split(line)
}
