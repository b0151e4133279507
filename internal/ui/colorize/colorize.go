// Package colorize applies terminal syntax highlighting to assembly operand
// text.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Disabled reports whether colouring is turned off through OBJBROWSE_NO_COLOR.
func Disabled() bool {
	return os.Getenv("OBJBROWSE_NO_COLOR") != ""
}

// getAssemblyLexer returns the first available assembly lexer.
func getAssemblyLexer() chroma.Lexer {
	for _, name := range []string{"gas", "nasm", "armasm"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getOperandStyle() *chroma.Style {
	for _, name := range []string{"objbrowse-operands", "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Operands colours a run of literal operand text. On any failure, or when
// colouring is disabled, text is returned unchanged.
func Operands(text string) string {
	if Disabled() || strings.TrimSpace(text) == "" {
		return text
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return text
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getOperandStyle(), iterator); err != nil {
		return text
	}

	// Lexers terminate their input with a newline.
	out := buf.String()
	if !strings.HasSuffix(text, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}
