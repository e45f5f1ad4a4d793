// Package program parses free-form instruction text such as "F,L,F R" or
// "2F, L, 3F" into raw instruction symbols.
//
// Unknown symbols are kept verbatim; deciding whether a symbol is a valid
// instruction is left to the engine so it can report the complete list.
package program

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// MaxRepeat is the largest repeat count accepted on a single token.
const MaxRepeat = 100

// ErrSyntax is returned for text that cannot be tokenised into instructions.
var ErrSyntax = errors.New("instruction program syntax error")

// Sequence is the parsed form of an instruction program.
type Sequence struct {
	Tokens []*Token `parser:"( @@ ( ','? @@ )* )?"`
}

// Token is a single instruction symbol with an optional repeat count.
type Token struct {
	Pos    lexer.Position
	Count  *int   `parser:"@Count?"`
	Symbol string `parser:"@Symbol"`
}

var programLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Count", Pattern: `[0-9]+`},
	{Name: "Symbol", Pattern: `[^,\s0-9]+`},
	{Name: "Punct", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Sequence](
	participle.Lexer(programLexer),
	participle.Elide("Whitespace"),
)

// Parse turns program text into raw symbols, expanding repeat counts.
func Parse(text string) ([]string, error) {
	seq, err := parser.ParseString("program", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	var symbols []string
	for _, tok := range seq.Tokens {
		n := 1
		if tok.Count != nil {
			n = *tok.Count
			if n < 1 || n > MaxRepeat {
				return nil, fmt.Errorf("%w: %s: repeat count %d out of range 1..%d", ErrSyntax, tok.Pos, n, MaxRepeat)
			}
		}
		for i := 0; i < n; i++ {
			symbols = append(symbols, tok.Symbol)
		}
	}
	return symbols, nil
}

// Format renders symbols in the canonical comma-separated form.
func Format(symbols []string) string {
	return strings.Join(symbols, ",")
}
