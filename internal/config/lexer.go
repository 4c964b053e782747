package config

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// PipelineLexer tokenizes the pipeline configuration DSL. It follows the
// same stateful-rules shape the rest of this codebase's grammars use:
// comments and whitespace are recognized so they can be elided, then
// identifiers, booleans-as-identifiers and punctuation.
var PipelineLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Punctuation", `[{},]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
