package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var SigilLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments: line, block, and the rest-of-file marker
		{"Comment", `//[^\n]*|(?s:/\*.*?\*/)`, nil},
		{"EndMarker", `__END__(?s:.*)`, nil},

		// Number literals allow underscore separators between digit runs
		{"Float", `\d+(_\d+)*\.\d+(_\d+)*`, nil},
		{"Int", `\d+(_\d+)*`, nil},

		// Variables lex as one token so `$` never glues onto a keyword
		{"Variable", `\$[a-zA-Z_][a-zA-Z0-9_]*|\$`, nil},

		// Identifiers (keywords like rule/do/not/is are matched by text)
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Operators (multi-character forms must come first)
		{"Operator", `==|!=|<=|>=|-\?|[<>+\-*/|@]`, nil},

		// Punctuation
		{"Punct", `[{}\[\]().,:]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
