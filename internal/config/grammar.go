package config

import "github.com/alecthomas/participle/v2/lexer"

// The grammar below mirrors a "pipeline { ... }" block:
//
//	pipeline {
//	    enabled_properties { HasSourceBlocks, NoInitClassInstructions }
//	    initial_properties { HasSourceBlocks }
//	    final_properties   { NoInitClassInstructions }
//	    testing_mode false
//	    pass dedup_blocks
//	}
//
// Property name lists and pass declarations may repeat or be omitted;
// fromDocument in config.go is responsible for rejecting a second
// enabled_properties block etc.

type PosIdent struct {
	Pos   lexer.Position
	Value string `@Ident`
}

type Document struct {
	Pos      lexer.Position
	Pipeline *Pipeline `"pipeline" "{" @@ "}"`
}

type Pipeline struct {
	Pos   lexer.Position
	Items []*Item `@@*`
}

type Item struct {
	Pos        lexer.Position
	Enabled    *NameList `  "enabled_properties" "{" @@ "}"`
	Initial    *NameList `| "initial_properties" "{" @@ "}"`
	Final      *NameList `| "final_properties" "{" @@ "}"`
	TestingRaw *PosIdent `| "testing_mode" @@`
	Pass       *PosIdent `| "pass" @@`
}

type NameList struct {
	Pos   lexer.Position
	Names []PosIdent `[ @@ { "," @@ } ]`
}
