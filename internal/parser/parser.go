// Package parser maps source file extensions to the tree-sitter grammars used
// to parse them.
package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Language represents a supported source language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
)

// FileExtensions maps each language to its recognized file extensions.
var FileExtensions = map[Language][]string{
	LangTypeScript: {".ts"},
	LangJavaScript: {".js"},
}

// Grammar describes how files of one language are parsed.
type Grammar struct {
	Language Language
	// Extensions returns the file extensions this grammar handles.
	Extensions []string
	// Tree returns the tree-sitter language used for parsing.
	Tree func() *sitter.Language
}

// TSX is used for both languages: route files may carry type annotations or
// embedded JSX regardless of their extension.
func tsxLanguage() *sitter.Language {
	return tsx.GetLanguage()
}

// DefaultGrammars returns the grammars registered by NewDefaultRegistry.
func DefaultGrammars() []Grammar {
	return []Grammar{
		{Language: LangJavaScript, Extensions: FileExtensions[LangJavaScript], Tree: tsxLanguage},
		{Language: LangTypeScript, Extensions: FileExtensions[LangTypeScript], Tree: tsxLanguage},
	}
}
