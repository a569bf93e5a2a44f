package parser

import "github.com/lumen-lang/lumen/ast"

// TokenType enumerates lexical categories recognised by the Lumen lexer.
type TokenType int

const (
	tokenEOF TokenType = iota

	tokenIdentifier
	tokenNumber
	tokenString

	// Keywords
	tokenLet
	tokenConst
	tokenMut
	tokenFunc
	tokenRet
	tokenIf
	tokenElse
	tokenFor
	tokenIn

	// Operators and punctuation
	tokenAssign     // =
	tokenEqualEqual // ==
	tokenBangEqual  // !=
	tokenPlus       // +
	tokenMinus      // -
	tokenStar       // *
	tokenSlash      // /
	tokenPercent    // %
	tokenLess       // <
	tokenGreater    // >

	tokenComma     // ,
	tokenSemicolon // ;
	tokenColon     // :
	tokenDot       // . or ::
	tokenLParen    // (
	tokenRParen    // )
	tokenLBrace    // {
	tokenRBrace    // }
	tokenLBracket  // [
	tokenRBracket  // ]
)

func (tt TokenType) String() string {
	switch tt {
	case tokenEOF:
		return "EOF"
	case tokenIdentifier:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenLet:
		return "let"
	case tokenConst:
		return "const"
	case tokenMut:
		return "mut"
	case tokenFunc:
		return "func"
	case tokenRet:
		return "ret"
	case tokenIf:
		return "if"
	case tokenElse:
		return "else"
	case tokenFor:
		return "for"
	case tokenIn:
		return "in"
	case tokenAssign:
		return "="
	case tokenEqualEqual:
		return "=="
	case tokenBangEqual:
		return "!="
	case tokenPlus:
		return "+"
	case tokenMinus:
		return "-"
	case tokenStar:
		return "*"
	case tokenSlash:
		return "/"
	case tokenPercent:
		return "%"
	case tokenLess:
		return "<"
	case tokenGreater:
		return ">"
	case tokenComma:
		return ","
	case tokenSemicolon:
		return ";"
	case tokenColon:
		return ":"
	case tokenDot:
		return "."
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	case tokenLBrace:
		return "{"
	case tokenRBrace:
		return "}"
	case tokenLBracket:
		return "["
	case tokenRBracket:
		return "]"
	default:
		return "unknown"
	}
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type   TokenType
	Lexeme string // identifier name, number digits or decoded string contents
	Pos    ast.Position
}
