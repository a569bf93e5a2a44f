package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lang"
)

// Tokenize scans src into a token sequence terminated by an EOF token.
// Characters that start no token are dropped. The only failures are an
// unterminated string literal or block comment.
func Tokenize(src string) ([]Token, error) {
	lx := newLexer(src)
	var tokens []Token
	for {
		tok, err := lx.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	src    string
	pos    int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{
		src:    src,
		line:   1,
		column: 1,
	}
}

type runeState struct {
	pos    int
	line   int
	column int
}

func (lx *lexer) mark() runeState {
	return runeState{
		pos:    lx.pos,
		line:   lx.line,
		column: lx.column,
	}
}

func (lx *lexer) restore(state runeState) {
	lx.pos = state.pos
	lx.line = state.line
	lx.column = state.column
}

// readRune returns the next rune and the state before it; ok is false at end
// of input. Invalid UTF-8 decodes as utf8.RuneError and is dropped later.
func (lx *lexer) readRune() (rune, runeState, bool) {
	state := lx.mark()
	if lx.pos >= len(lx.src) {
		return 0, state, false
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r, state, true
}

func (lx *lexer) peekRune() (rune, bool) {
	state := lx.mark()
	r, _, ok := lx.readRune()
	lx.restore(state)
	return r, ok
}

func (lx *lexer) match(expected rune) bool {
	r, state, ok := lx.readRune()
	if !ok {
		return false
	}
	if r != expected {
		lx.restore(state)
		return false
	}
	return true
}

func (lx *lexer) skipWhitespace() error {
	for {
		r, state, ok := lx.readRune()
		if !ok {
			return nil
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/':
			if lx.match('/') {
				lx.skipLine()
				continue
			}
			if lx.match('*') {
				if err := lx.skipBlockComment(state); err != nil {
					return err
				}
				continue
			}
			lx.restore(state)
			return nil
		default:
			lx.restore(state)
			return nil
		}
	}
}

func (lx *lexer) skipLine() {
	for {
		r, _, ok := lx.readRune()
		if !ok || r == '\n' {
			return
		}
	}
}

func (lx *lexer) skipBlockComment(start runeState) error {
	for {
		r, _, ok := lx.readRune()
		if !ok {
			return newIncompleteError(lang.KindLex, positionFromState(start), "unterminated block comment")
		}
		if r == '*' && lx.match('/') {
			return nil
		}
	}
}

func (lx *lexer) nextToken() (Token, error) {
	for {
		if err := lx.skipWhitespace(); err != nil {
			return Token{}, err
		}
		r, start, ok := lx.readRune()
		if !ok {
			return simpleToken(tokenEOF, start), nil
		}
		tok, matched, err := lx.scanToken(r, start)
		if err != nil {
			return Token{}, err
		}
		if matched {
			return tok, nil
		}
	}
}

// scanToken lexes the token starting with r. matched is false for characters
// that begin no token; the caller drops them and keeps scanning.
func (lx *lexer) scanToken(r rune, start runeState) (Token, bool, error) {
	switch {
	case isIdentifierStart(r):
		return makeIdentifierToken(lx.scanIdentifier(r), start), true, nil
	case isDigit(r):
		return Token{
			Type:   tokenNumber,
			Lexeme: lx.scanNumber(r),
			Pos:    positionFromState(start),
		}, true, nil
	case r == '"':
		value, err := lx.scanString(start)
		if err != nil {
			return Token{}, false, err
		}
		return Token{
			Type:   tokenString,
			Lexeme: value,
			Pos:    positionFromState(start),
		}, true, nil
	}

	switch r {
	case '+':
		return simpleToken(tokenPlus, start), true, nil
	case '-':
		return simpleToken(tokenMinus, start), true, nil
	case '*':
		return simpleToken(tokenStar, start), true, nil
	case '/':
		return simpleToken(tokenSlash, start), true, nil
	case '%':
		return simpleToken(tokenPercent, start), true, nil
	case '<':
		return simpleToken(tokenLess, start), true, nil
	case '>':
		return simpleToken(tokenGreater, start), true, nil
	case '(':
		return simpleToken(tokenLParen, start), true, nil
	case ')':
		return simpleToken(tokenRParen, start), true, nil
	case '{':
		return simpleToken(tokenLBrace, start), true, nil
	case '}':
		return simpleToken(tokenRBrace, start), true, nil
	case '[':
		return simpleToken(tokenLBracket, start), true, nil
	case ']':
		return simpleToken(tokenRBracket, start), true, nil
	case ',':
		return simpleToken(tokenComma, start), true, nil
	case ';':
		return simpleToken(tokenSemicolon, start), true, nil
	case '.':
		return simpleToken(tokenDot, start), true, nil
	case ':':
		if lx.match(':') {
			return simpleToken(tokenDot, start), true, nil
		}
		return simpleToken(tokenColon, start), true, nil
	case '=':
		if lx.match('=') {
			return simpleToken(tokenEqualEqual, start), true, nil
		}
		return simpleToken(tokenAssign, start), true, nil
	case '!':
		if lx.match('=') {
			return simpleToken(tokenBangEqual, start), true, nil
		}
	}
	return Token{}, false, nil
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || isDigit(r) || r == '_' || r == '-' || r == '!'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (lx *lexer) scanIdentifier(initial rune) string {
	var builder strings.Builder
	builder.WriteRune(initial)
	for {
		r, state, ok := lx.readRune()
		if !ok {
			break
		}
		if !isIdentifierPart(r) {
			lx.restore(state)
			break
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// scanNumber consumes a digit run, plus a fractional part when the dot is
// immediately followed by a digit so that 1.x still lexes as member access.
func (lx *lexer) scanNumber(initial rune) string {
	var builder strings.Builder
	builder.WriteRune(initial)
	lx.scanDigits(&builder)
	state := lx.mark()
	if lx.match('.') {
		if next, ok := lx.peekRune(); ok && isDigit(next) {
			builder.WriteByte('.')
			lx.scanDigits(&builder)
		} else {
			lx.restore(state)
		}
	}
	return builder.String()
}

func (lx *lexer) scanDigits(builder *strings.Builder) {
	for {
		r, state, ok := lx.readRune()
		if !ok {
			return
		}
		if !isDigit(r) {
			lx.restore(state)
			return
		}
		builder.WriteRune(r)
	}
}

func (lx *lexer) scanString(start runeState) (string, error) {
	var builder strings.Builder
	for {
		r, _, ok := lx.readRune()
		if !ok {
			return "", newIncompleteError(lang.KindLex, positionFromState(start), "unterminated string literal")
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			esc, _, ok := lx.readRune()
			if !ok {
				return "", newIncompleteError(lang.KindLex, positionFromState(start), "unterminated string literal")
			}
			switch esc {
			case 'n':
				builder.WriteRune('\n')
			case 't':
				builder.WriteRune('\t')
			case '\\':
				builder.WriteRune('\\')
			case '"':
				builder.WriteRune('"')
			default:
				builder.WriteRune(esc)
			}
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String(), nil
}

func makeIdentifierToken(lexeme string, start runeState) Token {
	if keywordType, ok := keywords[lexeme]; ok {
		return Token{
			Type:   keywordType,
			Lexeme: lexeme,
			Pos:    positionFromState(start),
		}
	}
	return Token{
		Type:   tokenIdentifier,
		Lexeme: lexeme,
		Pos:    positionFromState(start),
	}
}

var keywords = map[string]TokenType{
	"let":   tokenLet,
	"const": tokenConst,
	"mut":   tokenMut,
	"func":  tokenFunc,
	"ret":   tokenRet,
	"if":    tokenIf,
	"else":  tokenElse,
	"for":   tokenFor,
	"in":    tokenIn,
}

func simpleToken(tt TokenType, start runeState) Token {
	return Token{
		Type: tt,
		Pos:  positionFromState(start),
	}
}

func positionFromState(state runeState) ast.Position {
	return ast.Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
