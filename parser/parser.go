package parser

import (
	"errors"
	"strconv"

	"github.com/edwingeng/deque"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lang"
)

// MaxNesting bounds how deeply expressions and blocks may nest.
const MaxNesting = 1000

// Parse translates source text into a Program AST.
func Parse(src string) (*ast.Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens builds a Program from a token sequence. Token types are only
// constructible inside this package, so tokens must come from Tokenize. The
// whole sequence is consumed; a missing EOF token is implied.
func ParseTokens(tokens []Token) (*ast.Program, error) {
	p := &parser{queue: deque.NewDeque()}
	for _, tok := range tokens {
		p.queue.PushBack(tok)
	}
	p.advance()
	return p.parseProgram()
}

type parser struct {
	queue deque.Deque
	curr  Token
	depth int
}

func (p *parser) advance() {
	if p.queue.Empty() {
		p.curr = Token{Type: tokenEOF, Pos: p.curr.Pos}
		return
	}
	p.curr = p.queue.PopFront().(Token)
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.curr.Type != tt {
		return Token{}, p.errorf(p.curr.Pos, "expected %s, found %s", tt, p.curr.Type)
	}
	tok := p.curr
	p.advance()
	return tok, nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxNesting {
		return newError(lang.KindDepth, p.curr.Pos, "nesting exceeds %d levels", MaxNesting)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseProgram() (*ast.Program, error) {
	var body []ast.Stmt
	for p.curr.Type != tokenEOF {
		if p.curr.Type == tokenSemicolon {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return &ast.Program{Body: body}, nil
}

func (p *parser) parseStatement() (ast.Stmt, error) {
	switch p.curr.Type {
	case tokenLet:
		return p.parseLetDecl()
	case tokenConst:
		return p.parseConstDecl()
	case tokenFunc:
		return p.parseFuncDecl()
	case tokenRet:
		return p.parseReturnStmt()
	case tokenIf:
		return p.parseIfStmt()
	case tokenFor:
		return p.parseForStmt()
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.curr.Type == tokenSemicolon {
			p.advance()
		}
		return &ast.ExprStmt{
			Expr: expr,
			Posn: expr.Pos(),
		}, nil
	}
}

func (p *parser) parseLetDecl() (ast.Stmt, error) {
	start, err := p.expect(tokenLet)
	if err != nil {
		return nil, err
	}
	if p.curr.Type == tokenMut {
		p.advance()
	}
	return p.finishVarDecl(start, false)
}

func (p *parser) parseConstDecl() (ast.Stmt, error) {
	start, err := p.expect(tokenConst)
	if err != nil {
		return nil, err
	}
	return p.finishVarDecl(start, true)
}

func (p *parser) finishVarDecl(start Token, isConst bool) (ast.Stmt, error) {
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.curr.Type == tokenAssign {
		p.advance()
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else if isConst {
		return nil, p.errorf(p.curr.Pos, "const %s requires an initializer", nameTok.Lexeme)
	}
	if _, err := p.expect(tokenSemicolon); err != nil {
		return nil, err
	}
	return &ast.VarDecl{
		Mutable: !isConst,
		Name:    nameTok.Lexeme,
		Init:    init,
		Posn:    start.Pos,
	}, nil
}

func (p *parser) parseFuncDecl() (ast.Stmt, error) {
	funcTok, err := p.expect(tokenFunc)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParamNames()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{
		Name:   nameTok.Lexeme,
		Params: params,
		Body:   body,
		Posn:   funcTok.Pos,
	}, nil
}

func (p *parser) parseParamNames() ([]string, error) {
	var params []string
	for p.curr.Type != tokenRParen {
		tok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Lexeme)
		if p.curr.Type != tokenComma {
			break
		}
		p.advance()
	}
	return params, nil
}

func (p *parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(tokenLBrace); err != nil {
		return nil, err
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	stmts := []ast.Stmt{}
	for p.curr.Type != tokenRBrace && p.curr.Type != tokenEOF {
		if p.curr.Type == tokenSemicolon {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if p.curr.Type != tokenRBrace {
		return nil, p.errorf(p.curr.Pos, "expected } to close block")
	}
	p.advance()
	return stmts, nil
}

func (p *parser) parseReturnStmt() (ast.Stmt, error) {
	retTok, err := p.expect(tokenRet)
	if err != nil {
		return nil, err
	}
	var result ast.Expr
	if p.curr.Type != tokenSemicolon {
		result, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenSemicolon); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{
		Result: result,
		Posn:   retTok.Pos,
	}, nil
}

func (p *parser) parseIfStmt() (ast.Stmt, error) {
	ifTok, err := p.expect(tokenIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock []ast.Stmt
	if p.curr.Type == tokenElse {
		p.advance()
		if p.curr.Type == tokenIf {
			if err := p.enter(); err != nil {
				return nil, err
			}
			nested, err := p.parseIfStmt()
			p.leave()
			if err != nil {
				return nil, err
			}
			elseBlock = []ast.Stmt{nested}
		} else {
			elseBlock, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.IfStmt{
		Cond: cond,
		Then: thenBlock,
		Else: elseBlock,
		Posn: ifTok.Pos,
	}, nil
}

func (p *parser) parseForStmt() (ast.Stmt, error) {
	forTok, err := p.expect(tokenFor)
	if err != nil {
		return nil, err
	}
	parenthesized := p.curr.Type == tokenLParen
	if parenthesized {
		p.advance()
	}
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenIn); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if parenthesized {
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{
		Binding:  nameTok.Lexeme,
		Iterable: iterable,
		Body:     body,
		Posn:     forTok.Pos,
	}, nil
}

func (p *parser) parseExpression() (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.parseAssignment()
}

func (p *parser) parseAssignment() (ast.Expr, error) {
	target, err := p.parseObjectOrAdditive()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != tokenAssign {
		return target, nil
	}
	assignTok := p.curr
	switch target.(type) {
	case *ast.Ident, *ast.MemberExpr:
	default:
		return nil, p.errorf(assignTok.Pos, "invalid assignment target")
	}
	p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignExpr{
		Target: target,
		Value:  value,
		Posn:   target.Pos(),
	}, nil
}

func (p *parser) parseObjectOrAdditive() (ast.Expr, error) {
	if p.curr.Type == tokenLBrace {
		return p.parseObjectLiteral()
	}
	return p.parseAdditive()
}

func (p *parser) parseObjectLiteral() (ast.Expr, error) {
	braceTok, err := p.expect(tokenLBrace)
	if err != nil {
		return nil, err
	}
	props := []ast.Property{}
	for p.curr.Type != tokenRBrace {
		keyTok := p.curr
		switch keyTok.Type {
		case tokenIdentifier, tokenString:
			p.advance()
		default:
			return nil, p.errorf(keyTok.Pos, "expected property name, found %s", keyTok.Type)
		}
		prop := ast.Property{Key: keyTok.Lexeme, Posn: keyTok.Pos}
		if p.curr.Type == tokenColon {
			p.advance()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			prop.Value = value
		} else if keyTok.Type == tokenString {
			return nil, p.errorf(p.curr.Pos, "expected : after property %q", keyTok.Lexeme)
		}
		props = append(props, prop)
		if p.curr.Type != tokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return &ast.ObjectLit{
		Props: props,
		Posn:  braceTok.Pos,
	}, nil
}

var additiveOps = map[TokenType]ast.Operator{
	tokenPlus:       ast.OpAdd,
	tokenMinus:      ast.OpSub,
	tokenEqualEqual: ast.OpEq,
	tokenBangEqual:  ast.OpNotEq,
	tokenLess:       ast.OpLess,
	tokenGreater:    ast.OpGreater,
}

var multiplicativeOps = map[TokenType]ast.Operator{
	tokenStar:    ast.OpMul,
	tokenSlash:   ast.OpDiv,
	tokenPercent: ast.OpMod,
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := additiveOps[p.curr.Type]
		if !ok {
			return left, nil
		}
		opTok := p.curr
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			Op:    op,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.curr.Type]
		if !ok {
			return left, nil
		}
		opTok := p.curr
		p.advance()
		right, err := p.parseCallMember()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			Op:    op,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
}

func (p *parser) parseCallMember() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.curr.Type {
		case tokenDot:
			dotTok := p.curr
			p.advance()
			nameTok, err := p.expect(tokenIdentifier)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{
				Object:   expr,
				Property: &ast.Ident{Name: nameTok.Lexeme, Posn: nameTok.Pos},
				Posn:     dotTok.Pos,
			}
		case tokenLBracket:
			bracketTok := p.curr
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRBracket); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{
				Object:   expr,
				Property: index,
				Computed: true,
				Posn:     bracketTok.Pos,
			}
		case tokenLParen:
			parenTok := p.curr
			p.advance()
			args, err := p.parseArgumentList(tokenRParen)
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{
				Callee: expr,
				Args:   args,
				Posn:   parenTok.Pos,
			}
		default:
			return expr, nil
		}
	}
}

// parseArgumentList reads comma-separated expressions up to and including the
// closing token.
func (p *parser) parseArgumentList(closing TokenType) ([]ast.Expr, error) {
	args := []ast.Expr{}
	for p.curr.Type != closing {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curr.Type != tokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.curr
	switch tok.Type {
	case tokenIdentifier:
		p.advance()
		return &ast.Ident{Name: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenNumber:
		value, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		p.advance()
		return &ast.NumberLit{Value: value, Posn: tok.Pos}, nil
	case tokenString:
		p.advance()
		return &ast.StringLit{Value: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case tokenLBracket:
		p.advance()
		elems, err := p.parseArgumentList(tokenRBracket)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Elements: elems, Posn: tok.Pos}, nil
	default:
		return nil, p.errorf(tok.Pos, "unexpected token %s in expression", tok.Type)
	}
}

// parseNumber converts a number token. Digit runs beyond the float64 range
// become +Inf rather than an error.
func parseNumber(tok Token) (float64, error) {
	value, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, newError(lang.KindLex, tok.Pos, "invalid number literal %q", tok.Lexeme)
	}
	return value, nil
}

// errorf reports a Parse error. Errors raised at end of input are marked
// incomplete so interactive callers can keep reading.
func (p *parser) errorf(pos ast.Position, format string, args ...interface{}) error {
	if p.curr.Type == tokenEOF {
		return newIncompleteError(lang.KindParse, pos, format, args...)
	}
	return newError(lang.KindParse, pos, format, args...)
}
