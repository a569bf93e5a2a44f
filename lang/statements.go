package lang

import "github.com/lumen-lang/lumen/ast"

// outcome is the result of running a statement. returning is set once a ret
// has executed and must unwind every enclosing block up to the function call.
type outcome struct {
	value     Value
	returning bool
}

// execBlock runs stmts in env and yields the value of the last statement.
func (ev *Evaluator) execBlock(stmts []ast.Stmt, env *Env) (outcome, error) {
	result := outcome{value: Null}
	for _, stmt := range stmts {
		out, err := ev.execStmt(stmt, env)
		if err != nil {
			return outcome{}, err
		}
		if out.returning {
			return out, nil
		}
		result = out
	}
	return result, nil
}

func (ev *Evaluator) execStmt(stmt ast.Stmt, env *Env) (outcome, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		val, err := ev.eval(s.Expr, env)
		if err != nil {
			return outcome{}, err
		}
		return outcome{value: val}, nil
	case *ast.VarDecl:
		return ev.execVarDecl(s, env)
	case *ast.FuncDecl:
		return ev.execFuncDecl(s, env)
	case *ast.ReturnStmt:
		if s.Result == nil {
			return outcome{value: Null, returning: true}, nil
		}
		val, err := ev.eval(s.Result, env)
		if err != nil {
			return outcome{}, err
		}
		return outcome{value: val, returning: true}, nil
	case *ast.IfStmt:
		return ev.execIf(s, env)
	case *ast.ForStmt:
		return ev.execFor(s, env)
	default:
		return outcome{}, NewError(KindTypeMismatch, stmtPos(stmt), "unsupported statement %T", stmt)
	}
}

func (ev *Evaluator) execVarDecl(s *ast.VarDecl, env *Env) (outcome, error) {
	val := Null
	if s.Init != nil {
		v, err := ev.eval(s.Init, env)
		if err != nil {
			return outcome{}, err
		}
		val = v
	}
	if _, err := env.Declare(s.Name, val, s.Mutable); err != nil {
		return outcome{}, withPos(err, s.Posn)
	}
	return outcome{value: val}, nil
}

// execFuncDecl binds the function first and then snapshots the scope, so the
// captured copy already contains the function and recursion resolves.
func (ev *Evaluator) execFuncDecl(s *ast.FuncDecl, env *Env) (outcome, error) {
	fn := &Function{
		Name:   s.Name,
		Params: s.Params,
		Body:   s.Body,
	}
	val := FunctionValue(fn)
	if _, err := env.Declare(s.Name, val, false); err != nil {
		return outcome{}, withPos(err, s.Posn)
	}
	fn.Env = env.Snapshot()
	return outcome{value: val}, nil
}

// execIf runs the then branch for true and for any non-boolean, non-null
// condition; false and null select the else branch.
func (ev *Evaluator) execIf(s *ast.IfStmt, env *Env) (outcome, error) {
	cond, err := ev.eval(s.Cond, env)
	if err != nil {
		return outcome{}, err
	}
	takeThen := true
	switch cond.Type {
	case TypeBool:
		takeThen = cond.Bool()
	case TypeNull:
		takeThen = false
	}
	if takeThen {
		return ev.execBlock(s.Then, NewEnv(env))
	}
	if s.Else == nil {
		return outcome{value: Null}, nil
	}
	return ev.execBlock(s.Else, NewEnv(env))
}

// execFor declares the loop binding in env for the duration of the loop and
// runs each iteration body in its own child scope.
func (ev *Evaluator) execFor(s *ast.ForStmt, env *Env) (outcome, error) {
	iterable, err := ev.eval(s.Iterable, env)
	if err != nil {
		return outcome{}, err
	}
	if iterable.Type != TypeArray {
		return outcome{}, NewError(KindNotIterable, s.Iterable.Pos(), "cannot iterate over %s", iterable.Type)
	}
	if _, err := env.Declare(s.Binding, Null, true); err != nil {
		return outcome{}, withPos(err, s.Posn)
	}
	defer env.Remove(s.Binding)

	result := outcome{value: Null}
	for _, elem := range iterable.Array().Elements {
		if _, err := env.Assign(s.Binding, elem); err != nil {
			return outcome{}, withPos(err, s.Posn)
		}
		out, err := ev.execBlock(s.Body, NewEnv(env))
		if err != nil {
			return outcome{}, err
		}
		if out.returning {
			return out, nil
		}
		result = out
	}
	return result, nil
}

func stmtPos(stmt ast.Stmt) ast.Position {
	if stmt == nil {
		return ast.Position{}
	}
	return stmt.Pos()
}
