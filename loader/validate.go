package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/ruinscript/engine/script"
	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Check compiles every script and cross-checks literal text ids against the
// catalog. It returns the warnings found, and a *ValidationError if any
// script is unusable.
func Check(lib *Library) ([]string, error) {
	ve := &ValidationError{}

	for _, id := range lib.IDs() {
		src := lib.Scripts[id]

		if _, err := script.Compile(id, strings.NewReader(src)); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
			continue
		}
		if !definesEntry(src, id) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("script %s: rrscript_main is not defined", id))
		}

		for _, textID := range talkTextIDs(src) {
			if _, ok := lib.Texts[textID]; !ok {
				ve.Warnings = append(ve.Warnings,
					fmt.Sprintf("script %s: text %q is not in %s", id, textID, TextsFile))
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

// definesEntry reports whether the chunk defines rrscript_main at top level.
func definesEntry(src, name string) bool {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return false
	}
	for _, stmt := range chunk {
		switch st := stmt.(type) {
		case *ast.FuncDefStmt:
			if ident, ok := st.Name.Func.(*ast.IdentExpr); ok && st.Name.Receiver == nil && ident.Value == "rrscript_main" {
				return true
			}
		case *ast.AssignStmt:
			for _, lhs := range st.Lhs {
				if ident, ok := lhs.(*ast.IdentExpr); ok && ident.Value == "rrscript_main" {
					return true
				}
			}
		}
	}
	return false
}

// talkTextIDs returns the text ids passed as string literals to talk() or
// ask() anywhere in the chunk.
func talkTextIDs(src string) []string {
	chunk, err := parse.Parse(strings.NewReader(src), "check")
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	walkStmts(chunk, func(call *ast.FuncCallExpr) {
		fn, ok := call.Func.(*ast.IdentExpr)
		if !ok || call.Receiver != nil || (fn.Value != "talk" && fn.Value != "ask") || len(call.Args) == 0 {
			return
		}
		if lit, ok := call.Args[0].(*ast.StringExpr); ok {
			seen[lit.Value] = true
		}
	})
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func walkStmts(stmts []ast.Stmt, visit func(*ast.FuncCallExpr)) {
	for _, stmt := range stmts {
		switch st := stmt.(type) {
		case *ast.AssignStmt:
			walkExprs(st.Lhs, visit)
			walkExprs(st.Rhs, visit)
		case *ast.LocalAssignStmt:
			walkExprs(st.Exprs, visit)
		case *ast.FuncCallStmt:
			walkExpr(st.Expr, visit)
		case *ast.DoBlockStmt:
			walkStmts(st.Stmts, visit)
		case *ast.WhileStmt:
			walkExpr(st.Condition, visit)
			walkStmts(st.Stmts, visit)
		case *ast.RepeatStmt:
			walkStmts(st.Stmts, visit)
			walkExpr(st.Condition, visit)
		case *ast.IfStmt:
			walkExpr(st.Condition, visit)
			walkStmts(st.Then, visit)
			walkStmts(st.Else, visit)
		case *ast.NumberForStmt:
			walkExprs([]ast.Expr{st.Init, st.Limit, st.Step}, visit)
			walkStmts(st.Stmts, visit)
		case *ast.GenericForStmt:
			walkExprs(st.Exprs, visit)
			walkStmts(st.Stmts, visit)
		case *ast.FuncDefStmt:
			walkExpr(st.Func, visit)
		case *ast.ReturnStmt:
			walkExprs(st.Exprs, visit)
		}
	}
}

func walkExprs(exprs []ast.Expr, visit func(*ast.FuncCallExpr)) {
	for _, e := range exprs {
		walkExpr(e, visit)
	}
}

func walkExpr(expr ast.Expr, visit func(*ast.FuncCallExpr)) {
	switch ex := expr.(type) {
	case nil:
	case *ast.FuncCallExpr:
		visit(ex)
		walkExpr(ex.Func, visit)
		walkExpr(ex.Receiver, visit)
		walkExprs(ex.Args, visit)
	case *ast.AttrGetExpr:
		walkExpr(ex.Object, visit)
		walkExpr(ex.Key, visit)
	case *ast.TableExpr:
		for _, f := range ex.Fields {
			walkExpr(f.Key, visit)
			walkExpr(f.Value, visit)
		}
	case *ast.LogicalOpExpr:
		walkExpr(ex.Lhs, visit)
		walkExpr(ex.Rhs, visit)
	case *ast.RelationalOpExpr:
		walkExpr(ex.Lhs, visit)
		walkExpr(ex.Rhs, visit)
	case *ast.StringConcatOpExpr:
		walkExpr(ex.Lhs, visit)
		walkExpr(ex.Rhs, visit)
	case *ast.ArithmeticOpExpr:
		walkExpr(ex.Lhs, visit)
		walkExpr(ex.Rhs, visit)
	case *ast.UnaryMinusOpExpr:
		walkExpr(ex.Expr, visit)
	case *ast.UnaryNotOpExpr:
		walkExpr(ex.Expr, visit)
	case *ast.UnaryLenOpExpr:
		walkExpr(ex.Expr, visit)
	case *ast.FunctionExpr:
		walkStmts(ex.Stmts, visit)
	}
}
