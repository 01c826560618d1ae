/*
Package audit
File: internal/audit/scan.go
Description:
    Component C10's static pair-audit tool (spec.md §4.10, §9: "build it
    into the test suite rather than leaving it as an external script").
    There is no separate client binary in this tree — one process both
    sends and receives every envelope — so the "server and client" scan
    spec.md describes becomes a scan of the whole module source: every
    protocol.EventX constant that looks like a server->client push must
    appear as an argument to an Emit-family call somewhere, and every
    inbound command must have a registered dispatch handler. Built on
    go/parser + go/ast: no example in the pack ships a static-analysis
    dependency, and source scanning is exactly what the standard
    library's AST packages are for.
*/
package audit

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// emitCallNames are the function/method names treated as emission
// sites: an event argument here counts as "emitted".
var emitCallNames = map[string]bool{
	"Emit": true, "EmitTo": true, "EmitToPlayer": true,
	"EmitError": true, "BroadcastAll": true,
}

// LoadProtocolConstants parses internal/protocol/protocol.go's const
// block directly (rather than importing the package, to keep this a
// pure source-text audit) and returns identifier name -> string value,
// e.g. "EventMiningComplete" -> "mining:complete".
func LoadProtocolConstants(protocolGoPath string) (map[string]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, protocolGoPath, nil, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Names) == 0 || len(vs.Values) == 0 {
				continue
			}
			lit, ok := vs.Values[0].(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			val, err := strconv.Unquote(lit.Value)
			if err != nil {
				continue
			}
			out[vs.Names[0].Name] = val
		}
	}
	return out, nil
}

// ScanEmittedEvents walks every .go file under rootDir (skipping
// _test.go files, _examples directories, and hidden directories) and
// returns the set of event values passed as the event argument to an
// Emit-family call, resolving protocol.EventXxx identifiers against
// constants.
func ScanEmittedEvents(rootDir string, constants map[string]string) (map[string]bool, error) {
	found := make(map[string]bool)
	fset := token.NewFileSet()

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "_examples" || (strings.HasPrefix(info.Name(), ".") && info.Name() != ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return nil // best-effort: a file that fails to parse is skipped, not fatal
		}
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || len(call.Args) == 0 {
				return true
			}
			name := calleeName(call.Fun)
			if !emitCallNames[name] {
				return true
			}
			// EmitTo/EmitToPlayer take (userID, event, payload); Emit/
			// EmitError/BroadcastAll take (event, payload[, ...]) — the
			// event argument is always the first string-typed one.
			for _, arg := range call.Args {
				if val, ok := resolveEventArg(arg, constants); ok {
					found[val] = true
					break
				}
			}
			return true
		})
		return nil
	})
	return found, err
}

// resolveEventArg recognizes a literal string or a protocol.EventXxx
// selector and resolves it to its event string value.
func resolveEventArg(arg ast.Expr, constants map[string]string) (string, bool) {
	switch e := arg.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			if s, err := strconv.Unquote(e.Value); err == nil {
				return s, true
			}
		}
	case *ast.SelectorExpr:
		if val, ok := constants[e.Sel.Name]; ok {
			return val, true
		}
	}
	return "", false
}

// calleeName extracts the bare function/method name from a call
// expression's callee, whether it's pkg.Func(...) or recv.Method(...).
func calleeName(fn ast.Expr) string {
	switch e := fn.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	default:
		return ""
	}
}

// MissingEmissions returns which of wantEvents never showed up in
// emitted, excluding names present in exceptions.
func MissingEmissions(wantEvents []string, emitted map[string]bool, exceptions map[string]bool) []string {
	var missing []string
	for _, e := range wantEvents {
		if emitted[e] || exceptions[e] {
			continue
		}
		missing = append(missing, e)
	}
	return missing
}

// MissingHandlers returns which of wantEvents have no registered
// dispatch handler, excluding names present in exceptions.
func MissingHandlers(wantEvents []string, registered map[string]bool, exceptions map[string]bool) []string {
	var missing []string
	for _, e := range wantEvents {
		if registered[e] || exceptions[e] {
			continue
		}
		missing = append(missing, e)
	}
	return missing
}
