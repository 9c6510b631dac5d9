package expression

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine is a wrapper around expr-lang/expr used to evaluate event filter
// rules against calendar event environments.
type Engine struct {
	programCache map[string]*vm.Program
	functions    map[string]func(params ...interface{}) (interface{}, error)
	mu           sync.RWMutex
}

// NewEngine creates a new expression engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[string]*vm.Program),
		functions:    make(map[string]func(params ...interface{}) (interface{}, error)),
	}
}

// Evaluate compiles (if needed) and runs an expression against the given environment
func (e *Engine) Evaluate(expression string, env map[string]interface{}) (interface{}, error) {
	program, err := e.getProgram(expression, env)
	if err != nil {
		return nil, err
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// EvaluateBool evaluates an expression and requires a boolean result.
// Filter rules must be predicates; anything else is an error.
func (e *Engine) EvaluateBool(expression string, env map[string]interface{}) (bool, error) {
	output, err := e.Evaluate(expression, env)
	if err != nil {
		return false, err
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean (got %T)", expression, output)
	}
	return result, nil
}

// RegisterFunction registers a custom function
func (e *Engine) RegisterFunction(name string, fn func(params ...interface{}) (interface{}, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.functions == nil {
		e.functions = make(map[string]func(params ...interface{}) (interface{}, error))
	}
	e.functions[name] = fn
	// Clear cache as available functions changed
	e.programCache = make(map[string]*vm.Program)
}

func (e *Engine) getProgram(expression string, env map[string]interface{}) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if prog, ok := e.programCache[expression]; ok {
		return prog, nil
	}

	// Define standard functions
	options := []expr.Option{
		expr.Env(env),
		expr.Function("TODAY", func(params ...interface{}) (interface{}, error) {
			return time.Now().UTC().Format("2006-01-02"), nil
		}),
		expr.Function("NOW", func(params ...interface{}) (interface{}, error) {
			return time.Now().UTC().Format("2006-01-02 15:04:05"), nil
		}),
		expr.Function("UPPER", func(params ...interface{}) (interface{}, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("UPPER requires 1 argument")
			}
			s, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("UPPER argument must be string")
			}
			return strings.ToUpper(s), nil
		}),
		expr.Function("LOWER", func(params ...interface{}) (interface{}, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("LOWER requires 1 argument")
			}
			s, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("LOWER argument must be string")
			}
			return strings.ToLower(s), nil
		}),
		expr.Function("CONTAINS", func(params ...interface{}) (interface{}, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("CONTAINS requires 2 arguments (haystack, needle)")
			}
			haystack, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("CONTAINS arg 1 must be string")
			}
			needle, ok := params[1].(string)
			if !ok {
				return nil, fmt.Errorf("CONTAINS arg 2 must be string")
			}
			return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)), nil
		}),
		expr.Function("MATCHES_ANY", func(params ...interface{}) (interface{}, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("MATCHES_ANY requires 2 arguments (text, keywords)")
			}
			text, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("MATCHES_ANY arg 1 must be string")
			}
			keywords, ok := params[1].([]string)
			if !ok {
				// expr hands us []interface{} for literal lists
				raw, rok := params[1].([]interface{})
				if !rok {
					return nil, fmt.Errorf("MATCHES_ANY arg 2 must be a list of strings")
				}
				keywords = make([]string, 0, len(raw))
				for _, item := range raw {
					s, sok := item.(string)
					if !sok {
						return nil, fmt.Errorf("MATCHES_ANY arg 2 must be a list of strings")
					}
					keywords = append(keywords, s)
				}
			}
			lower := strings.ToLower(text)
			for _, kw := range keywords {
				if strings.Contains(lower, strings.ToLower(kw)) {
					return true, nil
				}
			}
			return false, nil
		}),
	}

	// Add custom functions
	for name, fn := range e.functions {
		options = append(options, expr.Function(name, fn))
	}

	// Compile
	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, err
	}

	e.programCache[expression] = program
	return program, nil
}

// Validate compiles an expression without running it
func (e *Engine) Validate(expression string, env map[string]interface{}) error {
	_, err := e.getProgram(expression, env)
	return err
}
