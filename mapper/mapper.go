/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mapper adapts raw stream values into chart points. A Mapper is a
// pure function; bindings run it on every emission of a bound source. Besides
// hand-written Go mappers, expression mappers compile x/y expressions with
// expr-lang so feeds can be adapted declaratively:
//
//	m, _ := mapper.NewExprMapper("ts / 1000", "temperature * 1.8 + 32")
package mapper

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/livechart/types"
	"github.com/spf13/cast"
)

// Mapper converts one raw stream value into a DataPoint. Returning an error
// drops the value; bindings treat mapper errors as fail-soft.
type Mapper func(v interface{}) (types.DataPoint, error)

// ExprMapper evaluates two compiled expressions against each incoming value
// to produce the point's x and y.
type ExprMapper struct {
	xProgram *vm.Program
	yProgram *vm.Program
}

// NewExprMapper compiles x and y expressions. Map values are exposed as the
// expression environment; scalar values are reachable as "value". Unknown
// fields evaluate to nil and surface as mapping errors at run time, not
// compile time.
func NewExprMapper(xExpr, yExpr string) (Mapper, error) {
	em, err := newExprMapper(xExpr, yExpr)
	if err != nil {
		return nil, err
	}
	return em.Map, nil
}

func newExprMapper(xExpr, yExpr string) (*ExprMapper, error) {
	options := []expr.Option{expr.AllowUndefinedVariables()}

	xProgram, err := expr.Compile(xExpr, options...)
	if err != nil {
		return nil, fmt.Errorf("compile x expression %q: %w", xExpr, err)
	}
	yProgram, err := expr.Compile(yExpr, options...)
	if err != nil {
		return nil, fmt.Errorf("compile y expression %q: %w", yExpr, err)
	}
	return &ExprMapper{xProgram: xProgram, yProgram: yProgram}, nil
}

// Map evaluates both programs and coerces the results to float64.
func (m *ExprMapper) Map(v interface{}) (types.DataPoint, error) {
	env := environment(v)

	x, err := evaluate(m.xProgram, env, "x")
	if err != nil {
		return types.DataPoint{}, err
	}
	y, err := evaluate(m.yProgram, env, "y")
	if err != nil {
		return types.DataPoint{}, err
	}
	return types.NewPoint(x, y), nil
}

func environment(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"value": v}
}

func evaluate(program *vm.Program, env map[string]interface{}, axis string) (float64, error) {
	result, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("evaluate %s expression: %w", axis, err)
	}
	value, err := cast.ToFloat64E(result)
	if err != nil {
		return 0, fmt.Errorf("%s expression yielded non-numeric %v: %w", axis, result, err)
	}
	return value, nil
}
