// Package position resolves symbolic overlay placement expressions into
// integer pixel offsets.
//
// The x and y expressions may reference the dimensions of both streams
// through the variables main_w, main_h, overlay_w and overlay_h, so a
// bottom-right placement is written "main_w-overlay_w:main_h-overlay_h".
// Resolution happens exactly once, after both streams have reported
// their dimensions.
package position

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/sirupsen/logrus"
)

// Dimensions carries the stream geometry bound into the expressions.
type Dimensions struct {
	MainW, MainH       int
	OverlayW, OverlayH int
}

// Point is a resolved placement, immutable once computed.
type Point struct {
	X, Y int
}

// ExpressionError reports a position expression that failed to parse or
// evaluate. It is fatal: initialization cannot complete without a
// resolved position.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("evaluating position expression %q: %v", e.Expr, e.Err)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// Resolve evaluates the x and y expressions against the stream dimensions
// and truncates the results to integers.
func Resolve(xExpr, yExpr string, dims Dimensions) (Point, error) {
	env := map[string]interface{}{
		"main_w":    float64(dims.MainW),
		"main_h":    float64(dims.MainH),
		"overlay_w": float64(dims.OverlayW),
		"overlay_h": float64(dims.OverlayH),
	}

	x, err := evaluate(xExpr, env)
	if err != nil {
		return Point{}, err
	}
	y, err := evaluate(yExpr, env)
	if err != nil {
		return Point{}, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "position.Resolve",
		"x_expr":   xExpr,
		"y_expr":   yExpr,
		"x":        x,
		"y":        y,
	}).Info("Resolved overlay position")

	return Point{X: x, Y: y}, nil
}

// evaluate runs one expression and truncates the numeric result.
func evaluate(code string, env map[string]interface{}) (int, error) {
	out, err := expr.Eval(code, env)
	if err != nil {
		return 0, &ExpressionError{Expr: code, Err: err}
	}

	switch v := out.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, &ExpressionError{
			Expr: code,
			Err:  fmt.Errorf("result is %T, expected a number", out),
		}
	}
}
