package graph

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/tidwall/gjson"

	"github.com/dshills/gonodes/pkg/value"
)

// Builtin node type library. Behaviors tolerate partially configured
// graphs: a missing or mistyped input leaves the output at its last-held
// value rather than failing the tick.

// DefaultRegistry returns a fresh registry with all builtin node types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		// Builtins are statically consistent; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return r
}

// RegisterBuiltins registers the builtin node types into r.
func RegisterBuiltins(r *Registry) error {
	builtins := []*NodeType{
		constFloatType(),
		constIntType(),
		constVec4Type(),
		constStringType(),
		addType(),
		multiplyType(),
		negateType(),
		addVec4Type(),
		multiplyVec4Type(),
		lerpVec4Type(),
		matMulType(),
		greaterType(),
		andType(),
		orType(),
		notType(),
		selectType(),
		concatType(),
		lengthType(),
		expressionType(),
		jsonQueryType(),
		printType(),
		counterType(),
	}
	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// paramFloat reads a numeric parameter, accepting YAML int and float.
func paramFloat(params map[string]interface{}, key string) (float32, bool) {
	switch v := params[key].(type) {
	case float64:
		return float32(v), true
	case float32:
		return v, true
	case int:
		return float32(v), true
	case int64:
		return float32(v), true
	}
	return 0, false
}

func paramInt(params map[string]interface{}, key string) (int64, bool) {
	switch v := params[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func paramString(params map[string]interface{}, key string) (string, bool) {
	s, ok := params[key].(string)
	return s, ok
}

func constFloatType() *NodeType {
	return &NodeType{
		Name:     "const_float",
		Category: CategoryConstant,
		Pure:     true,
		Outputs:  []PinSpec{{Name: "value", Kind: value.KindFloat}},
		Configure: func(n *Node, params map[string]interface{}) error {
			f, ok := paramFloat(params, "value")
			if !ok {
				return fmt.Errorf("const_float: missing numeric param %q", "value")
			}
			n.Outputs[0].Default = value.Float(f)
			n.Outputs[0].Value = value.Float(f)
			return nil
		},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, n.Outputs[0].Default)
		},
	}
}

func constIntType() *NodeType {
	return &NodeType{
		Name:     "const_int",
		Category: CategoryConstant,
		Pure:     true,
		Outputs:  []PinSpec{{Name: "value", Kind: value.KindInt}},
		Configure: func(n *Node, params map[string]interface{}) error {
			i, ok := paramInt(params, "value")
			if !ok {
				return fmt.Errorf("const_int: missing integer param %q", "value")
			}
			n.Outputs[0].Default = value.Int(i)
			n.Outputs[0].Value = value.Int(i)
			return nil
		},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, n.Outputs[0].Default)
		},
	}
}

func constVec4Type() *NodeType {
	return &NodeType{
		Name:     "const_vec4",
		Category: CategoryConstant,
		Pure:     true,
		Outputs:  []PinSpec{{Name: "value", Kind: value.KindVec4}},
		Configure: func(n *Node, params map[string]interface{}) error {
			x, _ := paramFloat(params, "x")
			y, _ := paramFloat(params, "y")
			z, _ := paramFloat(params, "z")
			w, _ := paramFloat(params, "w")
			v := value.Vec4(x, y, z, w)
			n.Outputs[0].Default = v
			n.Outputs[0].Value = v
			return nil
		},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, n.Outputs[0].Default)
		},
	}
}

func constStringType() *NodeType {
	return &NodeType{
		Name:     "const_string",
		Category: CategoryConstant,
		Pure:     true,
		Outputs:  []PinSpec{{Name: "value", Kind: value.KindString}},
		Configure: func(n *Node, params map[string]interface{}) error {
			s, ok := paramString(params, "value")
			if !ok {
				return fmt.Errorf("const_string: missing string param %q", "value")
			}
			n.Outputs[0].Default = value.Str(s)
			n.Outputs[0].Value = value.Str(s)
			return nil
		},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, n.Outputs[0].Default)
		},
	}
}

func addType() *NodeType {
	return &NodeType{
		Name:     "add",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindFloat},
			{Name: "b", Kind: value.KindFloat},
		},
		Outputs: []PinSpec{{Name: "sum", Kind: value.KindFloat}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Float(n.Input(0).AsFloat()+n.Input(1).AsFloat()))
		},
	}
}

func multiplyType() *NodeType {
	return &NodeType{
		Name:     "multiply",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindFloat},
			{Name: "b", Kind: value.KindFloat},
		},
		Outputs: []PinSpec{{Name: "product", Kind: value.KindFloat}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Float(n.Input(0).AsFloat()*n.Input(1).AsFloat()))
		},
	}
}

func negateType() *NodeType {
	return &NodeType{
		Name:     "negate",
		Category: CategoryMath,
		Pure:     true,
		Inputs:   []PinSpec{{Name: "value", Kind: value.KindFloat}},
		Outputs:  []PinSpec{{Name: "negated", Kind: value.KindFloat}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Float(-n.Input(0).AsFloat()))
		},
	}
}

func addVec4Type() *NodeType {
	return &NodeType{
		Name:     "add_vec4",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindVec4},
			{Name: "b", Kind: value.KindVec4},
		},
		Outputs: []PinSpec{{Name: "sum", Kind: value.KindVec4}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Add4(n.Input(0), n.Input(1)))
		},
	}
}

func multiplyVec4Type() *NodeType {
	return &NodeType{
		Name:     "multiply_vec4",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindVec4},
			{Name: "b", Kind: value.KindVec4},
		},
		Outputs: []PinSpec{{Name: "product", Kind: value.KindVec4}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Mul4(n.Input(0), n.Input(1)))
		},
	}
}

func lerpVec4Type() *NodeType {
	return &NodeType{
		Name:     "lerp_vec4",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindVec4},
			{Name: "b", Kind: value.KindVec4},
			{Name: "t", Kind: value.KindFloat},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindVec4}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Lerp4(n.Input(0), n.Input(1), n.Input(2).AsFloat()))
		},
	}
}

func matMulType() *NodeType {
	return &NodeType{
		Name:     "mat_mul",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindMatrix},
			{Name: "b", Kind: value.KindMatrix},
		},
		Outputs: []PinSpec{{Name: "product", Kind: value.KindMatrix}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.MatMul4(n.Input(0), n.Input(1)))
		},
	}
}

func greaterType() *NodeType {
	return &NodeType{
		Name:     "greater",
		Category: CategoryLogic,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindFloat},
			{Name: "b", Kind: value.KindFloat},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindBool}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Bool(n.Input(0).AsFloat() > n.Input(1).AsFloat()))
		},
	}
}

func andType() *NodeType {
	return &NodeType{
		Name:     "and",
		Category: CategoryLogic,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindBool},
			{Name: "b", Kind: value.KindBool},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindBool}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Bool(n.Input(0).AsBool() && n.Input(1).AsBool()))
		},
	}
}

func orType() *NodeType {
	return &NodeType{
		Name:     "or",
		Category: CategoryLogic,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindBool},
			{Name: "b", Kind: value.KindBool},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindBool}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Bool(n.Input(0).AsBool() || n.Input(1).AsBool()))
		},
	}
}

func notType() *NodeType {
	return &NodeType{
		Name:     "not",
		Category: CategoryLogic,
		Pure:     true,
		Inputs:   []PinSpec{{Name: "value", Kind: value.KindBool}},
		Outputs:  []PinSpec{{Name: "result", Kind: value.KindBool}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Bool(!n.Input(0).AsBool()))
		},
	}
}

func selectType() *NodeType {
	return &NodeType{
		Name:     "select",
		Category: CategoryFlow,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "condition", Kind: value.KindBool},
			{Name: "if_true", Kind: value.KindNone},
			{Name: "if_false", Kind: value.KindNone},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindNone}},
		Execute: func(n *Node, _ *ExecContext) {
			if n.Input(0).AsBool() {
				n.SetOutput(0, n.Input(1))
			} else {
				n.SetOutput(0, n.Input(2))
			}
		},
	}
}

func concatType() *NodeType {
	return &NodeType{
		Name:     "concat",
		Category: CategoryString,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindString},
			{Name: "b", Kind: value.KindString},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindString}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Str(n.Input(0).AsStr()+n.Input(1).AsStr()))
		},
	}
}

func lengthType() *NodeType {
	return &NodeType{
		Name:     "length",
		Category: CategoryString,
		Pure:     true,
		Inputs:   []PinSpec{{Name: "value", Kind: value.KindString}},
		Outputs:  []PinSpec{{Name: "length", Kind: value.KindInt}},
		Execute: func(n *Node, _ *ExecContext) {
			n.SetOutput(0, value.Int(int64(len(n.Input(0).AsStr()))))
		},
	}
}

// expressionType evaluates a sandboxed expr-lang program over up to four
// float inputs named a..d. The program is compiled once at configure
// time and stored on the node.
func expressionType() *NodeType {
	return &NodeType{
		Name:     "expression",
		Category: CategoryMath,
		Pure:     true,
		Inputs: []PinSpec{
			{Name: "a", Kind: value.KindFloat},
			{Name: "b", Kind: value.KindFloat},
			{Name: "c", Kind: value.KindFloat},
			{Name: "d", Kind: value.KindFloat},
		},
		Outputs: []PinSpec{{Name: "result", Kind: value.KindFloat}},
		Configure: func(n *Node, params map[string]interface{}) error {
			src, ok := paramString(params, "expr")
			if !ok {
				return fmt.Errorf("expression: missing string param %q", "expr")
			}
			program, err := expr.Compile(src, expr.Env(exprEnv(0, 0, 0, 0)))
			if err != nil {
				return fmt.Errorf("expression: compile %q: %w", src, err)
			}
			n.Custom = program
			return nil
		},
		Execute: func(n *Node, _ *ExecContext) {
			program, ok := n.Custom.(*vm.Program)
			if !ok {
				return // unconfigured: leave output at last-held value
			}
			env := exprEnv(
				float64(n.Input(0).AsFloat()),
				float64(n.Input(1).AsFloat()),
				float64(n.Input(2).AsFloat()),
				float64(n.Input(3).AsFloat()),
			)
			result, err := vm.Run(program, env)
			if err != nil {
				return
			}
			switch r := result.(type) {
			case float64:
				n.SetOutput(0, value.Float(float32(r)))
			case int:
				n.SetOutput(0, value.Float(float32(r)))
			case bool:
				if r {
					n.SetOutput(0, value.Float(1))
				} else {
					n.SetOutput(0, value.Float(0))
				}
			}
		},
	}
}

func exprEnv(a, b, c, d float64) map[string]interface{} {
	return map[string]interface{}{"a": a, "b": b, "c": c, "d": d}
}

// jsonQueryType extracts a value from a JSON string input using a gjson
// path configured on the node.
func jsonQueryType() *NodeType {
	return &NodeType{
		Name:     "json_query",
		Category: CategoryString,
		Pure:     true,
		Inputs:   []PinSpec{{Name: "json", Kind: value.KindString}},
		Outputs:  []PinSpec{{Name: "result", Kind: value.KindString}},
		Configure: func(n *Node, params map[string]interface{}) error {
			path, ok := paramString(params, "path")
			if !ok {
				return fmt.Errorf("json_query: missing string param %q", "path")
			}
			n.Custom = path
			return nil
		},
		Execute: func(n *Node, _ *ExecContext) {
			path, ok := n.Custom.(string)
			if !ok {
				return
			}
			n.SetOutput(0, value.Str(gjson.Get(n.Input(0).AsStr(), path).String()))
		},
	}
}

// printType writes its input to the context's output sink. Impure: it is
// never memoized and runs every tick.
func printType() *NodeType {
	return &NodeType{
		Name:     "print",
		Category: CategoryDebug,
		Pure:     false,
		Inputs:   []PinSpec{{Name: "value", Kind: value.KindNone}},
		Execute: func(n *Node, ctx *ExecContext) {
			label := n.Label
			if label == "" {
				label = fmt.Sprintf("node-%d", n.ID)
			}
			fmt.Fprintf(ctx.Output, "%s: %s\n", label, n.Input(0))
		},
	}
}

// counterType emits how many times it has run. Impure: its output
// depends on state outside its inputs.
func counterType() *NodeType {
	return &NodeType{
		Name:     "counter",
		Category: CategoryDebug,
		Pure:     false,
		Outputs:  []PinSpec{{Name: "count", Kind: value.KindInt}},
		Execute: func(n *Node, _ *ExecContext) {
			count, _ := n.Custom.(int64)
			count++
			n.Custom = count
			n.SetOutput(0, value.Int(count))
		},
	}
}
