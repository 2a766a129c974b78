package engine

// World-state operators. Numeric operators treat a missing value as 0 and a
// non-numeric current value as a reset; append treats a missing value as an
// empty list.

type worldStateOp func(current, value any) any

func opSet(_, value any) any {
	return value
}

func opIncrement(current, value any) any {
	return toFloat(current) + toFloat(value)
}

func opDecrement(current, value any) any {
	return toFloat(current) - toFloat(value)
}

func opAppend(current, value any) any {
	list, _ := current.([]any)
	out := make([]any, 0, len(list)+1)
	out = append(out, list...)
	return append(out, value)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func worldStateOperations() map[string]worldStateOp {
	return map[string]worldStateOp{
		"set":       opSet,
		"increment": opIncrement,
		"decrement": opDecrement,
		"append":    opAppend,
	}
}
