package ratio

// Nullable arithmetic. A nil operand makes the result nil; a denominator of
// exactly zero makes a quotient nil.

// Div returns num / den.
func Div(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// Sum returns the sum of xs, or nil if any term is nil or xs is empty.
func Sum(xs ...*float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var total float64
	for _, x := range xs {
		if x == nil {
			return nil
		}
		total += *x
	}
	return &total
}

// Sub returns a - b.
func Sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}

// Same returns a copy of x so derived fields never alias their inputs.
func Same(x *float64) *float64 {
	if x == nil {
		return nil
	}
	v := *x
	return &v
}
