package assembler

// ArrayWidths returns the array_width values a sweep should run, the
// closed range [2, max] stepped by max(floor(max*0.2), 1) (spec.md
// §4.H "Array sweep").
func ArrayWidths(max int) []int {
	if max < 2 {
		return nil
	}

	step := int(float64(max) * 0.2)
	if step < 1 {
		step = 1
	}

	var widths []int
	for w := 2; w <= max; w += step {
		widths = append(widths, w)
	}
	return widths
}
