package mathx

// Lerp8 returns a + round((b-a)*num/den) for byte levels, with 64-bit
// intermediates. num/den is the progress fraction: num<=0 yields a,
// num>=den yields b exactly (no residual rounding error at completion).
func Lerp8(a, b uint8, num, den int64) uint8 {
	if den <= 0 || num >= den {
		return b
	}
	if num <= 0 {
		return a
	}
	d := int64(b) - int64(a)
	v := int64(a) + RoundDivS64(d*num, den)
	return uint8(Clamp(v, 0, 255))
}
