package spectral

// FourierFrequencies returns the interior Fourier frequencies j/n for
// j = 1..floor((n-1)/2), strictly inside (0, 0.5). Frequencies 0 and 0.5
// are not grid members; they are addressed individually where needed.
func FourierFrequencies(n int) []float64 {
	if n < 3 {
		return []float64{}
	}

	m := (n - 1) / 2
	freqs := make([]float64, m)
	for j := 1; j <= m; j++ {
		freqs[j-1] = float64(j) / float64(n)
	}
	return freqs
}
