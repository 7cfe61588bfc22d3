package vector

import "math"

// Normalize returns a unit-length copy of v.
// Empty and zero vectors cannot be normalized and return ErrZeroVector.
func Normalize(v []float32) ([]float32, error) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 || math.IsNaN(sumSquares) || math.IsInf(sumSquares, 0) {
		return nil, ErrZeroVector
	}

	magnitude := math.Sqrt(sumSquares)
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result, nil
}

// Similarity returns 1 - |a-b|^2/2, the cosine similarity of two unit vectors.
func Similarity(a, b []float32) float64 {
	var dist float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		dist += d * d
	}
	return 1 - dist/2
}
