package utils

// Contains returns true if the value is present in the collection.
func Contains[T comparable](collection []T, value T) bool {
	for _, v := range collection {
		if v == value {
			return true
		}
	}
	return false
}

// Unit converts a normalized [0, 1] channel value into its 8 bit representation.
func Unit[T ~float32 | ~float64](v T) uint8 {
	return uint8(Clamp(v, 0, 1)*255 + 0.5)
}
