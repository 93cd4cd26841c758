package funcs

type mapperFunc[T any, R any] func(T) R

func Map[T any, R any](input []T, mapper mapperFunc[T, R]) []R {
	result := make([]R, len(input))

	for i := 0; i < len(input); i++ {
		result[i] = mapper(input[i])
	}

	return result
}

type validatorFunc[T any] func(T) bool

func Filter[T any](input []T, expression validatorFunc[T]) []T {
	result := make([]T, 0, len(input))

	for _, elem := range input {
		if expression(elem) {
			result = append(result, elem)
		}
	}

	return result
}

func Any[T any](input []T, expression validatorFunc[T]) bool {
	for _, elem := range input {
		if expression(elem) {
			return true
		}
	}

	return false
}

func All[T any](input []T, expression validatorFunc[T]) bool {
	for _, elem := range input {
		if !expression(elem) {
			return false
		}
	}

	return true
}

// Chunk splits input into consecutive slices of at most size elements.
func Chunk[T any](input []T, size int) [][]T {
	if size <= 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(input)+size-1)/size)
	for start := 0; start < len(input); start += size {
		end := min(start+size, len(input))
		chunks = append(chunks, input[start:end])
	}

	return chunks
}
