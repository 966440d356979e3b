package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Contains reports whether e is an element of s
func Contains[T comparable](s []T, e T) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// Min returns the smallest element of s, the zero value for an empty slice
func Min[T constraints.Ordered](s []T) T {
	var result T
	if len(s) < 1 {
		return result
	}
	result = s[0]
	for _, v := range s {
		if v < result {
			result = v
		}
	}
	return result
}

func sortSlice[T constraints.Ordered](s []T) {
	sort.Slice(s, func(i, j int) bool {
		return s[i] < s[j]
	})
}

func SortedKeys[T constraints.Ordered, K any](input map[T]K) []T {
	result := make([]T, 0, len(input))
	for k := range input {
		result = append(result, k)
	}
	sortSlice(result)
	return result
}

// Range returns [from, to] as a slice, or nil when to < from
func Range(from int, to int) []int {
	if to < from {
		return nil
	}
	result := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		result = append(result, i)
	}
	return result
}
