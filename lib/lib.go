package lib

import (
	"math"
	"sync"
)

// Pool is a generic sync.Pool wrapper, the shape the original own
// root-level pool.go (tokensPool/indexPool) reaches for to keep hot
// allocation paths off the GC.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool returns a Pool whose Get calls newFn on an empty pool.
func NewPool[T any](newFn func() T) Pool[T] {
	return Pool[T]{pool: sync.Pool{New: func() any { return newFn() }}}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(v T) {
	p.pool.Put(v)
}

type BM25Params struct {
	K float64
	B float64
}

func BM25V2(frequency float64, docLength int, avgDocLength float64, totalDocs int, docFreq int, params BM25Params) float64 {
	idf := 0.0
	if docFreq > 0 {
		idf = math.Log((float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5) + 1)
	}
	tf := (frequency * (params.K + 1)) / (frequency + params.K*(1.0-params.B+params.B*(float64(docLength)/avgDocLength)))
	return idf * tf
}

func CommonPrefix(a []rune, b []rune) ([]rune, bool) {
	lenA := len(a)
	lenB := len(b)
	minLength := lenA
	if lenB < lenA {
		minLength = lenB
	}

	var i int
	for i = 0; i < minLength; i++ {
		if a[i] != b[i] {
			break
		}
	}

	return a[:i], lenA == lenB && i == minLength
}

func BoundedLevenshtein(a []rune, b []rune, tolerance int) (int, bool) {
	distance := boundedLevenshtein(a, b, tolerance)
	return distance, distance >= 0
}

/**
 * Inspired by:
 * https://github.com/Yomguithereal/talisman/blob/86ae55cbd040ff021d05e282e0e6c71f2dde21f8/src/metrics/levenshtein.js#L218-L340
 */
func boundedLevenshtein(a []rune, b []rune, tolerance int) int {
	// the strings are the same
	if string(a) == string(b) {
		return 0
	}

	// a should be the shortest string
	if len(a) > len(b) {
		a, b = b, a
	}

	// ignore common suffix
	lenA, lenB := len(a), len(b)
	for lenA > 0 && a[lenA-1] == b[lenB-1] {
		lenA--
		lenB--
	}

	// early return when the smallest string is empty
	if lenA == 0 {
		if lenB > tolerance {
			return -1
		}
		return lenB
	}

	// ignore common prefix
	startIdx := 0
	for startIdx < lenA && a[startIdx] == b[startIdx] {
		startIdx++
	}
	lenA -= startIdx
	lenB -= startIdx

	// early return when the smallest string is empty
	if lenA == 0 {
		if lenB > tolerance {
			return -1
		}
		return lenB
	}

	delta := lenB - lenA

	if tolerance > lenB {
		tolerance = lenB
	} else if delta > tolerance {
		return -1
	}

	i := 0
	row := make([]int, lenB)
	characterCodeCache := make([]int, lenB)

	for i < tolerance {
		characterCodeCache[i] = int(b[startIdx+i])
		row[i] = i + 1
		i++
	}

	for i < lenB {
		characterCodeCache[i] = int(b[startIdx+i])
		row[i] = tolerance + 1
		i++
	}

	offset := tolerance - delta
	haveMax := tolerance < lenB

	jStart := 0
	jEnd := tolerance

	var current, left, above, charA, j int

	// Starting the nested loops
	for i := 0; i < lenA; i++ {
		left = i
		current = i + 1

		charA = int(a[startIdx+i])
		if i > offset {
			jStart = 1
		}
		if jEnd < lenB {
			jEnd++
		}

		for j = jStart; j < jEnd; j++ {
			above = current

			current = left
			left = row[j]

			if charA != characterCodeCache[j] {
				// insert current
				if left < current {
					current = left
				}

				// delete current
				if above < current {
					current = above
				}

				current++
			}

			row[j] = current
		}

		if haveMax && row[i+delta] > tolerance {
			return -1
		}
	}

	if current <= tolerance {
		return current
	}

	return -1
}
