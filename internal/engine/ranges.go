package engine

import (
	"strconv"
	"strings"
)

// maxRangeLen ограничивает размер одного диапазона a-b,
// чтобы опечатка вида "1-1000000000" не съела память.
const maxRangeLen = 100_000

// ExpandIDs разбирает список идентификаторов, введённый пользователем.
//
// Грамматика: токены через запятую, каждый токен это число или диапазон a-b
// (включительно). Токены раскрываются в порядке ввода, диапазоны по
// возрастанию. Дубликаты не удаляются: "1-3,2" даёт [1 2 3 2].
//
// Пустая строка даёт пустой список. Диапазон с a > b ничего не добавляет.
// Любой некорректный токен прерывает разбор целиком (*ParseError), частичный
// результат не возвращается.
func ExpandIDs(spec string) ([]int, error) {
	ids := []int{}
	if strings.TrimSpace(spec) == "" {
		return ids, nil
	}

	for i, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		perr := func(msg string) error {
			return &ParseError{Input: spec, Token: token, Position: i + 1, Message: msg}
		}

		if token == "" {
			return nil, perr("empty token")
		}

		lo, hi, isRange, msg := parseToken(token)
		if msg != "" {
			return nil, perr(msg)
		}

		if !isRange {
			ids = append(ids, lo)
			continue
		}

		// a > b: пустой диапазон, не ошибка
		if lo > hi {
			continue
		}
		if hi-lo >= maxRangeLen {
			return nil, perr("range too large")
		}
		// счёт по смещению: id++ переполнился бы при hi == math.MaxInt
		for n := 0; n <= hi-lo; n++ {
			ids = append(ids, lo+n)
		}
	}

	return ids, nil
}

// parseToken разбирает один токен. msg не пустой, если токен некорректен.
func parseToken(token string) (lo, hi int, isRange bool, msg string) {
	left, right, found := strings.Cut(token, "-")
	if !found {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, 0, false, "not an integer"
		}
		return n, n, false, ""
	}

	lo, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, true, "range start is not an integer"
	}
	hi, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, true, "range end is not an integer"
	}
	return lo, hi, true, ""
}
