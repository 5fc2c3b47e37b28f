// Package manner кодирует оценки манер: список выбранных фраз словаря
// превращается в битовый вектор фиксированной ширины и обратно.
package manner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTrait - фраза не из словаря, ошибка исправима на стороне клиента
	ErrUnknownTrait = errors.New("unknown manner trait")
	// ErrMalformedVector - битовая строка не совпала по ширине со словарем.
	// Такое возможно только при порче данных, клиент это не исправит
	ErrMalformedVector = errors.New("malformed manner vector")
)

// Vector - битовый вектор манер в памяти.
// Позиция i выставлена, если выбрана i-я фраза словаря
type Vector []bool

// String возвращает строку из '0'/'1' - формат хранения и передачи
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(len(v))
	for _, bit := range v {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// SetBits считает количество отмеченных манер
func (v Vector) SetBits() int {
	n := 0
	for _, bit := range v {
		if bit {
			n++
		}
	}
	return n
}

// Vocabulary - упорядоченный словарь фраз для одной пары (контекст, полярность)
type Vocabulary struct {
	phrases []string
	index   map[string]int
}

func newVocabulary(phrases ...string) *Vocabulary {
	index := make(map[string]int, len(phrases))
	for i, p := range phrases {
		index[p] = i
	}
	return &Vocabulary{phrases: phrases, index: index}
}

// Четыре независимых словаря. Порядок фраз фиксирован навсегда:
// позиция фразы и есть ее код в битовой строке, менять нельзя
var (
	// TransactionGood - похвалы по сделке, 8 бит
	TransactionGood = newVocabulary(
		"kind and punctual",
		"keeps appointments well",
		"responds quickly",
		"item condition matched the description",
		"shared the item for free",
		"detailed description",
		"sells good items at fair prices",
		"came to my location for the deal",
	)

	// TransactionBad - жалобы по сделке, 15 бит
	TransactionBad = newVocabulary(
		"speaks rudely",
		"unkind",
		"insists on parcel delivery only",
		"no reply to chat messages",
		"tried to trade through the car window",
		"haggles unreasonably",
		"reserved the item but never set a meeting time",
		"does not explain the item in detail",
		"does not keep appointments",
		"contacts at very late or early hours",
		"keeps probing with no intention to buy",
		"promised the deal but sold to someone else",
		"cancelled right before the agreed meeting",
		"unreachable after fixing time and place",
		"did not show up at the meeting place",
	)

	// PeerGood - похвалы вне сделки, 3 бита
	PeerGood = newVocabulary(
		"kind",
		"punctual",
		"responds quickly",
	)

	// PeerBad - жалобы вне сделки, 2 бита
	PeerBad = newVocabulary(
		"speaks rudely",
		"unkind",
	)
)

// Width возвращает ширину битового вектора словаря
func (v *Vocabulary) Width() int {
	return len(v.phrases)
}

// Phrases возвращает копию фраз словаря в каноническом порядке
func (v *Vocabulary) Phrases() []string {
	out := make([]string, len(v.phrases))
	copy(out, v.phrases)
	return out
}

// Encode превращает выбранные фразы в битовый вектор ширины словаря.
// Пустой список валиден и дает нулевой вектор
func (v *Vocabulary) Encode(selected []string) (Vector, error) {
	vec := make(Vector, len(v.phrases))
	for _, phrase := range selected {
		i, ok := v.index[phrase]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTrait, phrase)
		}
		vec[i] = true
	}
	return vec, nil
}

// Decode возвращает отмеченные фразы в порядке словаря,
// не в порядке исходного запроса
func (v *Vocabulary) Decode(vec Vector) ([]string, error) {
	if len(vec) != len(v.phrases) {
		return nil, fmt.Errorf("%w: got width %d, want %d", ErrMalformedVector, len(vec), len(v.phrases))
	}
	selected := make([]string, 0, vec.SetBits())
	for i, bit := range vec {
		if bit {
			selected = append(selected, v.phrases[i])
		}
	}
	return selected, nil
}

// Parse восстанавливает вектор из строки хранения с проверкой ширины и алфавита
func (v *Vocabulary) Parse(bits string) (Vector, error) {
	if len(bits) != len(v.phrases) {
		return nil, fmt.Errorf("%w: got width %d, want %d", ErrMalformedVector, len(bits), len(v.phrases))
	}
	vec := make(Vector, len(bits))
	for i := 0; i < len(bits); i++ {
		switch bits[i] {
		case '1':
			vec[i] = true
		case '0':
			vec[i] = false
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrMalformedVector, bits[i])
		}
	}
	return vec, nil
}
