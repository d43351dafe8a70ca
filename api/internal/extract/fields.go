package extract

import (
	"bytes"
	"encoding/json"
)

// Optional — значение, которого может не быть. Пустая строка и "нет значения" различаются.
type Optional[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{v: v, ok: true} }

func None[T any]() Optional[T] { return Optional[T]{} }

func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }

func (o Optional[T]) Present() bool { return o.ok }

func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Fields — итоговые поля документа; каждое либо отсутствует, либо прошло валидацию.
type Fields struct {
	FullName    Optional[string]      `json:"full_name"`
	IDNumber    Optional[string]      `json:"id_number"`
	BirthDate   Optional[string]      `json:"birth_date"`
	Nationality Optional[Nationality] `json:"nationality"`
}

// Count — сколько полей найдено.
func (f Fields) Count() int {
	n := 0
	for _, ok := range []bool{f.FullName.Present(), f.IDNumber.Present(), f.BirthDate.Present(), f.Nationality.Present()} {
		if ok {
			n++
		}
	}
	return n
}

// RawFields — сырой ответ структурирования (модель или regex), до валидации.
type RawFields struct {
	FullName    *string `json:"full_name"`
	IDNumber    *string `json:"id_number"`
	BirthDate   *string `json:"birth_date"`
	Nationality *string `json:"nationality"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
