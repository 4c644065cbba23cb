package format

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN. Values go through encoding/json first so json tags decide
// field names; object keys become keywords with underscores turned into dashes.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&x); err != nil {
		return err
	}

	var sb strings.Builder
	e := ednEncoder{pretty: pretty}
	e.value(&sb, x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type ednEncoder struct {
	pretty bool
}

func (e ednEncoder) value(sb *strings.Builder, v any, depth int) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case json.Number:
		sb.WriteString(t.String())
	case string:
		sb.WriteString(strconv.Quote(t))
	case []any:
		e.seq(sb, '[', ']', len(t), depth, func(i int) { e.value(sb, t[i], depth+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.seq(sb, '{', '}', len(keys), depth, func(i int) {
			sb.WriteString(keyword(keys[i]))
			sb.WriteByte(' ')
			e.value(sb, t[keys[i]], depth+1)
		})
	}
}

// seq writes n elements between open and end, one per line when pretty.
func (e ednEncoder) seq(sb *strings.Builder, open, end byte, n, depth int, elem func(i int)) {
	sb.WriteByte(open)
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat("  ", depth+1))
		case i > 0:
			sb.WriteByte(' ')
		}
		elem(i)
	}
	if e.pretty && n > 0 {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("  ", depth))
	}
	sb.WriteByte(end)
}

func keyword(k string) string {
	k = strings.TrimSpace(k)
	k = strings.TrimLeft(k, "_")
	k = strings.NewReplacer("_", "-", " ", "-").Replace(k)
	if k == "" {
		return ":_"
	}
	return ":" + k
}
