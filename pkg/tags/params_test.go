package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    map[string]string
		dropped int
	}{
		{
			name: "grammar example",
			body: ` key1="value with spaces", key2=123, key3='single quoted', key4={"nested":"json"}`,
			want: map[string]string{
				"key1": "value with spaces",
				"key2": "123",
				"key3": "single quoted",
				"key4": `{"nested":"json"}`,
			},
		},
		{
			name: "comma inside quotes",
			body: `name="A, B", quantity=2`,
			want: map[string]string{"name": "A, B", "quantity": "2"},
		},
		{
			name: "comma inside nested json",
			body: `objectives=["a, b", "c"], meta={"x":[1,2,3],"y":{"z":","}}`,
			want: map[string]string{
				"objectives": `["a, b", "c"]`,
				"meta":       `{"x":[1,2,3],"y":{"z":","}}`,
			},
		},
		{
			name: "escaped quotes",
			body: `name="The \"Iron\" Fist", note='it\'s fine'`,
			want: map[string]string{"name": `The "Iron" Fist`, "note": "it's fine"},
		},
		{
			name: "whitespace inside key is removed",
			body: `sinh Luc = 10 , linh  Luc=+=5`,
			want: map[string]string{"sinhLuc": "10", "linhLuc": "+=5"},
		},
		{
			name: "relative value keeps its prefix",
			body: `sinhLuc=-=9999`,
			want: map[string]string{"sinhLuc": "-=9999"},
		},
		{
			name:    "parts without equals are dropped",
			body:    `name="Mo", garbage, quantity=1`,
			want:    map[string]string{"name": "Mo", "quantity": "1"},
			dropped: 1,
		},
		{
			name:    "empty key dropped",
			body:    `="x"`,
			want:    map[string]string{},
			dropped: 1,
		},
		{
			name: "single quote inside double quotes",
			body: `name="Mo's blade", q=1`,
			want: map[string]string{"name": "Mo's blade", "q": "1"},
		},
		{
			name: "empty body",
			body: "   ",
			want: map[string]string{},
		},
		{
			name: "unbalanced quote never panics",
			body: `name="unterminated, q=1`,
			want: map[string]string{"name": `"unterminated, q=1`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := ParseParams(tt.body)
			assert.Equal(t, tt.want, got.Map())
			assert.Len(t, dropped, tt.dropped)
		})
	}
}

func TestParseParams_Order(t *testing.T) {
	got, _ := ParseParams(`sinhLucToiDa=200, sinhLuc=MAX, linhLuc=3`)
	keys := make([]string, 0, len(got))
	for _, p := range got {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"sinhLucToiDa", "sinhLuc", "linhLuc"}, keys)
}

func TestParams_Get(t *testing.T) {
	p, _ := ParseParams(`Name="first", name="second"`)
	v, ok := p.Get("NAME")
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestFormatParams_Backslashes(t *testing.T) {
	in := Params{
		{Key: "goal", Value: `reach C:\`},
		{Key: "longGoal", Value: "b"},
		{Key: "note", Value: `a \" b`},
	}
	body := FormatParams(in)
	assert.Equal(t, `goal="reach C:\\", longGoal="b", note="a \\\" b"`, body)

	out, dropped := ParseParams(body)
	assert.Empty(t, dropped)
	assert.Equal(t, in, out)
}

func TestParseParams_Idempotent(t *testing.T) {
	bodies := []string{
		`name="A, B", quantity=2`,
		`key1="value with spaces", key2=123, key3='single quoted', key4={"nested":"json"}`,
		`name="The \"Iron\" Fist", note='it\'s fine'`,
		`objectives=["find the elder", "return, quickly"], title="Lost Disciple"`,
		`sinhLuc=-=9999, linhLuc=MAX`,
		`name="Lý Tiêu Dao", location='Thanh Vân Sơn'`,
		`goal="reach C:\\", longGoal="b"`,
		`path="a\\\"b", note='x\\'`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			first, _ := ParseParams(body)
			second, dropped := ParseParams(FormatParams(first))
			assert.Empty(t, dropped)
			assert.Equal(t, first, second)
		})
	}
}
