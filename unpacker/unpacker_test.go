package unpacker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerScript = `<script>eval(function(p,a,c,k,e,d){e=function(c){return c};if(!''.replace(/^/,String)){while(c--){d[c]=k[c]||c}k=[function(e){return d[e]}];e=function(){return'\\w+'};c=1};while(c--){if(k[c]){p=p.replace(new RegExp('\\b'+e(c)+'\\b','g'),k[c])}}return p}('0 1=\'2://3.4/5.6\';',7,7,'const|source|https|cdn|example|uwu|m3u8'.split('|'),0,{}))</script>`

func TestUnpack(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "with trailing args",
			script: `eval(function(p,a,c,k,e,d){return p}('0.1.2',3,3,'a|b|c'.split('|'),0,0))`,
			want:   "a.b.c",
		},
		{
			name:   "without trailing args",
			script: `}('0.1.2',3,3,'a|b|c'.split('|')`,
			want:   "a.b.c",
		},
		{
			name:   "base36 tokens",
			script: `}('b a 0',36,12,'zero||||||||||ten|eleven'.split('|'),0,{}))`,
			want:   "eleven ten zero",
		},
		{
			name:   "empty entries keep token",
			script: `}('0 1',10,2,'|x'.split('|'),0,{}))`,
			want:   "0 x",
		},
		{
			name:   "short symbol table",
			script: `}('0 1 2 3',10,4,'a|b'.split('|'),0,{}))`,
			want:   "a b 2 3",
		},
		{
			name:   "whole words only",
			script: `}('1 11 1a',10,12,'|one||||||||||eleven'.split('|'),0,{}))`,
			want:   "one eleven 1a",
		},
		{
			name:   "unicode word neighbours",
			script: `}('é0 日0 «0» 0',10,1,'a'.split('|'),0,{}))`,
			want:   "é0 日0 «a» a",
		},
		{
			name:   "replacement is literal",
			script: `}('0',10,1,'$1'.split('|'),0,{}))`,
			want:   "$1",
		},
		{
			name:   "player setup",
			script: playerScript,
			want:   `const source=\'https://cdn.example/uwu.m3u8\';`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Unpack(tt.script)
			require.True(t, ok)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestReplaceWord(t *testing.T) {
	tests := []struct {
		p, token, repl string
		want           string
	}{
		{"a+b", "+", "plus", "aplusb"},
		{"a + b", "+", "plus", "a + b"},
		{"x_1 1", "1", "one", "x_1 one"},
		{"ñ1 1ñ (1)", "1", "one", "ñ1 1ñ (one)"},
		{"1\u200d1", "1", "one", "1\u200d1"},
		{"", "1", "one", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, replaceWord(tt.p, tt.token, tt.repl), tt.p)
	}
}

func TestUnpack_NotFound(t *testing.T) {
	for _, s := range []string{"", "var a = 1;", `}('0',1,1,'a'.split('|'),0,{}))`} {
		out, ok := Unpack(s)
		assert.False(t, ok, s)
		assert.Empty(t, out)
	}
}

func TestDetect(t *testing.T) {
	assert.True(t, Detect(playerScript))
	assert.True(t, Detect("eval(function (p, a, c, k, e, r){}"))
	assert.False(t, Detect("function(p,a,c){}"))
}

func TestInt2base(t *testing.T) {
	tests := []struct {
		x, base int
		want    string
	}{
		{0, 10, "0"},
		{9, 10, "9"},
		{35, 36, "z"},
		{36, 36, "10"},
		{61, 62, "Z"},
		{63, 64, "/"},
		{-5, 2, "-101"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, int2base(tt.x, tt.base))
	}
}
