package quickadd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	t.Run("Should strip a json code fence", func(t *testing.T) {
		res, err := extractObject("```json\n{\"title\":\"Họp\"}\n```")

		require.NoError(t, err)
		assert.Equal(t, "Họp", res.Get("title").String())
	})

	t.Run("Should strip a bare code fence", func(t *testing.T) {
		res, err := extractObject("```\n{\"title\":\"Họp\"}```")

		require.NoError(t, err)
		assert.Equal(t, "Họp", res.Get("title").String())
	})

	t.Run("Should skip prose around the object", func(t *testing.T) {
		res, err := extractObject(`Đây là kết quả: {"title":"Thi","location":"P. {A}"} chúc bạn học tốt`)

		require.NoError(t, err)
		assert.Equal(t, "Thi", res.Get("title").String())
		assert.Equal(t, "P. {A}", res.Get("location").String())
	})

	t.Run("Should keep nested objects and escaped quotes", func(t *testing.T) {
		res, err := extractObject(`{"title":"say \"hi\"","meta":{"a":1}}`)

		require.NoError(t, err)
		assert.Equal(t, `say "hi"`, res.Get("title").String())
		assert.Equal(t, int64(1), res.Get("meta.a").Int())
	})

	t.Run("Should fail on an unbalanced object", func(t *testing.T) {
		_, err := extractObject(`{"title":"x"`)

		assert.Error(t, err)
	})

	t.Run("Should fail on an array", func(t *testing.T) {
		_, err := extractObject(`[1, 2]`)

		assert.Error(t, err)
	})

	t.Run("Should fail on an array of objects", func(t *testing.T) {
		for _, raw := range []string{`[{"title":"x"}]`, "```json\n[{\"title\":\"x\"}]\n```"} {
			_, err := extractObject(raw)

			assert.Error(t, err, raw)
		}
	})
}

func TestFirstObject(t *testing.T) {
	obj, ok := firstObject(`x {"a":"}"} {"b":2}`)

	require.True(t, ok)
	assert.Equal(t, `{"a":"}"}`, obj)

	_, ok = firstObject("no braces here")
	assert.False(t, ok)
}
