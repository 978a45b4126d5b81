package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eda-client/internal/backend"
)

func jsonResponse(body string) *backend.AskResponse {
	return &backend.AskResponse{ContentType: "application/json", Body: []byte(body)}
}

func TestDecodeAnswer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		description string
		body        string
		want        Answer
	}{
		{
			"plain string",
			`{"response":"S"}`,
			StringAnswer{Value: "S"},
		},
		{
			"nested output string",
			`{"response":{"output":"S"}}`,
			NestedOutputAnswer{Output: []byte(`"S"`)},
		},
		{
			"nested output number",
			`{"response":{"output":42}}`,
			NestedOutputAnswer{Output: []byte(`42`)},
		},
		{
			"doubly nested output",
			`{"response":{"output":{"input":"q","output":"S"}}}`,
			DoublyNestedOutputAnswer{Inner: []byte(`{"input":"q","output":"S"}`), Output: []byte(`"S"`)},
		},
		{
			"control characters stay valid json",
			`{"response":{"output":{"input":"q","output":"a\u0001b"}}}`,
			DoublyNestedOutputAnswer{Inner: []byte(`{"input":"q","output":"a\u0001b"}`), Output: []byte(`"a\u0001b"`)},
		},
		{
			"doubly nested with empty inner output",
			`{"response":{"output":{"input":"q","output":""}}}`,
			DoublyNestedOutputAnswer{Inner: []byte(`{"input":"q","output":""}`)},
		},
		{
			"object without output",
			`{"response":{"total":10}}`,
			OpaqueObjectAnswer{Raw: []byte(`{"total":10}`)},
		},
		{
			"array response",
			`{"response":[1,2]}`,
			OpaqueObjectAnswer{Raw: []byte(`[1,2]`)},
		},
		{
			"missing response",
			`{"message":"ok"}`,
			OpaqueObjectAnswer{Raw: []byte(`null`)},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeAnswer([]byte(tc.body))

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeAnswerInvalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeAnswer([]byte(`Internal Server Error`))

	assert.Error(t, err)
}

func TestDisplayText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		description string
		body        string
		want        string
	}{
		{"string response", `{"response":"S"}`, "S"},
		{"output wrapper", `{"response":{"output":"S"}}`, "S"},
		{"double output wrapper", `{"response":{"output":{"output":"S"}}}`, "S"},
		{"escaped string", `{"response":"linha 1\nlinha \"2\""}`, "linha 1\nlinha \"2\""},
		{
			"opaque object is pretty printed in key order",
			`{"response":{"b":1,"a":[1,2]}}`,
			"{\n  \"b\": 1,\n  \"a\": [\n    1,\n    2\n  ]\n}",
		},
		{
			"inner object without output is pretty printed",
			`{"response":{"output":{"input":"q","chat_history":[]}}}`,
			"{\n  \"input\": \"q\",\n  \"chat_history\": []\n}",
		},
		{"control character in output", `{"response":{"output":"sino\u0007"}}`, "sino\a"},
		{"control character in inner output", `{"response":{"output":{"input":"q","output":"a\u0001b"}}}`, "a\x01b"},
		{
			"control character in opaque object",
			`{"response":{"nota":"x\u0001<y>"}}`,
			"{\n  \"nota\": \"x\\u0001<y>\"\n}",
		},
		{"numeric output", `{"response":{"output":3.5}}`, "3.5"},
		{"null output", `{"response":{"output":null}}`, "null"},
		{"missing response", `{}`, "null"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			outcome := Interpret(jsonResponse(tc.body))

			require.Equal(t, TextOutcome, outcome.Kind)
			require.NotNil(t, outcome.Result)
			assert.Nil(t, outcome.Download)
			assert.Equal(t, tc.want, outcome.Result.DisplayText)
		})
	}
}

func TestInterpretNonJSONBody(t *testing.T) {
	t.Parallel()

	outcome := Interpret(&backend.AskResponse{ContentType: "text/plain", Body: []byte("  resposta livre \n")})

	require.Equal(t, TextOutcome, outcome.Kind)
	assert.Nil(t, outcome.Result.Answer)
	assert.Equal(t, "resposta livre", outcome.Result.DisplayText)
	assert.Nil(t, outcome.Result.Table)
}

func TestInterpretImage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		description string
		contentType string
		download    bool
	}{
		{"png", "image/png", true},
		{"png with parameters", "image/png; charset=binary", true},
		{"upper case", "IMAGE/PNG", true},
		{"jpeg is not a download", "image/jpeg", false},
		{"json", "application/json", false},
		{"missing header", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			payload := []byte("\x89PNG")
			if !tc.download {
				payload = []byte(`{"response":"ok"}`)
			}

			outcome := Interpret(&backend.AskResponse{ContentType: tc.contentType, Body: payload})

			if !tc.download {
				assert.Equal(t, TextOutcome, outcome.Kind)
				assert.Nil(t, outcome.Download)
				return
			}

			require.Equal(t, DownloadOutcome, outcome.Kind)
			assert.Nil(t, outcome.Result)
			assert.Equal(t, DownloadFilename, outcome.Download.Filename)
			assert.Equal(t, payload, outcome.Download.Payload)
		})
	}
}

func TestInterpretDetectsTable(t *testing.T) {
	t.Parallel()

	outcome := Interpret(jsonResponse(`{"response":{"output":"[{\"x\":1,\"y\":2},{\"x\":3,\"y\":4}]"}}`))

	require.NotNil(t, outcome.Result.Table)
	assert.Equal(t, 2, outcome.Result.Table.Len())
	assert.Equal(t, []string{"x", "y"}, outcome.Result.Table.Columns)
}

func TestInterpretOpaqueArrayIsTable(t *testing.T) {
	t.Parallel()

	outcome := Interpret(jsonResponse(`{"response":[{"mes":"jan","total":10}]}`))

	require.NotNil(t, outcome.Result.Table)
	assert.Equal(t, []string{"mes", "total"}, outcome.Result.Table.Columns)
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text", TextOutcome.String())
	assert.Equal(t, "download", DownloadOutcome.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
