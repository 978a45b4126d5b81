package terminal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		description string
		line        string
		want        Command
	}{
		{"blank", "   ", Command{Kind: Empty}},
		{"plain question", "qual a média de vendas?", Command{Kind: Ask, Arg: "qual a média de vendas?"}},
		{"explicit ask", "/ask quantas linhas?", Command{Kind: Ask, Arg: "quantas linhas?"}},
		{"upload", "/upload data/vendas.csv", Command{Kind: Upload, Arg: "data/vendas.csv"}},
		{"upload quoted path", `/upload "minhas vendas.csv"`, Command{Kind: Upload, Arg: "minhas vendas.csv"}},
		{"upload without path", "/upload", Command{Kind: Upload}},
		{"history", "/history", Command{Kind: History}},
		{"current", "/current", Command{Kind: Current}},
		{"export", "/export out/h.json", Command{Kind: Export, Arg: "out/h.json"}},
		{"clear", "/clear", Command{Kind: Clear}},
		{"help", "/HELP", Command{Kind: Help}},
		{"exit", "/exit", Command{Kind: Exit}},
		{"quit alias", "/quit", Command{Kind: Exit}},
		{"bare exit", "exit", Command{Kind: Exit}},
		{"unknown", "/plot vendas", Command{Kind: Unknown, Arg: "/plot"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, ParseCommand(tc.line))
		})
	}
}

func TestReadLine(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("  primeira  \n/history\nultima"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "primeira", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "/history", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ultima", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFindCSVFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{
		"vendas.csv",
		"notas.txt",
		filepath.Join("data", "VENDAS_2024.CSV"),
		filepath.Join(".hidden", "vendas.csv"),
		filepath.Join("a", "b", "c", "d", "vendas.csv"),
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o600))
	}

	assert.ElementsMatch(t, []string{"vendas.csv", filepath.Join("data", "VENDAS_2024.CSV")}, FindCSVFiles(dir, "vendas"))
	assert.Equal(t, []string{filepath.Join("data", "VENDAS_2024.CSV")}, FindCSVFiles(dir, "2024"))
	assert.Empty(t, FindCSVFiles(dir, "notas"))
}
